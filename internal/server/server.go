// Package server runs the HTTP listener and assembles the root router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"example.com/clerk-notes/internal/logging"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type Options struct {
	Addr        string
	Handler     http.Handler
	Middlewares []func(http.Handler) http.Handler
	Logger      *slog.Logger
}

func (o Options) Validate() error {
	if o.Addr == "" {
		return errors.New("addr is required")
	}
	if o.Handler == nil {
		return errors.New("handler is required")
	}
	return nil
}

type Server struct {
	Options
	srv *http.Server
}

func New(opts Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate server opts: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	handler := opts.Handler
	for _, md := range opts.Middlewares {
		handler = md(handler)
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &Server{Options: opts, srv: srv}, nil
}

// Run listens on Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		s.Logger.InfoContext(ctx, "shutting down")
		return s.srv.Shutdown(ctx)
	})

	eg.Go(func() error {
		s.Logger.InfoContext(ctx, "listen and serve", slog.String("addr", ln.Addr().String()))

		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	return eg.Wait()
}
