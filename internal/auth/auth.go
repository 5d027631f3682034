// Package auth resolves bearer tokens issued by Clerk into user identities.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken means the request carried no usable bearer credential.
	ErrMissingToken = errors.New("authorization header required")
	// ErrRejected covers every verification failure. Callers must not
	// tell clients which check failed.
	ErrRejected = errors.New("token rejected")
)

// Identity is the caller as vouched for by the identity provider.
type Identity struct {
	UserID    string
	SessionID string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// sessionClaims is the subset of a Clerk session token we read.
type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp,omitempty"`
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(h[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != ""
}
