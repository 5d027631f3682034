package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/session"
	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier asks the Clerk Backend API whether the session behind a
// token is still active. Every call is a round trip, so revoked sessions are
// refused immediately.
type SessionVerifier struct {
	sessions *session.Client
	parser   *jwt.Parser
}

func NewSessionVerifier(apiURL, secretKey string, hc *http.Client) *SessionVerifier {
	return &SessionVerifier{
		sessions: session.NewClient(backendConfig(apiURL, secretKey, hc)),
		parser:   jwt.NewParser(),
	}
}

func (v *SessionVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	// The signature is checked by Clerk; locally we only need the session id.
	claims := &sessionClaims{}
	if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if claims.SessionID == "" {
		return Identity{}, fmt.Errorf("%w: missing session id", ErrRejected)
	}

	s, err := v.sessions.Verify(ctx, &session.VerifyParams{
		ID:    claims.SessionID,
		Token: clerk.String(token),
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: verify session: %v", ErrRejected, err)
	}
	if s.Status != "active" || s.UserID == "" {
		return Identity{}, fmt.Errorf("%w: session status %q", ErrRejected, s.Status)
	}

	return Identity{UserID: s.UserID, SessionID: claims.SessionID}, nil
}
