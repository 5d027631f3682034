package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier checks session tokens offline against the instance's PEM
// public key (the "JWT public key" from the Clerk dashboard). It needs neither
// the secret key nor the JWKS endpoint.
type JWTVerifier struct {
	key     *rsa.PublicKey
	parties map[string]struct{}
	parser  *jwt.Parser
}

// NewJWTVerifier parses pemKey (newlines may be escaped as "\n", the way the
// key is usually stored in an environment variable). When authorizedParties is
// non-empty, a token's azp claim, if present, must be one of them.
func NewJWTVerifier(pemKey string, authorizedParties []string) (*JWTVerifier, error) {
	pemKey = strings.ReplaceAll(pemKey, `\n`, "\n")
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parse jwt public key: %w", err)
	}

	return &JWTVerifier{
		key:     key,
		parties: partySet(authorizedParties),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(tokenLeeway),
		),
	}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	claims := &sessionClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrRejected)
	}
	if err := checkParty(v.parties, claims.AuthorizedParty); err != nil {
		return Identity{}, err
	}

	return Identity{UserID: claims.Subject, SessionID: claims.SessionID}, nil
}
