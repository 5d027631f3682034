package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	clerkjwt "github.com/clerk/clerk-sdk-go/v2/jwt"
)

const tokenLeeway = 5 * time.Second

// backendConfig points a Clerk SDK client at apiURL, authenticating with the
// instance secret key. A nil hc keeps the SDK's default client.
func backendConfig(apiURL, secretKey string, hc *http.Client) *clerk.ClientConfig {
	cfg := &clerk.ClientConfig{}
	cfg.Key = clerk.String(secretKey)
	if apiURL != "" {
		cfg.URL = clerk.String(strings.TrimRight(apiURL, "/"))
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return cfg
}

// ClerkVerifier verifies session tokens against the instance JWKS, which it
// fetches with the secret key and caches by key id. After the first token
// for a key id, verification needs no network.
type ClerkVerifier struct {
	jwks    *jwks.Client
	parties map[string]struct{}

	mu   sync.RWMutex
	keys map[string]*clerk.JSONWebKey
}

// NewClerkVerifier builds a verifier for the instance behind secretKey. When
// authorizedParties is non-empty, a token's azp claim, if present, must be one
// of them.
func NewClerkVerifier(apiURL, secretKey string, authorizedParties []string, hc *http.Client) *ClerkVerifier {
	return &ClerkVerifier{
		jwks:    jwks.NewClient(backendConfig(apiURL, secretKey, hc)),
		parties: partySet(authorizedParties),
		keys:    make(map[string]*clerk.JSONWebKey),
	}
}

func (v *ClerkVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	unverified, err := clerkjwt.Decode(ctx, &clerkjwt.DecodeParams{Token: token})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: decode: %v", ErrRejected, err)
	}

	jwk, err := v.key(ctx, unverified.KeyID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: signing key: %v", ErrRejected, err)
	}

	claims, err := clerkjwt.Verify(ctx, &clerkjwt.VerifyParams{
		Token:  token,
		JWK:    jwk,
		Leeway: tokenLeeway,
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

func (v *ClerkVerifier) key(ctx context.Context, kid string) (*clerk.JSONWebKey, error) {
	v.mu.RLock()
	jwk, ok := v.keys[kid]
	v.mu.RUnlock()
	if ok {
		return jwk, nil
	}

	jwk, err := clerkjwt.GetJSONWebKey(ctx, &clerkjwt.GetJSONWebKeyParams{
		KeyID:      kid,
		JWKSClient: v.jwks,
	})
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.keys[kid] = jwk
	v.mu.Unlock()
	return jwk, nil
}

func partySet(parties []string) map[string]struct{} {
	set := make(map[string]struct{}, len(parties))
	for _, p := range parties {
		if p = strings.TrimSpace(p); p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

func checkParty(parties map[string]struct{}, azp string) error {
	if len(parties) == 0 || azp == "" {
		return nil
	}
	if _, ok := parties[azp]; !ok {
		return fmt.Errorf("%w: unauthorized party %q", ErrRejected, azp)
	}
	return nil
}
