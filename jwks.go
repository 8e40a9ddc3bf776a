package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// PeekClaims parses a JWT-shaped access token without verifying its
// signature. Useful for display and for refining the expiry reported by the
// provider; never trust the output for authorization decisions.
func PeekClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("could not parse access token: %w", err)
	}

	return claims, nil
}

// VerifyAccessToken fetches the provider's JWKS and verifies the access
// token's signature and registered claims against it.
func VerifyAccessToken(ctx context.Context, token, jwksUrl string, h *http.Client) (jwt.MapClaims, error) {
	if h == nil {
		h = &http.Client{
			Timeout: 5 * time.Second,
		}
	}

	set, err := jwk.Fetch(ctx, jwksUrl, jwk.WithHTTPClient(h))
	if err != nil {
		return nil, fmt.Errorf("could not fetch jwks: %w", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		key, err := keyForToken(t, set)
		if err != nil {
			return nil, err
		}

		var raw any
		if err := key.Raw(&raw); err != nil {
			return nil, fmt.Errorf("could not load raw key from jwk: %w", err)
		}

		return raw, nil
	}); err != nil {
		return nil, fmt.Errorf("could not verify access token: %w", err)
	}

	return claims, nil
}

func keyForToken(t *jwt.Token, set jwk.Set) (jwk.Key, error) {
	if kid, ok := t.Header["kid"].(string); ok && kid != "" {
		key, ok := set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("jwks has no key with kid %q", kid)
		}
		return key, nil
	}

	key, ok := set.Key(0)
	if !ok {
		return nil, fmt.Errorf("jwks contained no keys")
	}

	return key, nil
}
