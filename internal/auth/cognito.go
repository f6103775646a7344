package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken  = errors.New("auth: missing bearer token")
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrNotConfigured = errors.New("auth: identity provider not configured")
	ErrForbidden     = errors.New("auth: admin group membership required")
)

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type cognitoClaims struct {
	TokenUse string   `json:"token_use"`
	ClientID string   `json:"client_id"`
	Username string   `json:"username"`
	Groups   []string `json:"cognito:groups"`
	jwt.RegisteredClaims
}

// CognitoVerifier validates Cognito user pool access tokens.
type CognitoVerifier struct {
	parser   *jwt.Parser
	keyfunc  jwt.Keyfunc
	clientID string
}

// Issuer returns the token issuer of a Cognito user pool.
func Issuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// JWKSURL returns the signing key set location of an issuer.
func JWKSURL(issuer string) string {
	return strings.TrimRight(issuer, "/") + "/.well-known/jwks.json"
}

// NewCognitoVerifier creates a verifier for tokens of issuer minted for
// clientID. keyfunc resolves signing keys, typically from the pool's JWKS.
func NewCognitoVerifier(issuer, clientID string, keyfunc jwt.Keyfunc) (*CognitoVerifier, error) {
	if keyfunc == nil {
		return nil, errors.New("auth: keyfunc must not be nil")
	}
	if strings.TrimSpace(issuer) == "" {
		return nil, errors.New("auth: issuer must not be empty")
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("auth: client id must not be empty")
	}
	return &CognitoVerifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
		keyfunc:  keyfunc,
		clientID: clientID,
	}, nil
}

// Verify checks signature, issuer and expiry, then that the token is an
// access token for the configured client.
func (v *CognitoVerifier) Verify(_ context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	var claims cognitoClaims
	if _, err := v.parser.ParseWithClaims(raw, &claims, v.keyfunc); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.TokenUse != "access" {
		return Identity{}, fmt.Errorf("%w: token_use %q", ErrInvalidToken, claims.TokenUse)
	}
	if claims.ClientID != v.clientID {
		return Identity{}, fmt.Errorf("%w: unexpected client_id", ErrInvalidToken)
	}
	return Identity{
		Subject:  claims.Subject,
		Username: claims.Username,
		Groups:   claims.Groups,
	}, nil
}
