package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Gate authenticates admin requests and applies the admin Policy.
type Gate struct {
	verifier  Verifier
	policy    Policy
	devBypass bool
	logger    *zap.Logger
}

// NewGate creates a Gate. With a nil verifier every request is rejected
// unless devBypass is set, in which case every request is authenticated as
// a synthetic "dev" admin.
func NewGate(verifier Verifier, policy Policy, devBypass bool, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{verifier: verifier, policy: policy, devBypass: devBypass, logger: logger}
	if verifier == nil && devBypass {
		logger.Warn("auth dev bypass enabled: every request is treated as an admin")
	}
	if policy.AllowEmptyGroups {
		logger.Warn("identities without groups are treated as admins", zap.Strings("adminGroups", policy.AdminGroups))
	}
	return g
}

// Authenticate verifies the bearer token of an Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	if g.verifier == nil {
		if g.devBypass {
			return Identity{Subject: "dev", Username: "dev", Groups: append([]string(nil), g.policy.AdminGroups...), Dev: true}, nil
		}
		return Identity{}, ErrNotConfigured
	}
	token, ok := bearerToken(authorization)
	if !ok {
		return Identity{}, ErrMissingToken
	}
	return g.verifier.Verify(ctx, token)
}

// Authorize returns ErrForbidden when id is not an admin.
func (g *Gate) Authorize(id Identity) error {
	if id.Dev || g.policy.IsAdmin(id) {
		return nil
	}
	return ErrForbidden
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
