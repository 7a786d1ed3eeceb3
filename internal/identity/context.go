package identity

import (
	"context"

	"github.com/angelmondragon/obohub-backend/pkg/auth"
)

type contextKey string

const (
	stateKey  contextKey = "identity_state"
	claimsKey contextKey = "identity_claims"
)

// WithState stores the verified identity on the request context.
func WithState(ctx context.Context, state State, claims *auth.IdentityClaims) context.Context {
	ctx = context.WithValue(ctx, stateKey, state)
	if claims != nil {
		ctx = context.WithValue(ctx, claimsKey, claims)
	}
	return ctx
}

// StateFromContext returns the identity verified for this request, or SignedOut.
func StateFromContext(ctx context.Context) State {
	if ctx == nil {
		return SignedOut()
	}
	if state, ok := ctx.Value(stateKey).(State); ok {
		return state
	}
	return SignedOut()
}

// ClaimsFromContext returns the token claims verified for this request.
func ClaimsFromContext(ctx context.Context) *auth.IdentityClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(claimsKey).(*auth.IdentityClaims)
	return claims
}
