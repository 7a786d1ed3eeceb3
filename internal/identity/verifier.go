package identity

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/obohub-backend/pkg/auth"
	"github.com/angelmondragon/obohub-backend/pkg/auth/session"
	"github.com/angelmondragon/obohub-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
)

// SignOuter is the hook the shop calls when a user logs out.
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// RevocationList stores signed-out token ids.
type RevocationList interface {
	session.Checker
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Verifier turns bearer tokens into identity state and revokes them on sign-out.
type Verifier struct {
	cfg         config.IdentityConfig
	revocations RevocationList
}

// NewVerifier wires token verification. revocations may be nil, in which case
// sign-out only ends the shop session.
func NewVerifier(cfg config.IdentityConfig, revocations RevocationList) *Verifier {
	return &Verifier{cfg: cfg, revocations: revocations}
}

// Authenticate verifies the raw bearer token.
func (v *Verifier) Authenticate(ctx context.Context, token string) (State, *auth.IdentityClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SignedOut(), nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token")
	}

	claims, err := auth.ParseIdentityToken(v.cfg, token)
	if err != nil {
		return SignedOut(), nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return SignedOut(), nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check token revocation")
		}
		if revoked {
			return SignedOut(), nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session has ended")
		}
	}

	return SignedIn(Profile{
		ID:    claims.UserID(),
		Email: claims.Email,
		Name:  claims.Name,
		Phone: claims.Phone,
	}), claims, nil
}

// SignOut revokes the token that authenticated ctx.
func (v *Verifier) SignOut(ctx context.Context) error {
	claims := ClaimsFromContext(ctx)
	if claims == nil || v.revocations == nil || claims.ID == "" {
		return nil
	}
	if err := v.revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
	}
	return nil
}
