package ports

import (
	"context"

	"shellos-packages/internal/core/domain"
)

// IdentityProvider is the remote auth collaborator. Both calls return the
// opaque identity assigned by the provider; failures are non-fatal for the
// caller, which degrades to a locally generated fallback identity.
type IdentityProvider interface {
	SignInAnonymous(ctx context.Context) (domain.Identity, error)
	SignInWithToken(ctx context.Context, token string) (domain.Identity, error)
}
