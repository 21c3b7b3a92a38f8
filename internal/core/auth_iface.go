package core

import (
	"context"

	"github.com/dkeye/Punk/internal/domain"
)

// AuthProvider turns an opaque token into a verified identity.
// Unknown or expired tokens yield ErrUnauthenticated.
type AuthProvider interface {
	ResolveSession(ctx context.Context, token string) (domain.User, error)
}
