package ports

import (
	"context"

	"github.com/zerkz/dxmcp/internal/domain"
)

// OrgStore lists every org authorization known to the local environment.
// Records are read fresh on each call; the store never caches.
type OrgStore interface {
	ListAllAuthorizations(ctx context.Context) ([]domain.OrgAuthorization, error)
}
