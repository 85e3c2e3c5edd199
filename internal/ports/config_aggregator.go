package ports

import (
	"context"

	"github.com/zerkz/dxmcp/internal/domain"
)

// ConfigAggregator resolves default-org pointers from the file-based
// configuration chain (project config first, then global).
type ConfigAggregator interface {
	// ResolveDefault returns the configured value for key together with the
	// file path it was read from. Returns domain.ErrNoDefaultOrg when no
	// location configures the key.
	ResolveDefault(ctx context.Context, key domain.ConfigKey) (domain.DefaultRef, error)

	// Reload discards any cached aggregator state so that a changed working
	// directory is observed on the next ResolveDefault call.
	Reload()
}
