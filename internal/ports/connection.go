package ports

import (
	"context"

	"github.com/zerkz/dxmcp/internal/domain"
)

// Connection is an authenticated handle to one org.
type Connection interface {
	Username() domain.OrgUsername
	InstanceURL() string
}

// ConnectionProvider creates connections for already-resolved usernames.
type ConnectionProvider interface {
	Create(ctx context.Context, username domain.OrgUsername) (Connection, error)
}
