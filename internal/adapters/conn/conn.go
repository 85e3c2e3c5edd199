// Package conn builds live org connections from stored authorizations.
package conn

import (
	"context"
	"fmt"
	"time"

	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/ports"
)

type Connection struct {
	username    domain.OrgUsername
	instanceURL string
}

var _ ports.Connection = (*Connection)(nil)

func (c *Connection) Username() domain.OrgUsername { return c.username }
func (c *Connection) InstanceURL() string          { return c.instanceURL }

type Provider struct {
	store ports.OrgStore
	now   func() time.Time
}

var _ ports.ConnectionProvider = (*Provider)(nil)

func NewProvider(store ports.OrgStore) *Provider {
	return &Provider{store: store, now: time.Now}
}

// Create looks up the stored authorization for username and wraps it in a
// connection. Expired authorizations are refused.
func (p *Provider) Create(ctx context.Context, username domain.OrgUsername) (ports.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	auths, err := p.store.ListAllAuthorizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authorizations: %w", err)
	}

	for _, auth := range auths {
		if auth.Username != username {
			continue
		}
		if auth.Expired(p.now()) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrgExpired, username)
		}
		return &Connection{username: auth.Username, instanceURL: auth.InstanceURL}, nil
	}

	return nil, fmt.Errorf("%w: no authorization for %s", domain.ErrOrgNotFound, username)
}
