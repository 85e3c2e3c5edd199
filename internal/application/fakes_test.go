package application

import (
	"context"
	"sync"

	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/ports"
)

type fakeHandle struct {
	name        string
	description string
	enableErr   error
	disableErr  error

	mu       sync.Mutex
	enables  int
	disables int
}

var _ ports.ToolHandle = (*fakeHandle)(nil)

func newFakeHandle(name string) *fakeHandle {
	return &fakeHandle{name: name, description: "fake " + name}
}

func (h *fakeHandle) Name() string        { return h.name }
func (h *fakeHandle) Description() string { return h.description }

func (h *fakeHandle) Enable() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.enableErr != nil {
		return h.enableErr
	}
	h.enables++
	return nil
}

func (h *fakeHandle) Disable() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disableErr != nil {
		return h.disableErr
	}
	h.disables++
	return nil
}

func (h *fakeHandle) enableCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enables
}

type fakeNotifier struct {
	mu    sync.Mutex
	count int
}

var _ ports.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) NotifyCapabilityListChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *fakeNotifier) notifications() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

type fakeOrgStore struct {
	auths []domain.OrgAuthorization
	err   error
}

var _ ports.OrgStore = (*fakeOrgStore)(nil)

func (s *fakeOrgStore) ListAllAuthorizations(context.Context) ([]domain.OrgAuthorization, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.auths, nil
}

type fakeAggregator struct {
	refs    map[domain.ConfigKey]domain.DefaultRef
	errs    map[domain.ConfigKey]error
	reloads int
}

var _ ports.ConfigAggregator = (*fakeAggregator)(nil)

func (a *fakeAggregator) ResolveDefault(_ context.Context, key domain.ConfigKey) (domain.DefaultRef, error) {
	if err, ok := a.errs[key]; ok {
		return domain.DefaultRef{}, err
	}
	ref, ok := a.refs[key]
	if !ok {
		return domain.DefaultRef{}, domain.ErrNoDefaultOrg
	}
	return ref, nil
}

func (a *fakeAggregator) Reload() { a.reloads++ }

type fakeConnection struct {
	username    domain.OrgUsername
	instanceURL string
}

var _ ports.Connection = (*fakeConnection)(nil)

func (c *fakeConnection) Username() domain.OrgUsername { return c.username }
func (c *fakeConnection) InstanceURL() string          { return c.instanceURL }

type fakeConnProvider struct {
	err     error
	created []domain.OrgUsername
}

var _ ports.ConnectionProvider = (*fakeConnProvider)(nil)

func (p *fakeConnProvider) Create(_ context.Context, username domain.OrgUsername) (ports.Connection, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.created = append(p.created, username)
	return &fakeConnection{username: username, instanceURL: "https://test.my.host"}, nil
}
