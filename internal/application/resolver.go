package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zerkz/dxmcp/internal/cache"
	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/log"
	"github.com/zerkz/dxmcp/internal/ports"
)

// OrgResolver turns caller-supplied usernames and aliases into concrete,
// permitted orgs. The allow-list lives in the cache's allowedOrgs slot;
// resolved default-org pointers are cached per configuration file path for
// the rest of the process (tamper resistance: a request must not be able to
// change a later request's notion of "default" by editing config files
// mid-session).
type OrgResolver struct {
	cache      *cache.Cache
	store      ports.OrgStore
	aggregator ports.ConfigAggregator
	conns      ports.ConnectionProvider
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	defaults map[string]domain.DefaultRef
}

func NewOrgResolver(c *cache.Cache, store ports.OrgStore, aggregator ports.ConfigAggregator, conns ports.ConnectionProvider, logger *slog.Logger) *OrgResolver {
	if logger == nil {
		logger = log.NewNop()
	}

	c.EnsureSlot(cache.SlotAllowedOrgs, func() any { return domain.AllowList{} })

	return &OrgResolver{
		cache:      c,
		store:      store,
		aggregator: aggregator,
		conns:      conns,
		logger:     logger,
		now:        time.Now,
		defaults:   make(map[string]domain.DefaultRef),
	}
}

// SetAllowList replaces the allow-list policy.
func (r *OrgResolver) SetAllowList(list domain.AllowList) {
	r.cache.SafeSet(cache.SlotAllowedOrgs, list)
}

// AllowedOrgs fetches the full authorization list, sanitizes every record
// down to the safe field set and filters by the allow-list policy.
func (r *OrgResolver) AllowedOrgs(ctx context.Context) ([]domain.Org, error) {
	list := cache.Get[domain.AllowList](r.cache, cache.SlotAllowedOrgs)

	auths, err := r.store.ListAllAuthorizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list org authorizations: %w", err)
	}

	now := r.now()
	orgs := make([]domain.Org, 0, len(auths))
	for _, auth := range auths {
		orgs = append(orgs, auth.Sanitized(now))
	}

	if list.AllowsAll() {
		return orgs, nil
	}

	defaultOrg, err := r.sentinelRef(ctx, list, domain.DefaultTargetOrg, domain.KeyTargetOrg)
	if err != nil {
		return nil, err
	}
	defaultHub, err := r.sentinelRef(ctx, list, domain.DefaultTargetDevHub, domain.KeyTargetDevHub)
	if err != nil {
		return nil, err
	}

	allowed := make([]domain.Org, 0, len(orgs))
	for _, org := range orgs {
		if r.orgAllowed(org, list, defaultOrg, defaultHub) {
			allowed = append(allowed, org)
		}
	}
	return allowed, nil
}

func (r *OrgResolver) orgAllowed(org domain.Org, list domain.AllowList, defaultOrg, defaultHub *domain.DefaultRef) bool {
	if list.Contains(string(org.Username)) {
		return true
	}
	for _, alias := range org.Aliases {
		if list.Contains(alias) {
			return true
		}
	}
	if defaultOrg != nil && org.Matches(defaultOrg.Value) {
		return true
	}
	if defaultHub != nil && org.Matches(defaultHub.Value) {
		return true
	}
	return false
}

// sentinelRef resolves the default pointer backing an allow-list sentinel.
// A missing default simply means the sentinel matches nothing; malformed
// configuration is surfaced as-is.
func (r *OrgResolver) sentinelRef(ctx context.Context, list domain.AllowList, sentinel string, key domain.ConfigKey) (*domain.DefaultRef, error) {
	if !list.Contains(sentinel) {
		return nil, nil
	}

	ref, err := r.ResolveDefault(ctx, key)
	if errors.Is(err, domain.ErrNoDefaultOrg) {
		r.logger.Debug("allow-list sentinel has no configured default", "sentinel", sentinel)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ResolveDefault re-reads the configuration aggregator (dropping any stale
// state tied to a previous working directory) but returns the cached pointer
// for the resolved path once one exists. Entries are never evicted; only a
// path change yields a fresh read.
func (r *OrgResolver) ResolveDefault(ctx context.Context, key domain.ConfigKey) (domain.DefaultRef, error) {
	r.aggregator.Reload()

	ref, err := r.aggregator.ResolveDefault(ctx, key)
	if err != nil {
		return domain.DefaultRef{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cacheKey := string(key) + "|" + ref.Path
	if cached, ok := r.defaults[cacheKey]; ok {
		return cached, nil
	}

	r.defaults[cacheKey] = ref
	r.logger.Debug("default org pointer cached", "key", key, "path", ref.Path)
	return ref, nil
}

// FindByUsernameOrAlias scans orgs for the first record whose username or
// alias equals the input. Absence is not an error.
func FindByUsernameOrAlias(orgs []domain.Org, usernameOrAlias string) (domain.Org, bool) {
	for _, org := range orgs {
		if org.Matches(usernameOrAlias) {
			return org, true
		}
	}
	return domain.Org{}, false
}

// ResolveOrg resolves the input to a concrete, permitted org.
func (r *OrgResolver) ResolveOrg(ctx context.Context, usernameOrAlias string) (domain.Org, error) {
	orgs, err := r.AllowedOrgs(ctx)
	if err != nil {
		return domain.Org{}, err
	}
	if len(orgs) == 0 {
		return domain.Org{}, fmt.Errorf("%w: pass an explicit username or alias permitted by the startup configuration", domain.ErrNoAllowedOrgs)
	}

	org, ok := FindByUsernameOrAlias(orgs, usernameOrAlias)
	if !ok {
		return domain.Org{}, fmt.Errorf("%w: %q does not match the username or alias of any allowed org", domain.ErrOrgNotFound, usernameOrAlias)
	}
	return org, nil
}

// ResolveConnection resolves the input and hands the concrete username to
// the connection provider.
func (r *OrgResolver) ResolveConnection(ctx context.Context, usernameOrAlias string) (ports.Connection, error) {
	org, err := r.ResolveOrg(ctx, usernameOrAlias)
	if err != nil {
		return nil, err
	}

	conn, err := r.conns.Create(ctx, org.Username)
	if err != nil {
		return nil, fmt.Errorf("create connection for %s: %w", org.Username, err)
	}
	return conn, nil
}
