package application

import (
	"fmt"
	"log/slog"
	"maps"
	"sort"

	"github.com/zerkz/dxmcp/internal/cache"
	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/log"
	"github.com/zerkz/dxmcp/internal/ports"
)

// Toolset is a named group of tools with its own enabled flag. The flag
// reflects the outcome of the last group-level operation only; members may
// diverge afterward through individual enable/disable.
type Toolset struct {
	name    domain.ToolsetName
	enabled bool
	members []*Tool
}

// ToolsetStatus is a defensive snapshot: the member list is an independent
// array the caller may mutate freely.
type ToolsetStatus struct {
	Name    domain.ToolsetName `json:"name"`
	Enabled bool               `json:"enabled"`
	Tools   []ToolStatus       `json:"tools"`
}

// ToolsetRegistry tracks named groups of tools in the cache's toolsets slot.
// The slot value is treated as immutable: every update installs a freshly
// copied map so a reader holding a prior snapshot is unaffected.
type ToolsetRegistry struct {
	cache    *cache.Cache
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewToolsetRegistry(c *cache.Cache, notifier ports.Notifier, logger *slog.Logger) *ToolsetRegistry {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if logger == nil {
		logger = log.NewNop()
	}

	c.EnsureSlot(cache.SlotToolsets, func() any {
		sets := make(map[domain.ToolsetName]*Toolset, len(domain.KnownToolsets()))
		for _, name := range domain.KnownToolsets() {
			sets[name] = &Toolset{name: name}
		}
		return sets
	})

	return &ToolsetRegistry{cache: c, notifier: notifier, logger: logger}
}

// Enable flips the toolset on and enables every current member. Members
// added later are not retroactively enabled.
func (r *ToolsetRegistry) Enable(name domain.ToolsetName) error {
	return r.setEnabled(name, true)
}

func (r *ToolsetRegistry) Disable(name domain.ToolsetName) error {
	return r.setEnabled(name, false)
}

func (r *ToolsetRegistry) setEnabled(name domain.ToolsetName, enabled bool) error {
	_, err := cache.Update(r.cache, cache.SlotToolsets, func(sets map[domain.ToolsetName]*Toolset) (map[domain.ToolsetName]*Toolset, error) {
		ts, ok := sets[name]
		if !ok {
			return sets, fmt.Errorf("%w: %s", domain.ErrToolsetNotFound, name)
		}
		if ts.enabled == enabled {
			if enabled {
				return sets, fmt.Errorf("%w: toolset %s", domain.ErrAlreadyEnabled, name)
			}
			return sets, fmt.Errorf("%w: toolset %s", domain.ErrAlreadyDisabled, name)
		}

		for _, member := range ts.members {
			var err error
			if enabled {
				err = member.enable()
			} else {
				err = member.disable()
			}
			if err != nil {
				return sets, fmt.Errorf("toolset %s member %s: %w", name, member.Name(), err)
			}
		}

		next := maps.Clone(sets)
		next[name] = &Toolset{name: name, enabled: enabled, members: ts.members}
		return next, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("toolset state changed", "toolset", name, "enabled", enabled)
	r.notifier.NotifyCapabilityListChanged()
	return nil
}

// AddTool appends the tool to the named toolset, creating the toolset
// (disabled) if it does not exist yet. Adding a member that is already
// present is declined. Membership never shrinks.
func (r *ToolsetRegistry) AddTool(name domain.ToolsetName, tool *Tool) error {
	_, err := cache.Update(r.cache, cache.SlotToolsets, func(sets map[domain.ToolsetName]*Toolset) (map[domain.ToolsetName]*Toolset, error) {
		next := maps.Clone(sets)
		if next == nil {
			next = make(map[domain.ToolsetName]*Toolset, 1)
		}

		ts, ok := sets[name]
		if !ok {
			next[name] = &Toolset{name: name, members: []*Tool{tool}}
			return next, nil
		}
		for _, member := range ts.members {
			if member.Name() == tool.Name() {
				return sets, fmt.Errorf("%w: %s in toolset %s", domain.ErrMemberExists, tool.Name(), name)
			}
		}

		members := make([]*Tool, len(ts.members), len(ts.members)+1)
		copy(members, ts.members)
		next[name] = &Toolset{name: name, enabled: ts.enabled, members: append(members, tool)}
		return next, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("toolset member added", "toolset", name, "tool", tool.Name())
	return nil
}

func (r *ToolsetRegistry) Status(name domain.ToolsetName) (ToolsetStatus, error) {
	var status ToolsetStatus
	found := false

	_, err := cache.Update(r.cache, cache.SlotToolsets, func(sets map[domain.ToolsetName]*Toolset) (map[domain.ToolsetName]*Toolset, error) {
		if ts, ok := sets[name]; ok {
			status = snapshotToolset(ts)
			found = true
		}
		return sets, nil
	})
	if err != nil {
		return ToolsetStatus{}, err
	}
	if !found {
		return ToolsetStatus{}, fmt.Errorf("%w: %s", domain.ErrToolsetNotFound, name)
	}
	return status, nil
}

func (r *ToolsetRegistry) List() []ToolsetStatus {
	var statuses []ToolsetStatus
	_, _ = cache.Update(r.cache, cache.SlotToolsets, func(sets map[domain.ToolsetName]*Toolset) (map[domain.ToolsetName]*Toolset, error) {
		statuses = make([]ToolsetStatus, 0, len(sets))
		for _, ts := range sets {
			statuses = append(statuses, snapshotToolset(ts))
		}
		return sets, nil
	})

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

func snapshotToolset(ts *Toolset) ToolsetStatus {
	tools := make([]ToolStatus, 0, len(ts.members))
	for _, member := range ts.members {
		tools = append(tools, snapshotTool(member))
	}
	return ToolsetStatus{Name: ts.name, Enabled: ts.enabled, Tools: tools}
}
