package application

import (
	"fmt"
	"log/slog"

	"github.com/zerkz/dxmcp/internal/cache"
	"github.com/zerkz/dxmcp/internal/domain"
	"github.com/zerkz/dxmcp/internal/log"
	"github.com/zerkz/dxmcp/internal/ports"
)

// ToolRegistry tracks each registered tool's enabled state in the cache's
// tools slot. Every operation is one atomic cache transaction.
type ToolRegistry struct {
	cache    *cache.Cache
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewToolRegistry(c *cache.Cache, notifier ports.Notifier, logger *slog.Logger) *ToolRegistry {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if logger == nil {
		logger = log.NewNop()
	}

	c.EnsureSlot(cache.SlotTools, func() any { return []*Tool(nil) })

	return &ToolRegistry{cache: c, notifier: notifier, logger: logger}
}

// Add registers a new tool, disabled unless pre-enabled by the caller. A name
// may be registered at most once; the second attempt is declined and the
// existing record is untouched.
func (r *ToolRegistry) Add(handle ports.ToolHandle, enabled bool) (*Tool, error) {
	tool := &Tool{handle: handle}

	_, err := cache.Update(r.cache, cache.SlotTools, func(tools []*Tool) ([]*Tool, error) {
		if findTool(tools, handle.Name()) != nil {
			return tools, fmt.Errorf("%w: %s", domain.ErrToolExists, handle.Name())
		}
		if enabled {
			if err := tool.enable(); err != nil {
				return tools, fmt.Errorf("enable tool %s: %w", handle.Name(), err)
			}
		}

		next := make([]*Tool, len(tools), len(tools)+1)
		copy(next, tools)
		return append(next, tool), nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("tool registered", "tool", handle.Name(), "enabled", enabled)
	if enabled {
		r.notifier.NotifyCapabilityListChanged()
	}
	return tool, nil
}

func (r *ToolRegistry) Enable(name string) error {
	return r.setEnabled(name, true)
}

func (r *ToolRegistry) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *ToolRegistry) setEnabled(name string, enabled bool) error {
	_, err := cache.Update(r.cache, cache.SlotTools, func(tools []*Tool) ([]*Tool, error) {
		tool := findTool(tools, name)
		if tool == nil {
			return tools, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
		}
		if tool.enabled == enabled {
			if enabled {
				return tools, fmt.Errorf("%w: %s", domain.ErrAlreadyEnabled, name)
			}
			return tools, fmt.Errorf("%w: %s", domain.ErrAlreadyDisabled, name)
		}

		if enabled {
			if err := tool.enable(); err != nil {
				return tools, fmt.Errorf("enable tool %s: %w", name, err)
			}
		} else {
			if err := tool.disable(); err != nil {
				return tools, fmt.Errorf("disable tool %s: %w", name, err)
			}
		}
		return tools, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("tool state changed", "tool", name, "enabled", enabled)
	r.notifier.NotifyCapabilityListChanged()
	return nil
}

// EnableMany applies Enable to each name independently. One name's failure
// does not prevent attempting the rest, and prior successes are not rolled
// back.
func (r *ToolRegistry) EnableMany(names []string) []OpResult {
	results := make([]OpResult, 0, len(names))
	for _, name := range names {
		if err := r.Enable(name); err != nil {
			results = append(results, OpResult{Name: name, Success: false, Message: err.Error()})
			continue
		}
		results = append(results, OpResult{Name: name, Success: true, Message: "enabled"})
	}
	return results
}

func (r *ToolRegistry) Status(name string) (ToolStatus, error) {
	var status ToolStatus
	found := false

	// Identity transform: the snapshot has to be taken under the cache
	// mutex, a SafeGet result could be flipped mid-read by a writer.
	_, err := cache.Update(r.cache, cache.SlotTools, func(tools []*Tool) ([]*Tool, error) {
		if tool := findTool(tools, name); tool != nil {
			status = snapshotTool(tool)
			found = true
		}
		return tools, nil
	})
	if err != nil {
		return ToolStatus{}, err
	}
	if !found {
		return ToolStatus{}, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	return status, nil
}

func (r *ToolRegistry) List() []ToolStatus {
	var statuses []ToolStatus
	_, _ = cache.Update(r.cache, cache.SlotTools, func(tools []*Tool) ([]*Tool, error) {
		statuses = make([]ToolStatus, 0, len(tools))
		for _, tool := range tools {
			statuses = append(statuses, snapshotTool(tool))
		}
		return tools, nil
	})
	return statuses
}

func findTool(tools []*Tool, name string) *Tool {
	for _, tool := range tools {
		if tool.Name() == name {
			return tool
		}
	}
	return nil
}

func snapshotTool(tool *Tool) ToolStatus {
	return ToolStatus{
		Name:        tool.Name(),
		Description: tool.Description(),
		Enabled:     tool.enabled,
	}
}
