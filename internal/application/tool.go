package application

import "github.com/zerkz/dxmcp/internal/ports"

// Tool is one registered operation. The enabled flag lives on the record and
// flips together with the transport-side handle, always inside a cache update
// step, so the flip is never observable halfway. Toolsets hold pointers to
// the same records the tool registry holds.
type Tool struct {
	handle  ports.ToolHandle
	enabled bool
}

func (t *Tool) Name() string        { return t.handle.Name() }
func (t *Tool) Description() string { return t.handle.Description() }
func (t *Tool) Enabled() bool       { return t.enabled }

// enable and disable are idempotent; the not-an-op error for "already
// enabled" is the registry's concern, not the record's.

func (t *Tool) enable() error {
	if t.enabled {
		return nil
	}
	if err := t.handle.Enable(); err != nil {
		return err
	}
	t.enabled = true
	return nil
}

func (t *Tool) disable() error {
	if !t.enabled {
		return nil
	}
	if err := t.handle.Disable(); err != nil {
		return err
	}
	t.enabled = false
	return nil
}

// ToolStatus is a point-in-time snapshot of one tool record.
type ToolStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// OpResult is the per-name outcome of a batch operation.
type OpResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
