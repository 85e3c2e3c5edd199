package ports

// ToolHandle is the transport-side handle to one registered tool. Enable and
// Disable flip whether the transport exposes the tool to callers; both are
// invoked inside the registry's atomic update step.
type ToolHandle interface {
	Name() string
	Description() string
	Enable() error
	Disable() error
}
