package ports

// Notifier tells the transport that the externally visible capability list
// changed. Invoked once after any successful enable/disable/add.
type Notifier interface {
	NotifyCapabilityListChanged()
}

// NopNotifier is a Notifier that does nothing.
type NopNotifier struct{}

func (NopNotifier) NotifyCapabilityListChanged() {}
