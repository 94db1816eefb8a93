package adapter

// Event is a module lifecycle event.
// Minimal and stable: name + module name, optional device and key/values.
type Event struct {
	Name   string
	Module string
	Device string
	Fields map[string]any
}

// Event names.
const (
	EventModuleLoaded       = "module_loaded"
	EventModuleLoadFailed   = "module_load_failed"
	EventModuleUnloaded     = "module_unloaded"
	EventDeviceCreated      = "device_created"
	EventDeviceCreateFailed = "device_create_failed"
)

// EventPublisher receives events from modules and the manager. Implementations
// should be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
