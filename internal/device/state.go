package device

// State is the lifecycle state of an instance.
type State string

const (
	StateCreated     State = "created"
	StateInitialized State = "initialized"
	StateShutDown    State = "shutdown"
	StateDestroyed   State = "destroyed"
)
