package device

import (
	"errors"
	"fmt"
)

// genericErrorText is used for status codes the adapter cannot describe.
const genericErrorText = "device error"

// Precondition reasons, usable with errors.Is on a *PreconditionError.
var (
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrAlreadyShutDown    = errors.New("already shut down")
	ErrDestroyed          = errors.New("destroyed")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// DeviceError is a nonzero status returned by a forwarded adapter call.
type DeviceError struct {
	Code    int
	Message string
	Label   string
	Op      string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %q: %s: %s (code %d)", e.Label, e.Op, e.Message, e.Code)
}

// IsDeviceError reports whether err is (or wraps) a DeviceError.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

// PreconditionError reports an operation rejected before reaching the
// adapter: wrong lifecycle state or invalid arguments.
type PreconditionError struct {
	Label  string
	Op     string
	State  State
	Reason error
	Detail string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("device %q: %s: %v (state %s)", e.Label, e.Op, e.Reason, e.State)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return e.Reason }

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
