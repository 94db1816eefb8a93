package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAcquired is returned by Release when no reference is held.
	ErrNotAcquired = errors.New("adapter: module reference not held")

	// ErrModuleNotFound is returned when no built-in or library matches a module name.
	ErrModuleNotFound = errors.New("adapter: module not found")

	// ErrMissingSymbol is returned when a library lacks a required entry point.
	ErrMissingSymbol = errors.New("adapter: missing symbol")

	// ErrVersionMismatch is returned when a module reports an unsupported interface version.
	ErrVersionMismatch = errors.New("adapter: interface version mismatch")

	// ErrCABIUnavailable is returned by the C ABI opener when the binary was
	// built without the 'cabi' tag or without cgo.
	ErrCABIUnavailable = errors.New("adapter: C ABI support not built (missing 'cabi' build tag)")
)

// LoadError reports a module that could not be loaded or validated.
type LoadError struct {
	Module string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load adapter %q (%s): %v", e.Module, e.Path, e.Err)
	}
	return fmt.Sprintf("load adapter %q: %v", e.Module, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is (or wraps) a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// CreationError reports a factory call that did not produce a usable handle.
type CreationError struct {
	Module string
	Device string
	Reason string
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create device %q from adapter %q: %s", e.Device, e.Module, e.Reason)
}

// IsCreationError reports whether err is (or wraps) a CreationError.
func IsCreationError(err error) bool {
	var ce *CreationError
	return errors.As(err, &ce)
}
