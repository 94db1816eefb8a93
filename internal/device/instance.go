package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// DestroyFunc releases a raw handle, normally adapter.Module.DeleteDevice.
type DestroyFunc func(abi.Device) int

// Instance is the generic wrapper around one raw device handle of category T.
type Instance[T abi.Device] struct {
	core    Core
	module  *adapter.Module
	name    string
	raw     T
	destroy DestroyFunc
	label   string
	log     zerolog.Logger
	state   State
	kind    string

	destroyOnce sync.Once
}

// newInstance assembles the wrapper. It takes ownership of raw and acquires a
// reference on mod; the caller must hold one already.
func newInstance[T abi.Device](core Core, mod *adapter.Module, name string, raw T, destroy DestroyFunc, label string, log zerolog.Logger) *Instance[T] {
	mod.Acquire()
	i := &Instance[T]{
		core:    core,
		module:  mod,
		name:    name,
		raw:     raw,
		destroy: destroy,
		label:   label,
		state:   StateCreated,
		kind:    raw.Type().String(),
	}
	i.log = log.With().Str("label", label).Str("adapter", mod.Name()).Str("device", name).Logger()
	if ha, ok := any(raw).(abi.HostAware); ok {
		ha.SetHost(&hostBridge{label: label, log: i.log, core: core})
	}
	deviceInstances.WithLabelValues(i.kind).Inc()
	return i
}

func (i *Instance[T]) Label() string        { return i.label }
func (i *Instance[T]) Name() string         { return i.name }
func (i *Instance[T]) AdapterName() string  { return i.module.Name() }
func (i *Instance[T]) Type() abi.DeviceType { return i.raw.Type() }
func (i *Instance[T]) State() State         { return i.state }

// ErrorText resolves code through the adapter's table, falling back to a
// generic message for codes the adapter does not know.
func (i *Instance[T]) ErrorText(code int) string {
	if text, ok := i.module.ErrorText(code); ok && text != "" {
		return text
	}
	return genericErrorText
}

// Initialize forwards to the device's initialize entry point. It is only
// valid from the Created state; on failure the state is left unchanged.
func (i *Instance[T]) Initialize() error {
	const op = "Initialize"
	switch i.state {
	case StateInitialized:
		return i.precondition(op, ErrAlreadyInitialized, "")
	case StateShutDown:
		return i.precondition(op, ErrAlreadyShutDown, "")
	case StateDestroyed:
		return i.precondition(op, ErrDestroyed, "")
	}
	if err := i.invoke(op, func(d T) int { return d.Initialize() }); err != nil {
		i.log.Error().Err(err).Msg("device initialization failed")
		return err
	}
	i.state = StateInitialized
	i.log.Info().Msg("device initialized")
	return nil
}

// Shutdown forwards to the device's shutdown entry point and moves to
// ShutDown whatever the device reports. Calling it again is a no-op.
func (i *Instance[T]) Shutdown() error {
	const op = "Shutdown"
	switch i.state {
	case StateShutDown:
		return nil
	case StateDestroyed:
		return i.precondition(op, ErrDestroyed, "")
	}
	if err := i.invoke(op, func(d T) int { return d.Shutdown() }); err != nil {
		i.log.Warn().Err(err).Msg("device shutdown reported an error")
	}
	i.state = StateShutDown
	i.log.Info().Msg("device shut down")
	return nil
}

// Destroy releases the raw handle exactly once and then drops the adapter
// reference, which may unload the module. Errors are logged, never returned.
func (i *Instance[T]) Destroy() {
	i.destroyOnce.Do(func() {
		code := i.safeDestroy()
		if code != abi.OK {
			destroyWarningsTotal.Inc()
			i.log.Warn().Int("code", code).Str("error", i.ErrorText(code)).Msg("device destroy reported an error")
		}
		i.state = StateDestroyed
		deviceInstances.WithLabelValues(i.kind).Dec()
		if err := i.module.Release(); err != nil {
			i.log.Error().Err(err).Msg("adapter reference release failed")
		}
		i.log.Debug().Msg("device destroyed")
	})
}

func (i *Instance[T]) safeDestroy() (code int) {
	defer func() {
		if r := recover(); r != nil {
			i.log.Error().Interface("panic", r).Msg("device destroy panicked")
			code = abi.Err
		}
	}()
	return i.destroy(i.raw)
}

// require checks that capability operations are allowed.
func (i *Instance[T]) require(op string) error {
	switch i.state {
	case StateInitialized:
		return nil
	case StateDestroyed:
		return i.precondition(op, ErrDestroyed, "")
	}
	return i.precondition(op, ErrNotInitialized, "")
}

// call runs a capability operation: state check, forward, translate.
func (i *Instance[T]) call(op string, fn func(T) int) error {
	if err := i.require(op); err != nil {
		return err
	}
	return i.invoke(op, fn)
}

// invoke forwards one raw call, records it and translates its status.
func (i *Instance[T]) invoke(op string, fn func(T) int) error {
	start := time.Now()
	code := fn(i.raw)
	deviceCallDuration.WithLabelValues(i.kind, op).Observe(time.Since(start).Seconds())
	result := "ok"
	if code != abi.OK {
		result = "error"
	}
	deviceCallsTotal.WithLabelValues(i.kind, op, result).Inc()
	return i.translate(op, code)
}

func (i *Instance[T]) translate(op string, code int) error {
	if code == abi.OK {
		return nil
	}
	return &DeviceError{Code: code, Message: i.ErrorText(code), Label: i.label, Op: op}
}

func (i *Instance[T]) precondition(op string, reason error, detail string) error {
	return &PreconditionError{Label: i.label, Op: op, State: i.state, Reason: reason, Detail: detail}
}

func (i *Instance[T]) invalid(op string, format string, args ...any) error {
	return i.precondition(op, ErrInvalidArgument, fmt.Sprintf(format, args...))
}
