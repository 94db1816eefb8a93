package adapter

import (
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/rs/zerolog"

	"mmdevice/pkg/abi"
)

// deadRefs marks a module whose count reached zero and which has been unloaded.
// Any negative count is treated as dead.
const deadRefs = math.MinInt64 / 2

// ModuleOptions configures Wrap.
type ModuleOptions struct {
	// Unload releases the underlying binary (dlclose). Nil for modules that
	// cannot be unloaded (built-ins, Go plugins).
	Unload func() error
	// Logger is optional; nil disables logging.
	Logger *zerolog.Logger
	// Publisher is optional; nil drops events.
	Publisher EventPublisher

	// onUnload is set by Manager to drop its cache entry.
	onUnload func(*Module)
}

// Module is one loaded adapter module. It is safe for concurrent use: the
// resolved entry points are read-only after Wrap and the reference count is
// updated atomically.
type Module struct {
	name     string
	path     string
	raw      abi.Module
	unload   func() error
	onUnload func(*Module)
	refs     atomic.Int64
	log      zerolog.Logger
	pub      EventPublisher
}

// Wrap validates raw and returns a Module holding one reference owned by the
// caller. On validation failure opts.Unload is run and a *LoadError returned.
func Wrap(name, path string, raw abi.Module, opts ModuleOptions) (*Module, error) {
	if err := validate(raw); err != nil {
		moduleLoadsTotal.WithLabelValues("rejected").Inc()
		if opts.Unload != nil {
			_ = opts.Unload()
		}
		return nil, &LoadError{Module: name, Path: path, Err: err}
	}
	m := &Module{
		name:     name,
		path:     path,
		raw:      raw,
		unload:   opts.Unload,
		onUnload: opts.onUnload,
		log:      zerolog.Nop(),
		pub:      noopPublisher{},
	}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("module", name).Logger()
	}
	if opts.Publisher != nil {
		m.pub = opts.Publisher
	}
	m.refs.Store(1)

	moduleLoadsTotal.WithLabelValues("ok").Inc()
	modulesLoaded.Inc()
	moduleRefs.WithLabelValues(name).Set(1)
	m.log.Info().Str("path", path).Int("devices", len(raw.DeviceNames())).Msg("adapter module loaded")
	m.pub.Publish(Event{Name: EventModuleLoaded, Module: name, Fields: map[string]any{"path": path}})
	return m, nil
}

func validate(raw abi.Module) error {
	if raw == nil {
		return fmt.Errorf("%w: module exports no entry points", ErrMissingSymbol)
	}
	if v := raw.ModuleVersion(); v != abi.ModuleInterfaceVersion {
		return fmt.Errorf("%w: module interface %d, want %d", ErrVersionMismatch, v, abi.ModuleInterfaceVersion)
	}
	if v := raw.DeviceInterfaceVersion(); v != abi.DeviceInterfaceVersion {
		return fmt.Errorf("%w: device interface %d, want %d", ErrVersionMismatch, v, abi.DeviceInterfaceVersion)
	}
	return nil
}

func (m *Module) Name() string { return m.name }
func (m *Module) Path() string { return m.path }

// RefCount returns the number of live references; zero once unloaded.
func (m *Module) RefCount() int {
	n := m.refs.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Loaded reports whether the module has not been unloaded yet.
func (m *Module) Loaded() bool { return m.refs.Load() >= 0 }

// Acquire takes one more reference. The caller must already hold a reference
// (a lease or an instance's), so acquiring an unloaded module is a bug and panics.
func (m *Module) Acquire() {
	if !m.tryAcquire() {
		panic("adapter: acquire on unloaded module " + m.name)
	}
}

// tryAcquire takes a reference unless the module has been unloaded. A count
// sitting at zero between a release and its unload is resurrected; the
// releasing side then skips the unload.
func (m *Module) tryAcquire() bool {
	for {
		n := m.refs.Load()
		if n < 0 {
			return false
		}
		if m.refs.CompareAndSwap(n, n+1) {
			moduleRefs.WithLabelValues(m.name).Inc()
			return true
		}
	}
}

// Release drops one reference. The release that brings the count to zero
// unloads the module. The count never goes below zero.
func (m *Module) Release() error {
	for {
		n := m.refs.Load()
		if n <= 0 {
			m.log.Error().Int64("refs", max(n, 0)).Msg("release without a held reference")
			return ErrNotAcquired
		}
		if !m.refs.CompareAndSwap(n, n-1) {
			continue
		}
		moduleRefs.WithLabelValues(m.name).Dec()
		if n-1 == 0 && m.refs.CompareAndSwap(0, deadRefs) {
			m.doUnload()
		}
		return nil
	}
}

func (m *Module) doUnload() {
	if m.unload != nil {
		if err := m.unload(); err != nil {
			m.log.Warn().Err(err).Msg("adapter module unload reported an error")
		}
	}
	modulesLoaded.Dec()
	moduleRefs.DeleteLabelValues(m.name)
	m.log.Info().Msg("adapter module unloaded")
	m.pub.Publish(Event{Name: EventModuleUnloaded, Module: m.name, Fields: map[string]any{}})
	if m.onUnload != nil {
		m.onUnload(m)
	}
}

// DeviceNames lists the devices the module can create.
func (m *Module) DeviceNames() []string {
	return slices.Clone(m.raw.DeviceNames())
}

func (m *Module) DeviceType(name string) abi.DeviceType { return m.raw.DeviceType(name) }

func (m *Module) DeviceDescription(name string) string { return m.raw.DeviceDescription(name) }

// CreateDevice asks the module's factory for a raw handle. It never returns a
// nil handle with a nil error.
func (m *Module) CreateDevice(name string) (abi.Device, error) {
	fail := func(reason string) (abi.Device, error) {
		m.log.Warn().Str("device", name).Str("reason", reason).Msg("device creation failed")
		m.pub.Publish(Event{Name: EventDeviceCreateFailed, Module: m.name, Device: name, Fields: map[string]any{"reason": reason}})
		return nil, &CreationError{Module: m.name, Device: name, Reason: reason}
	}
	if !m.Loaded() {
		return fail("module unloaded")
	}
	if !slices.Contains(m.raw.DeviceNames(), name) {
		return fail("no such device in module")
	}
	d := m.raw.CreateDevice(name)
	if d == nil {
		return fail("factory returned no handle")
	}
	m.log.Debug().Str("device", name).Str("type", d.Type().String()).Msg("device created")
	m.pub.Publish(Event{Name: EventDeviceCreated, Module: m.name, Device: name, Fields: map[string]any{"type": d.Type().String()}})
	return d, nil
}

// DeleteDevice forwards to the module's destroy entry point.
func (m *Module) DeleteDevice(d abi.Device) int {
	return m.raw.DeleteDevice(d)
}

// ErrorText resolves code through the module's error table. It never panics;
// a misbehaving table is treated as not knowing the code.
func (m *Module) ErrorText(code int) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Int("code", code).Interface("panic", r).Msg("error text lookup panicked")
			text, ok = "", false
		}
	}()
	return m.raw.ErrorText(code)
}
