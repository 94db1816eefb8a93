// Package probe creates the devices listed in a config, reports on them and
// tears them down. It is a test harness for adapters, not an orchestrator:
// it never routes calls beyond a fixed per-category readout.
package probe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/internal/config"
	"mmdevice/internal/device"
)

// ErrDuplicateLabel is returned by Add when the label is already in use.
var ErrDuplicateLabel = errors.New("probe: duplicate label")

// Session owns the instances it creates, keyed by label.
type Session struct {
	mgr     *adapter.Manager
	core    device.Core
	log     zerolog.Logger
	devices map[string]device.Device
	order   []string
}

func NewSession(mgr *adapter.Manager, core device.Core, log zerolog.Logger) *Session {
	return &Session{
		mgr:     mgr,
		core:    core,
		log:     log.With().Str("component", "probe").Logger(),
		devices: make(map[string]device.Device),
	}
}

// Open adds every device in cfg in order and stops at the first failure.
// Devices created before the failure stay in the session; Close removes them.
func (s *Session) Open(cfg []config.DeviceConfig) error {
	for _, dc := range cfg {
		if err := s.Add(dc); err != nil {
			return err
		}
	}
	return nil
}

// Add loads the adapter, creates the device and, unless disabled,
// initializes it. A device that fails to initialize is destroyed.
func (s *Session) Add(dc config.DeviceConfig) error {
	if _, dup := s.devices[dc.Label]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, dc.Label)
	}
	mod, err := s.mgr.Load(dc.Adapter)
	if err != nil {
		return err
	}
	// the instance holds its own reference; the lease only spans creation
	defer mod.Release()

	d, err := device.New(s.core, mod, dc.Device, dc.Label, s.log)
	if err != nil {
		return err
	}
	if dc.ShouldInitialize() {
		if err := d.Initialize(); err != nil {
			d.Destroy()
			return err
		}
	}
	s.devices[dc.Label] = d
	s.order = append(s.order, dc.Label)
	s.log.Info().Str("label", dc.Label).Str("adapter", dc.Adapter).Str("device", dc.Device).Str("state", string(d.State())).Msg("device added")
	return nil
}

func (s *Session) Get(label string) (device.Device, bool) {
	d, ok := s.devices[label]
	return d, ok
}

// Labels returns labels in creation order.
func (s *Session) Labels() []string { return slices.Clone(s.order) }

// Remove shuts down and destroys one device.
func (s *Session) Remove(label string) bool {
	d, ok := s.devices[label]
	if !ok {
		return false
	}
	s.teardown(d)
	delete(s.devices, label)
	s.order = slices.DeleteFunc(s.order, func(l string) bool { return l == label })
	return true
}

// Close tears every device down in reverse creation order.
func (s *Session) Close() {
	for i := len(s.order) - 1; i >= 0; i-- {
		s.teardown(s.devices[s.order[i]])
	}
	s.devices = make(map[string]device.Device)
	s.order = nil
}

func (s *Session) teardown(d device.Device) {
	if err := d.Shutdown(); err != nil {
		s.log.Warn().Str("label", d.Label()).Err(err).Msg("shutdown before destroy failed")
	}
	d.Destroy()
}
