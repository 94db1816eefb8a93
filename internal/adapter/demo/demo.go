// Package demo registers a built-in adapter module named "demo" whose devices
// simulate hardware in memory. Import it for its side effect:
//
//	import _ "mmdevice/internal/adapter/demo"
package demo

import (
	"slices"
	"sync"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// ModuleName is the name the demo module is registered under.
const ModuleName = "demo"

// Device names exported by the module.
const (
	CameraName         = "DCam"
	StageName          = "DStage"
	XYStageName        = "DXYStage"
	ShutterName        = "DShutter"
	WheelName          = "DWheel"
	ImageProcessorName = "DInvert"
	GenericName        = "DGeneric"
)

// Adapter-specific status codes.
const (
	CodePositionOutOfRange = abi.FirstAdapterCode + iota
	CodeUnknownHandle
)

var errorText = map[int]string{
	CodePositionOutOfRange: "Requested position is outside the travel range",
	CodeUnknownHandle:      "Handle was not created by this module or was already deleted",
}

type catalogEntry struct {
	typ  abi.DeviceType
	desc string
	make func() demoDevice
}

var catalog = map[string]catalogEntry{
	CameraName:         {abi.CameraType, "Demo camera producing a moving ramp pattern", func() demoDevice { return newCamera() }},
	StageName:          {abi.StageType, "Demo focus stage", func() demoDevice { return &stage{base: base{typ: abi.StageType}} }},
	XYStageName:        {abi.XYStageType, "Demo XY stage", func() demoDevice { return &xyStage{base: base{typ: abi.XYStageType}} }},
	ShutterName:        {abi.ShutterType, "Demo shutter", func() demoDevice { return &shutter{base: base{typ: abi.ShutterType}} }},
	WheelName:          {abi.StateType, "Demo six-position filter wheel", func() demoDevice { return &wheel{base: base{typ: abi.StateType}} }},
	ImageProcessorName: {abi.ImageProcessorType, "Inverts every byte of the image", func() demoDevice { return &inverter{base: base{typ: abi.ImageProcessorType}} }},
	GenericName:        {abi.GenericType, "Demo device with no operations", func() demoDevice { return &base{typ: abi.GenericType} }},
}

// Module is the demo abi.Module. It tracks live handles so that deleting a
// foreign or already deleted handle is reported instead of ignored.
type Module struct {
	mu   sync.Mutex
	live map[demoDevice]struct{}
}

// New returns an unregistered demo module, for tests that need their own.
func New() *Module {
	return &Module{live: make(map[demoDevice]struct{})}
}

func init() {
	adapter.Register(ModuleName, New())
}

func (m *Module) ModuleVersion() int          { return abi.ModuleInterfaceVersion }
func (m *Module) DeviceInterfaceVersion() int { return abi.DeviceInterfaceVersion }

func (m *Module) DeviceNames() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (m *Module) DeviceDescription(name string) string { return catalog[name].desc }

func (m *Module) DeviceType(name string) abi.DeviceType {
	if e, ok := catalog[name]; ok {
		return e.typ
	}
	return abi.UnknownType
}

func (m *Module) CreateDevice(name string) abi.Device {
	e, ok := catalog[name]
	if !ok {
		return nil
	}
	d := e.make()
	m.mu.Lock()
	m.live[d] = struct{}{}
	m.mu.Unlock()
	return d
}

func (m *Module) DeleteDevice(d abi.Device) int {
	dd, ok := d.(demoDevice)
	if !ok {
		return CodeUnknownHandle
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[dd]; !ok {
		return CodeUnknownHandle
	}
	delete(m.live, dd)
	return abi.OK
}

// Live returns the number of handles created and not yet deleted.
func (m *Module) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *Module) ErrorText(code int) (string, bool) {
	if s, ok := errorText[code]; ok {
		return s, true
	}
	return abi.StandardErrorText(code)
}
