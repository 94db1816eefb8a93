package adapter

import "mmdevice/pkg/abi"

type stubDevice struct{ typ abi.DeviceType }

func (d *stubDevice) Initialize() int      { return abi.OK }
func (d *stubDevice) Shutdown() int        { return abi.OK }
func (d *stubDevice) Type() abi.DeviceType { return d.typ }

// stubModule is a minimal abi.Module with a fixed device list.
type stubModule struct {
	moduleVersion int
	deviceVersion int
	devices       map[string]abi.DeviceType
	nilHandles    bool
	panicText     bool
	deleted       int
}

func newStubModule(devices ...string) *stubModule {
	m := &stubModule{
		moduleVersion: abi.ModuleInterfaceVersion,
		deviceVersion: abi.DeviceInterfaceVersion,
		devices:       map[string]abi.DeviceType{},
	}
	for _, d := range devices {
		m.devices[d] = abi.GenericType
	}
	return m
}

func (m *stubModule) ModuleVersion() int          { return m.moduleVersion }
func (m *stubModule) DeviceInterfaceVersion() int { return m.deviceVersion }

func (m *stubModule) DeviceNames() []string {
	out := make([]string, 0, len(m.devices))
	for n := range m.devices {
		out = append(out, n)
	}
	return out
}

func (m *stubModule) DeviceDescription(name string) string  { return "stub " + name }
func (m *stubModule) DeviceType(name string) abi.DeviceType { return m.devices[name] }

func (m *stubModule) CreateDevice(name string) abi.Device {
	if m.nilHandles {
		return nil
	}
	typ, ok := m.devices[name]
	if !ok {
		return nil
	}
	return &stubDevice{typ: typ}
}

func (m *stubModule) DeleteDevice(abi.Device) int { m.deleted++; return abi.OK }

func (m *stubModule) ErrorText(code int) (string, bool) {
	if m.panicText {
		panic("bad error table")
	}
	return abi.StandardErrorText(code)
}
