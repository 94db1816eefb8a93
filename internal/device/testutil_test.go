package device

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

const errFakeJammed = abi.FirstAdapterCode + 1

// fakeModule is an in-memory abi.Module whose factories are set per test.
type fakeModule struct {
	mu        sync.Mutex
	factories map[string]func() abi.Device
	deleted   map[abi.Device]int
	deleteRC  int
}

func newFakeModule() *fakeModule {
	return &fakeModule{factories: map[string]func() abi.Device{}, deleted: map[abi.Device]int{}}
}

func (f *fakeModule) add(name string, factory func() abi.Device) *fakeModule {
	f.factories[name] = factory
	return f
}

func (f *fakeModule) ModuleVersion() int          { return abi.ModuleInterfaceVersion }
func (f *fakeModule) DeviceInterfaceVersion() int { return abi.DeviceInterfaceVersion }

func (f *fakeModule) DeviceNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.factories))
	for n := range f.factories {
		out = append(out, n)
	}
	return out
}

func (f *fakeModule) DeviceDescription(name string) string { return "fake " + name }

func (f *fakeModule) DeviceType(name string) abi.DeviceType {
	if d := f.CreateDevice(name); d != nil {
		return d.Type()
	}
	return abi.UnknownType
}

func (f *fakeModule) CreateDevice(name string) abi.Device {
	f.mu.Lock()
	factory := f.factories[name]
	f.mu.Unlock()
	if factory == nil {
		return nil
	}
	return factory()
}

func (f *fakeModule) DeleteDevice(d abi.Device) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted[d]++
	return f.deleteRC
}

func (f *fakeModule) deletes(d abi.Device) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted[d]
}

func (f *fakeModule) ErrorText(code int) (string, bool) {
	if code == errFakeJammed {
		return "mechanism jammed", true
	}
	return abi.StandardErrorText(code)
}

// fakeDevice implements the lifecycle part of abi.Device.
type fakeDevice struct {
	typ          abi.DeviceType
	initCode     int
	shutdownCode int
	initCalls    int
	shutdowns    int
	host         abi.Host
}

func (d *fakeDevice) Initialize() int      { d.initCalls++; return d.initCode }
func (d *fakeDevice) Shutdown() int        { d.shutdowns++; return d.shutdownCode }
func (d *fakeDevice) Type() abi.DeviceType { return d.typ }
func (d *fakeDevice) SetHost(h abi.Host)   { d.host = h }

// fakeInverter complements every byte it is given.
type fakeInverter struct {
	fakeDevice
	calls int
}

func (p *fakeInverter) Process(buf []byte, width, height, byteDepth int) int {
	p.calls++
	for i := range buf {
		buf[i] = ^buf[i]
	}
	return abi.OK
}

type fakeCamera struct {
	fakeDevice
	exposure float64
	frame    []byte
	w, h     int
	bpp      int
}

func (c *fakeCamera) SnapImage() int {
	c.frame = make([]byte, c.w*c.h*c.bpp)
	for i := range c.frame {
		c.frame[i] = byte(i)
	}
	return abi.OK
}
func (c *fakeCamera) ImageBuffer() []byte        { return c.frame }
func (c *fakeCamera) ImageWidth() int            { return c.w }
func (c *fakeCamera) ImageHeight() int           { return c.h }
func (c *fakeCamera) ImageBytesPerPixel() int    { return c.bpp }
func (c *fakeCamera) SetExposure(ms float64) int { c.exposure = ms; return abi.OK }
func (c *fakeCamera) Exposure() (float64, int)   { return c.exposure, abi.OK }

type fakeStage struct {
	fakeDevice
	pos float64
}

func (s *fakeStage) SetPositionUm(pos float64) int {
	if pos > 1000 {
		return errFakeJammed
	}
	s.pos = pos
	if s.host != nil {
		s.host.OnStagePositionChanged(pos)
	}
	return abi.OK
}
func (s *fakeStage) PositionUm() (float64, int) { return s.pos, abi.OK }
func (s *fakeStage) Home() int                  { s.pos = 0; return abi.OK }

type fakeXYStage struct {
	fakeDevice
	x, y float64
}

func (s *fakeXYStage) SetXYPositionUm(x, y float64) int      { s.x, s.y = x, y; return abi.OK }
func (s *fakeXYStage) XYPositionUm() (float64, float64, int) { return s.x, s.y, abi.OK }
func (s *fakeXYStage) Home() int                             { s.x, s.y = 0, 0; return abi.OK }

type fakeShutter struct {
	fakeDevice
	open bool
}

func (s *fakeShutter) SetOpen(open bool) int {
	s.open = open
	if s.host != nil {
		s.host.OnShutterOpenChanged(open)
	}
	return abi.OK
}
func (s *fakeShutter) Open() (bool, int) { return s.open, abi.OK }

type fakeWheel struct {
	fakeDevice
	pos int
}

func (w *fakeWheel) SetPosition(pos int) int { w.pos = pos; return abi.OK }
func (w *fakeWheel) Position() (int, int)    { return w.pos, abi.OK }
func (w *fakeWheel) NumberOfPositions() int  { return 6 }

// newTestModule wraps fm and returns the module together with a counter of
// unload calls. The caller owns the returned lease.
func newTestModule(t *testing.T, fm *fakeModule) (*adapter.Module, *atomic.Int32) {
	t.Helper()
	var unloads atomic.Int32
	mod, err := adapter.Wrap("fake", "mem://fake", fm, adapter.ModuleOptions{
		Unload: func() error { unloads.Add(1); return nil },
	})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	return mod, &unloads
}

func newTestDevice(t *testing.T, mod *adapter.Module, name, label string) Device {
	t.Helper()
	d, err := New(nil, mod, name, label, zerolog.Nop())
	if err != nil {
		t.Fatalf("new %s: %v", name, err)
	}
	return d
}

// recordingCore captures host notifications.
type recordingCore struct {
	stage   []float64
	xy      [][2]float64
	shutter []bool
	expo    []float64
	labels  []string
}

func (c *recordingCore) OnStagePositionChanged(label string, pos float64) {
	c.labels = append(c.labels, label)
	c.stage = append(c.stage, pos)
}

func (c *recordingCore) OnXYStagePositionChanged(label string, x, y float64) {
	c.labels = append(c.labels, label)
	c.xy = append(c.xy, [2]float64{x, y})
}

func (c *recordingCore) OnShutterOpenChanged(label string, open bool) {
	c.labels = append(c.labels, label)
	c.shutter = append(c.shutter, open)
}

func (c *recordingCore) OnExposureChanged(label string, ms float64) {
	c.labels = append(c.labels, label)
	c.expo = append(c.expo, ms)
}
