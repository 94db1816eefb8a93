package demo

import (
	"fmt"

	"mmdevice/pkg/abi"
)

// demoDevice is implemented by every handle the module hands out.
type demoDevice interface {
	abi.Device
	demo()
}

type base struct {
	typ  abi.DeviceType
	host abi.Host
}

func (b *base) demo()                {}
func (b *base) Type() abi.DeviceType { return b.typ }
func (b *base) SetHost(h abi.Host)   { b.host = h }

func (b *base) Initialize() int {
	b.logf(true, "%s initialized", b.typ)
	return abi.OK
}

func (b *base) Shutdown() int { return abi.OK }

func (b *base) logf(debug bool, format string, args ...any) {
	if b.host != nil {
		b.host.LogMessage(fmt.Sprintf(format, args...), debug)
	}
}

const (
	cameraWidth  = 16
	cameraHeight = 12
)

// camera renders a diagonal ramp that shifts by one on every snap.
type camera struct {
	base
	exposure float64
	frame    []byte
	shift    int
}

func newCamera() *camera {
	return &camera{base: base{typ: abi.CameraType}, exposure: 10}
}

func (c *camera) SnapImage() int {
	img := make([]byte, cameraWidth*cameraHeight)
	for y := 0; y < cameraHeight; y++ {
		for x := 0; x < cameraWidth; x++ {
			img[y*cameraWidth+x] = byte(x + y + c.shift)
		}
	}
	c.shift++
	c.frame = img
	return abi.OK
}

func (c *camera) ImageBuffer() []byte     { return c.frame }
func (c *camera) ImageWidth() int         { return cameraWidth }
func (c *camera) ImageHeight() int        { return cameraHeight }
func (c *camera) ImageBytesPerPixel() int { return 1 }

func (c *camera) SetExposure(ms float64) int {
	c.exposure = ms
	if c.host != nil {
		c.host.OnExposureChanged(ms)
	}
	return abi.OK
}

func (c *camera) Exposure() (float64, int) { return c.exposure, abi.OK }

const (
	stageTravelUm   = 10000.0
	xyStageTravelUm = 50000.0
)

type stage struct {
	base
	pos float64
}

func (s *stage) SetPositionUm(pos float64) int {
	if pos < -stageTravelUm || pos > stageTravelUm {
		return CodePositionOutOfRange
	}
	s.pos = pos
	if s.host != nil {
		s.host.OnStagePositionChanged(pos)
	}
	return abi.OK
}

func (s *stage) PositionUm() (float64, int) { return s.pos, abi.OK }
func (s *stage) Home() int                  { return s.SetPositionUm(0) }

type xyStage struct {
	base
	x, y float64
}

func (s *xyStage) SetXYPositionUm(x, y float64) int {
	for _, v := range []float64{x, y} {
		if v < -xyStageTravelUm || v > xyStageTravelUm {
			return CodePositionOutOfRange
		}
	}
	s.x, s.y = x, y
	if s.host != nil {
		s.host.OnXYStagePositionChanged(x, y)
	}
	return abi.OK
}

func (s *xyStage) XYPositionUm() (float64, float64, int) { return s.x, s.y, abi.OK }
func (s *xyStage) Home() int                             { return s.SetXYPositionUm(0, 0) }

type shutter struct {
	base
	open bool
}

func (s *shutter) SetOpen(open bool) int {
	s.open = open
	if s.host != nil {
		s.host.OnShutterOpenChanged(open)
	}
	return abi.OK
}

func (s *shutter) Open() (bool, int) { return s.open, abi.OK }

const wheelPositions = 6

type wheel struct {
	base
	pos int
}

func (w *wheel) SetPosition(pos int) int {
	if pos < 0 || pos >= wheelPositions {
		return abi.UnknownPosition
	}
	w.pos = pos
	return abi.OK
}

func (w *wheel) Position() (int, int)   { return w.pos, abi.OK }
func (w *wheel) NumberOfPositions() int { return wheelPositions }

// inverter complements every byte, which is its own inverse at any depth.
type inverter struct {
	base
}

func (p *inverter) Process(buf []byte, width, height, byteDepth int) int {
	if len(buf) < width*height*byteDepth {
		return abi.BufferOverflow
	}
	for i := range buf {
		buf[i] = ^buf[i]
	}
	return abi.OK
}
