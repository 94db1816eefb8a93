package device

import (
	"slices"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// Camera snaps single frames.
type Camera struct {
	*Instance[abi.Camera]
}

// NewCamera wraps raw; see newInstance for ownership.
func NewCamera(core Core, mod *adapter.Module, name string, raw abi.Camera, destroy DestroyFunc, label string, log zerolog.Logger) *Camera {
	return &Camera{newInstance(core, mod, name, raw, destroy, label, log)}
}

// SnapImage exposes one frame and holds it in the adapter.
func (c *Camera) SnapImage() error {
	return c.call("SnapImage", func(d abi.Camera) int { return d.SnapImage() })
}

// ImageBuffer returns a copy of the last snapped frame, width*height*bpp bytes.
func (c *Camera) ImageBuffer() ([]byte, error) {
	var out []byte
	err := c.call("GetImageBuffer", func(d abi.Camera) int {
		n := d.ImageWidth() * d.ImageHeight() * d.ImageBytesPerPixel()
		buf := d.ImageBuffer()
		if n <= 0 || len(buf) < n {
			return abi.Err
		}
		out = slices.Clone(buf[:n])
		return abi.OK
	})
	return out, err
}

// ImageWidth returns the frame width in pixels.
func (c *Camera) ImageWidth() (int, error) {
	return c.dimension("GetImageWidth", abi.Camera.ImageWidth)
}

// ImageHeight returns the frame height in pixels.
func (c *Camera) ImageHeight() (int, error) {
	return c.dimension("GetImageHeight", abi.Camera.ImageHeight)
}

// ImageBytesPerPixel returns the size of one pixel in bytes.
func (c *Camera) ImageBytesPerPixel() (int, error) {
	return c.dimension("GetImageBytesPerPixel", abi.Camera.ImageBytesPerPixel)
}

func (c *Camera) dimension(op string, get func(abi.Camera) int) (int, error) {
	var v int
	err := c.call(op, func(d abi.Camera) int {
		v = get(d)
		return abi.OK
	})
	return v, err
}

// SetExposure sets the exposure time in milliseconds.
func (c *Camera) SetExposure(ms float64) error {
	if ms < 0 {
		return c.invalid("SetExposure", "negative exposure %g ms", ms)
	}
	return c.call("SetExposure", func(d abi.Camera) int { return d.SetExposure(ms) })
}

// Exposure returns the exposure time in milliseconds.
func (c *Camera) Exposure() (float64, error) {
	var ms float64
	err := c.call("GetExposure", func(d abi.Camera) int {
		var code int
		ms, code = d.Exposure()
		return code
	})
	return ms, err
}
