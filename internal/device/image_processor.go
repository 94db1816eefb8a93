package device

import (
	"math"
	"slices"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// supportedByteDepths are the pixel component sizes Process accepts.
var supportedByteDepths = []int{1, 2, 4, 8}

// ImageProcessor transforms image buffers in place.
type ImageProcessor struct {
	*Instance[abi.ImageProcessor]
}

// NewImageProcessor wraps raw; see newInstance for ownership.
func NewImageProcessor(core Core, mod *adapter.Module, name string, raw abi.ImageProcessor, destroy DestroyFunc, label string, log zerolog.Logger) *ImageProcessor {
	return &ImageProcessor{newInstance(core, mod, name, raw, destroy, label, log)}
}

// Process hands the first width*height*byteDepth bytes of buf to the
// adapter, which rewrites them in place. buf is never resized. Dimensions
// must fit in 32 bits, the width the C ABI passes them as.
func (p *ImageProcessor) Process(buf []byte, width, height, byteDepth int) error {
	const op = "Process"
	if err := p.require(op); err != nil {
		return err
	}
	switch {
	case buf == nil:
		return p.invalid(op, "nil buffer")
	case width <= 0 || height <= 0:
		return p.invalid(op, "image size %dx%d", width, height)
	case !slices.Contains(supportedByteDepths, byteDepth):
		return p.invalid(op, "unsupported byte depth %d", byteDepth)
	case uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32:
		return p.invalid(op, "image size %dx%d exceeds adapter limits", width, height)
	case width > math.MaxInt/height/byteDepth:
		return p.invalid(op, "image size %dx%dx%d overflows", width, height, byteDepth)
	}
	n := width * height * byteDepth
	if len(buf) < n {
		return p.invalid(op, "buffer holds %d bytes, need %d", len(buf), n)
	}
	return p.call(op, func(d abi.ImageProcessor) int {
		return d.Process(buf[:n:n], width, height, byteDepth)
	})
}
