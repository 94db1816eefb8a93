package device

import (
	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// Shutter is a device that can be opened and closed.
type Shutter struct {
	*Instance[abi.Shutter]
}

// NewShutter wraps raw; see newInstance for ownership.
func NewShutter(core Core, mod *adapter.Module, name string, raw abi.Shutter, destroy DestroyFunc, label string, log zerolog.Logger) *Shutter {
	return &Shutter{newInstance(core, mod, name, raw, destroy, label, log)}
}

// SetOpen opens or closes the shutter.
func (s *Shutter) SetOpen(open bool) error {
	return s.call("SetOpen", func(d abi.Shutter) int { return d.SetOpen(open) })
}

// IsOpen reports whether the shutter is open.
func (s *Shutter) IsOpen() (bool, error) {
	var open bool
	err := s.call("GetOpen", func(d abi.Shutter) int {
		var code int
		open, code = d.Open()
		return code
	})
	return open, err
}
