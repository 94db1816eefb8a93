package device

import (
	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// StateDevice has a fixed number of discrete positions, 0-based.
type StateDevice struct {
	*Instance[abi.State]
}

// NewStateDevice wraps raw; see newInstance for ownership.
func NewStateDevice(core Core, mod *adapter.Module, name string, raw abi.State, destroy DestroyFunc, label string, log zerolog.Logger) *StateDevice {
	return &StateDevice{newInstance(core, mod, name, raw, destroy, label, log)}
}

// NumberOfPositions reports how many positions the device has.
func (s *StateDevice) NumberOfPositions() (int, error) {
	var n int
	err := s.call("GetNumberOfPositions", func(d abi.State) int {
		n = d.NumberOfPositions()
		return abi.OK
	})
	return n, err
}

// SetPosition moves to pos, which must be in [0, NumberOfPositions).
func (s *StateDevice) SetPosition(pos int) error {
	const op = "SetPosition"
	if err := s.require(op); err != nil {
		return err
	}
	n, err := s.NumberOfPositions()
	if err != nil {
		return err
	}
	if pos < 0 || pos >= n {
		return s.invalid(op, "position %d outside [0,%d)", pos, n)
	}
	return s.call(op, func(d abi.State) int { return d.SetPosition(pos) })
}

// Position returns the current position.
func (s *StateDevice) Position() (int, error) {
	var pos int
	err := s.call("GetPosition", func(d abi.State) int {
		var code int
		pos, code = d.Position()
		return code
	})
	return pos, err
}
