package device

import (
	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// Stage is a single-axis (focus) stage. Positions are in micrometres.
type Stage struct {
	*Instance[abi.Stage]
}

// NewStage wraps raw; see newInstance for ownership.
func NewStage(core Core, mod *adapter.Module, name string, raw abi.Stage, destroy DestroyFunc, label string, log zerolog.Logger) *Stage {
	return &Stage{newInstance(core, mod, name, raw, destroy, label, log)}
}

// SetPositionUm moves to an absolute position.
func (s *Stage) SetPositionUm(pos float64) error {
	return s.call("SetPositionUm", func(d abi.Stage) int { return d.SetPositionUm(pos) })
}

// PositionUm returns the current position.
func (s *Stage) PositionUm() (float64, error) {
	var pos float64
	err := s.call("GetPositionUm", func(d abi.Stage) int {
		var code int
		pos, code = d.PositionUm()
		return code
	})
	return pos, err
}

// SetRelativePositionUm moves by delta from the current position.
func (s *Stage) SetRelativePositionUm(delta float64) error {
	return s.call("SetRelativePositionUm", func(d abi.Stage) int {
		pos, code := d.PositionUm()
		if code != abi.OK {
			return code
		}
		return d.SetPositionUm(pos + delta)
	})
}

// Home runs the stage's homing sequence.
func (s *Stage) Home() error {
	return s.call("Home", func(d abi.Stage) int { return d.Home() })
}

// XYStage is a two-axis stage. Positions are in micrometres.
type XYStage struct {
	*Instance[abi.XYStage]
}

// NewXYStage wraps raw; see newInstance for ownership.
func NewXYStage(core Core, mod *adapter.Module, name string, raw abi.XYStage, destroy DestroyFunc, label string, log zerolog.Logger) *XYStage {
	return &XYStage{newInstance(core, mod, name, raw, destroy, label, log)}
}

// SetXYPositionUm moves both axes to an absolute position.
func (s *XYStage) SetXYPositionUm(x, y float64) error {
	return s.call("SetXYPositionUm", func(d abi.XYStage) int { return d.SetXYPositionUm(x, y) })
}

// XYPositionUm returns the current position of both axes.
func (s *XYStage) XYPositionUm() (x, y float64, err error) {
	err = s.call("GetXYPositionUm", func(d abi.XYStage) int {
		var code int
		x, y, code = d.XYPositionUm()
		return code
	})
	return x, y, err
}

// Home runs the stage's homing sequence.
func (s *XYStage) Home() error {
	return s.call("Home", func(d abi.XYStage) int { return d.Home() })
}
