package probe

import "github.com/rs/zerolog"

// LogCore is a device.Core that logs every notification.
type LogCore struct {
	Log zerolog.Logger
}

func (c LogCore) OnStagePositionChanged(label string, pos float64) {
	c.Log.Info().Str("label", label).Float64("position_um", pos).Msg("stage position changed")
}

func (c LogCore) OnXYStagePositionChanged(label string, x, y float64) {
	c.Log.Info().Str("label", label).Float64("x_um", x).Float64("y_um", y).Msg("xy stage position changed")
}

func (c LogCore) OnShutterOpenChanged(label string, open bool) {
	c.Log.Info().Str("label", label).Bool("open", open).Msg("shutter changed")
}

func (c LogCore) OnExposureChanged(label string, ms float64) {
	c.Log.Info().Str("label", label).Float64("exposure_ms", ms).Msg("exposure changed")
}
