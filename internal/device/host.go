package device

import (
	"github.com/rs/zerolog"

	"mmdevice/pkg/abi"
)

// Core receives notifications raised by devices. It is implemented by the
// orchestrating layer and may be nil.
type Core interface {
	OnStagePositionChanged(label string, pos float64)
	OnXYStagePositionChanged(label string, x, y float64)
	OnShutterOpenChanged(label string, open bool)
	OnExposureChanged(label string, ms float64)
}

// hostBridge is the abi.Host handed to HostAware raw devices. It tags every
// callback with the instance label.
type hostBridge struct {
	label string
	log   zerolog.Logger
	core  Core
}

func (h *hostBridge) LogMessage(msg string, debugOnly bool) int {
	if debugOnly {
		h.log.Debug().Str("source", "device").Msg(msg)
	} else {
		h.log.Info().Str("source", "device").Msg(msg)
	}
	return abi.OK
}

func (h *hostBridge) OnStagePositionChanged(pos float64) int {
	if h.core == nil {
		return abi.NoCallbackRegistered
	}
	h.core.OnStagePositionChanged(h.label, pos)
	return abi.OK
}

func (h *hostBridge) OnXYStagePositionChanged(x, y float64) int {
	if h.core == nil {
		return abi.NoCallbackRegistered
	}
	h.core.OnXYStagePositionChanged(h.label, x, y)
	return abi.OK
}

func (h *hostBridge) OnShutterOpenChanged(open bool) int {
	if h.core == nil {
		return abi.NoCallbackRegistered
	}
	h.core.OnShutterOpenChanged(h.label, open)
	return abi.OK
}

func (h *hostBridge) OnExposureChanged(ms float64) int {
	if h.core == nil {
		return abi.NoCallbackRegistered
	}
	h.core.OnExposureChanged(h.label, ms)
	return abi.OK
}
