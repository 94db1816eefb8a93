package device

import (
	"fmt"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// Device is what every capability instance exposes regardless of category.
type Device interface {
	Label() string
	Name() string
	AdapterName() string
	Type() abi.DeviceType
	State() State
	ErrorText(code int) string
	Initialize() error
	Shutdown() error
	Destroy()
}

var (
	_ Device = (*Camera)(nil)
	_ Device = (*Stage)(nil)
	_ Device = (*XYStage)(nil)
	_ Device = (*Shutter)(nil)
	_ Device = (*StateDevice)(nil)
	_ Device = (*ImageProcessor)(nil)
	_ Device = (*Generic)(nil)
)

// New creates the named device through mod and wraps it in the instance
// matching its reported type. The returned instance holds its own module
// reference; the caller's lease on mod is untouched.
func New(core Core, mod *adapter.Module, name, label string, log zerolog.Logger) (Device, error) {
	raw, err := mod.CreateDevice(name)
	if err != nil {
		return nil, err
	}
	destroy := mod.DeleteDevice
	reject := func(reason string) (Device, error) {
		if code := mod.DeleteDevice(raw); code != abi.OK {
			log.Warn().Str("label", label).Int("code", code).Msg("discarding rejected device handle reported an error")
		}
		return nil, &adapter.CreationError{Module: mod.Name(), Device: name, Reason: reason}
	}
	mismatch := func() (Device, error) {
		return reject(fmt.Sprintf("handle does not implement %s operations", raw.Type()))
	}

	switch raw.Type() {
	case abi.CameraType:
		d, ok := raw.(abi.Camera)
		if !ok {
			return mismatch()
		}
		return NewCamera(core, mod, name, d, destroy, label, log), nil
	case abi.StageType:
		d, ok := raw.(abi.Stage)
		if !ok {
			return mismatch()
		}
		return NewStage(core, mod, name, d, destroy, label, log), nil
	case abi.XYStageType:
		d, ok := raw.(abi.XYStage)
		if !ok {
			return mismatch()
		}
		return NewXYStage(core, mod, name, d, destroy, label, log), nil
	case abi.ShutterType:
		d, ok := raw.(abi.Shutter)
		if !ok {
			return mismatch()
		}
		return NewShutter(core, mod, name, d, destroy, label, log), nil
	case abi.StateType:
		d, ok := raw.(abi.State)
		if !ok {
			return mismatch()
		}
		return NewStateDevice(core, mod, name, d, destroy, label, log), nil
	case abi.ImageProcessorType:
		d, ok := raw.(abi.ImageProcessor)
		if !ok {
			return mismatch()
		}
		return NewImageProcessor(core, mod, name, d, destroy, label, log), nil
	case abi.GenericType:
		return NewGeneric(core, mod, name, raw, destroy, label, log), nil
	}
	return reject(fmt.Sprintf("unsupported device type %s", raw.Type()))
}
