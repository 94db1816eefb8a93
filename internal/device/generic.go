package device

import (
	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

// Generic is a device with no category operations beyond the lifecycle.
type Generic struct {
	*Instance[abi.Generic]
}

// NewGeneric wraps raw; see newInstance for ownership.
func NewGeneric(core Core, mod *adapter.Module, name string, raw abi.Generic, destroy DestroyFunc, label string, log zerolog.Logger) *Generic {
	return &Generic{newInstance(core, mod, name, raw, destroy, label, log)}
}
