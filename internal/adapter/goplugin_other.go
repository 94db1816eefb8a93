//go:build !linux && !darwin && !freebsd

package adapter

import (
	"errors"

	"mmdevice/pkg/abi"
)

// GoPluginOpener is unavailable on this platform.
type GoPluginOpener struct{}

func (GoPluginOpener) Open(path string) (abi.Module, func() error, error) {
	return nil, nil, errors.New("go plugin: not supported on this platform")
}
