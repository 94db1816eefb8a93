package adapter

import "mmdevice/pkg/abi"

// Opener loads the module stored in a library file. unload may be nil when
// the backend cannot release the binary.
type Opener interface {
	Open(path string) (raw abi.Module, unload func() error, err error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (abi.Module, func() error, error)

func (f OpenerFunc) Open(path string) (abi.Module, func() error, error) { return f(path) }

// DefaultOpeners returns the backends tried for library files, in order:
// the C ABI first, then Go plugins.
func DefaultOpeners() []Opener {
	return []Opener{CABIOpener{}, GoPluginOpener{}}
}
