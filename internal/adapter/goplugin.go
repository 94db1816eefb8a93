//go:build linux || darwin || freebsd

package adapter

import (
	"fmt"
	"plugin"

	"mmdevice/pkg/abi"
)

// goPluginSymbol is the variable a Go adapter plugin must export:
//
//	var Adapter abi.Module = &myModule{}
const goPluginSymbol = "Adapter"

// GoPluginOpener opens adapter modules built with `go build -buildmode=plugin`.
// The Go runtime cannot unload plugins, so unload is always nil.
type GoPluginOpener struct{}

func (GoPluginOpener) Open(path string) (abi.Module, func() error, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("go plugin: %w", err)
	}
	sym, err := p.Lookup(goPluginSymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s in %s", ErrMissingSymbol, goPluginSymbol, path)
	}
	switch v := sym.(type) {
	case *abi.Module:
		if v != nil && *v != nil {
			return *v, nil, nil
		}
	case abi.Module:
		return v, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %s in %s is not an abi.Module", ErrMissingSymbol, goPluginSymbol, path)
}
