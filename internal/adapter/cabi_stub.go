//go:build !cabi || !cgo

package adapter

// This file provides a no-CGO stub for the C ABI backend. It is compiled when
// the 'cabi' build tag is NOT set (or cgo is disabled), keeping default
// builds CGO-free. The real backend lives in cabi_cgo.go.

import "mmdevice/pkg/abi"

// CABIOpener refuses to open libraries in this build.
type CABIOpener struct{}

func (CABIOpener) Open(path string) (abi.Module, func() error, error) {
	return nil, nil, ErrCABIUnavailable
}
