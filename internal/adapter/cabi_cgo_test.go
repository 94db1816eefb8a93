//go:build cabi && cgo

package adapter_test

import (
	"bytes"
	"errors"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/internal/device"
	"mmdevice/pkg/abi"
)

// buildFixture compiles testdata/fixture.c into an adapter library named
// mmgr_dal_Fixture in a fresh directory and returns that directory.
func buildFixture(t *testing.T, defines ...string) string {
	t.Helper()
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler available")
	}
	dir := t.TempDir()
	args := append([]string{"-shared", "-fPIC", "-o", filepath.Join(dir, "libmmgr_dal_Fixture.so")}, defines...)
	args = append(args, filepath.Join("testdata", "fixture.c"))
	if out, err := exec.Command(cc, args...).CombinedOutput(); err != nil {
		t.Fatalf("compile fixture: %v\n%s", err, out)
	}
	return dir
}

// countingManager returns a manager that opens libraries with the C ABI
// backend and counts how many times a library is closed.
func countingManager(dir string, closes *atomic.Int32) *adapter.Manager {
	opener := adapter.OpenerFunc(func(path string) (abi.Module, func() error, error) {
		raw, unload, err := adapter.CABIOpener{}.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return raw, func() error {
			closes.Add(1)
			return unload()
		}, nil
	})
	return adapter.NewManager(adapter.ManagerConfig{
		SearchPaths: []string{dir},
		Openers:     []adapter.Opener{opener},
	})
}

func TestCABIMissingRequiredSymbol(t *testing.T) {
	dir := buildFixture(t, "-DOMIT_SHUTDOWN")

	_, unload, err := adapter.CABIOpener{}.Open(filepath.Join(dir, "libmmgr_dal_Fixture.so"))
	if !errors.Is(err, adapter.ErrMissingSymbol) || unload != nil {
		t.Fatalf("expected ErrMissingSymbol, got %v", err)
	}

	var closes atomic.Int32
	_, err = countingManager(dir, &closes).Load("Fixture")
	if !adapter.IsLoadError(err) || !errors.Is(err, adapter.ErrMissingSymbol) {
		t.Fatalf("expected load error wrapping ErrMissingSymbol, got %v", err)
	}
	if closes.Load() != 0 {
		t.Fatalf("unload ran for a library that never loaded")
	}
}

func TestCABIProcessRoundTrip(t *testing.T) {
	dir := buildFixture(t)
	var closes atomic.Int32
	mg := countingManager(dir, &closes)

	mod, err := mg.Load("Fixture")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := mod.DeviceDescription("Invert"); got != "fixture device" {
		t.Fatalf("unexpected description %q", got)
	}

	d, err := device.New(nil, mod, "Invert", "inv", zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ip, ok := d.(*device.ImageProcessor)
	if !ok {
		t.Fatalf("expected *device.ImageProcessor, got %T", d)
	}
	if err := ip.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	orig := make([]byte, 4*4*2)
	for i := range orig {
		orig[i] = byte(i * 7)
	}
	buf := bytes.Clone(orig)
	if err := ip.Process(buf, 4, 4, 2); err != nil {
		t.Fatalf("process: %v", err)
	}
	for i := range buf {
		if buf[i] != ^orig[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, buf[i], ^orig[i])
		}
	}
	if err := ip.Process(buf, 4, 4, 2); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if !bytes.Equal(buf, orig) {
		t.Fatalf("double complement did not restore the buffer")
	}

	// A handle whose category entry points are missing is rejected.
	if _, err := device.New(nil, mod, "Cam", "cam", zerolog.Nop()); !adapter.IsCreationError(err) {
		t.Fatalf("expected creation error for camera without entry points, got %v", err)
	}

	if err := ip.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := mod.Release(); err != nil {
		t.Fatalf("release lease: %v", err)
	}
	if closes.Load() != 0 {
		t.Fatalf("library closed while an instance is alive")
	}
	ip.Destroy()
	if closes.Load() != 1 {
		t.Fatalf("expected one dlclose after the last instance, got %d", closes.Load())
	}
	if mod.Loaded() {
		t.Fatalf("module still reports loaded")
	}
	if names := mg.Loaded(); len(names) != 0 {
		t.Fatalf("manager still caches %v", names)
	}
}
