package device

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/pkg/abi"
)

func TestModuleUnloadsAfterLastInstance(t *testing.T) {
	fm := newFakeModule().add("G", func() abi.Device { return &fakeDevice{typ: abi.GenericType} })
	mod, unloads := newTestModule(t, fm)

	const n = 5
	devs := make([]Device, 0, n)
	for i := 0; i < n; i++ {
		devs = append(devs, newTestDevice(t, mod, "G", fmt.Sprintf("g%d", i)))
	}
	if got := mod.RefCount(); got != n+1 {
		t.Fatalf("expected %d refs, got %d", n+1, got)
	}
	if err := mod.Release(); err != nil {
		t.Fatalf("release lease: %v", err)
	}
	for i, d := range devs {
		if !mod.Loaded() {
			t.Fatalf("module unloaded with %d instances alive", n-i)
		}
		d.Destroy()
	}
	if mod.RefCount() != 0 || mod.Loaded() {
		t.Fatalf("expected unloaded module with zero refs, got refs=%d loaded=%v", mod.RefCount(), mod.Loaded())
	}
	if unloads.Load() != 1 {
		t.Fatalf("expected one unload, got %d", unloads.Load())
	}
	if _, err := mod.CreateDevice("G"); !adapter.IsCreationError(err) {
		t.Fatalf("expected creation error from unloaded module, got %v", err)
	}
}

func TestConcurrentCreateDestroy(t *testing.T) {
	fm := newFakeModule().add("G", func() abi.Device { return &fakeDevice{typ: abi.GenericType} })
	mod, unloads := newTestModule(t, fm)

	const workers, rounds = 8, 200
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				d, err := New(nil, mod, "G", fmt.Sprintf("w%d-%d", w, r), zerolog.Nop())
				if err != nil {
					errs <- err
					return
				}
				if mod.RefCount() < 2 {
					errs <- fmt.Errorf("refcount %d with a live instance and the lease", mod.RefCount())
					return
				}
				d.Destroy()
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("worker: %v", err)
	}
	if got := mod.RefCount(); got != 1 {
		t.Fatalf("expected only the lease left, got %d", got)
	}
	if unloads.Load() != 0 {
		t.Fatalf("module unloaded while the lease was held")
	}
	if err := mod.Release(); err != nil {
		t.Fatalf("release lease: %v", err)
	}
	if unloads.Load() != 1 || mod.RefCount() != 0 {
		t.Fatalf("expected exactly one unload, got unloads=%d refs=%d", unloads.Load(), mod.RefCount())
	}
	if err := mod.Release(); err != adapter.ErrNotAcquired {
		t.Fatalf("expected ErrNotAcquired on extra release, got %v", err)
	}
	if mod.RefCount() != 0 {
		t.Fatalf("refcount went negative")
	}
}

func TestConcurrentLoadCreateReleaseDestroy(t *testing.T) {
	fm := newFakeModule().add("G", func() abi.Device { return &fakeDevice{typ: abi.GenericType} })
	adapter.Register("device-lifetime-unleased", fm)
	pub := adapter.NewMemoryPublisher()
	mg := adapter.NewManager(adapter.ManagerConfig{Publisher: pub})

	const workers, rounds = 8, 200
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				mod, err := mg.Load("device-lifetime-unleased")
				if err != nil {
					errs <- err
					return
				}
				d, err := New(nil, mod, "G", fmt.Sprintf("u%d-%d", w, r), zerolog.Nop())
				if err != nil {
					errs <- err
					return
				}
				if err := mod.Release(); err != nil {
					errs <- fmt.Errorf("release: %w", err)
					return
				}
				d.Destroy()
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("worker: %v", err)
	}
	loaded, unloaded := pub.Count(adapter.EventModuleLoaded), pub.Count(adapter.EventModuleUnloaded)
	if loaded == 0 || loaded != unloaded {
		t.Fatalf("expected balanced load/unload events, got %d loaded %d unloaded", loaded, unloaded)
	}
	if names := mg.Loaded(); len(names) != 0 {
		t.Fatalf("modules still cached: %v", names)
	}
}

func TestNewRejectsMismatchedHandle(t *testing.T) {
	// reports camera but has no camera entry points
	raw := &fakeDevice{typ: abi.CameraType}
	fm := newFakeModule().add("Cam", func() abi.Device { return raw })
	mod, _ := newTestModule(t, fm)
	defer mod.Release()

	d, err := New(nil, mod, "Cam", "cam", zerolog.Nop())
	if d != nil || !adapter.IsCreationError(err) {
		t.Fatalf("expected creation error, got %v, %v", d, err)
	}
	if fm.deletes(raw) != 1 {
		t.Fatalf("rejected handle not deleted")
	}
	if mod.RefCount() != 1 {
		t.Fatalf("rejected handle kept a module reference: %d", mod.RefCount())
	}
}

func TestNewRejectsUnsupportedType(t *testing.T) {
	raw := &fakeDevice{typ: abi.SerialType}
	fm := newFakeModule().add("Port", func() abi.Device { return raw })
	mod, _ := newTestModule(t, fm)
	defer mod.Release()

	if _, err := New(nil, mod, "Port", "com1", zerolog.Nop()); !adapter.IsCreationError(err) {
		t.Fatalf("expected creation error, got %v", err)
	}
	if fm.deletes(raw) != 1 {
		t.Fatalf("unsupported handle not deleted")
	}
}

func TestNewUnknownDevice(t *testing.T) {
	mod, _ := newTestModule(t, newFakeModule())
	defer mod.Release()

	_, err := New(nil, mod, "Missing", "x", zerolog.Nop())
	if !adapter.IsCreationError(err) {
		t.Fatalf("expected creation error, got %v", err)
	}
}

func TestNewWrapsEveryCategory(t *testing.T) {
	fm := newFakeModule().
		add("C", func() abi.Device { return &fakeCamera{fakeDevice: fakeDevice{typ: abi.CameraType}} }).
		add("Z", func() abi.Device { return &fakeStage{fakeDevice: fakeDevice{typ: abi.StageType}} }).
		add("XY", func() abi.Device { return &fakeXYStage{fakeDevice: fakeDevice{typ: abi.XYStageType}} }).
		add("S", func() abi.Device { return &fakeShutter{fakeDevice: fakeDevice{typ: abi.ShutterType}} }).
		add("W", func() abi.Device { return &fakeWheel{fakeDevice: fakeDevice{typ: abi.StateType}} }).
		add("P", func() abi.Device { return &fakeInverter{fakeDevice: fakeDevice{typ: abi.ImageProcessorType}} }).
		add("G", func() abi.Device { return &fakeDevice{typ: abi.GenericType} })
	mod, _ := newTestModule(t, fm)
	defer mod.Release()

	checks := map[string]func(Device) bool{
		"C":  func(d Device) bool { _, ok := d.(*Camera); return ok },
		"Z":  func(d Device) bool { _, ok := d.(*Stage); return ok },
		"XY": func(d Device) bool { _, ok := d.(*XYStage); return ok },
		"S":  func(d Device) bool { _, ok := d.(*Shutter); return ok },
		"W":  func(d Device) bool { _, ok := d.(*StateDevice); return ok },
		"P":  func(d Device) bool { _, ok := d.(*ImageProcessor); return ok },
		"G":  func(d Device) bool { _, ok := d.(*Generic); return ok },
	}
	for name, check := range checks {
		d := newTestDevice(t, mod, name, "l-"+name)
		if !check(d) {
			t.Fatalf("%s wrapped as %T", name, d)
		}
		d.Destroy()
	}
}
