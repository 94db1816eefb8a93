package probe

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mmdevice/internal/adapter"
	"mmdevice/internal/adapter/demo"
	"mmdevice/internal/config"
	"mmdevice/internal/device"
)

func off() *bool { b := false; return &b }

func demoConfig() []config.DeviceConfig {
	return []config.DeviceConfig{
		{Label: "Camera", Adapter: demo.ModuleName, Device: demo.CameraName},
		{Label: "Focus", Adapter: demo.ModuleName, Device: demo.StageName},
		{Label: "XY", Adapter: demo.ModuleName, Device: demo.XYStageName},
		{Label: "Shutter", Adapter: demo.ModuleName, Device: demo.ShutterName},
		{Label: "Wheel", Adapter: demo.ModuleName, Device: demo.WheelName},
		{Label: "Spare", Adapter: demo.ModuleName, Device: demo.GenericName, Initialize: off()},
	}
}

func TestSessionOpenReportClose(t *testing.T) {
	pub := adapter.NewMemoryPublisher()
	mg := adapter.NewManager(adapter.ManagerConfig{Publisher: pub})
	s := NewSession(mg, nil, zerolog.Nop())
	if err := s.Open(demoConfig()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := strings.Join(s.Labels(), ","); got != "Camera,Focus,XY,Shutter,Wheel,Spare" {
		t.Fatalf("unexpected labels %s", got)
	}
	if len(mg.Loaded()) != 1 {
		t.Fatalf("expected demo loaded once, got %v", mg.Loaded())
	}

	reports := s.Report()
	byLabel := map[string]Report{}
	for _, r := range reports {
		byLabel[r.Label] = r
	}
	cam := byLabel["Camera"]
	if cam.Type != "camera" || cam.State != "initialized" || cam.Values["width"] != "16" || cam.Values["exposure_ms"] != "10" {
		t.Fatalf("unexpected camera report: %+v", cam)
	}
	if byLabel["Wheel"].Values["positions"] != "6" {
		t.Fatalf("unexpected wheel report: %+v", byLabel["Wheel"])
	}
	spare := byLabel["Spare"]
	if spare.State != "created" || len(spare.Values) != 0 {
		t.Fatalf("uninitialized device should not be read: %+v", spare)
	}

	d, ok := s.Get("Camera")
	if !ok {
		t.Fatalf("camera not found")
	}
	s.Close()
	if d.State() != device.StateDestroyed {
		t.Fatalf("camera not destroyed: %s", d.State())
	}
	if len(mg.Loaded()) != 0 || pub.Count(adapter.EventModuleUnloaded) != 1 {
		t.Fatalf("demo module not unloaded after close: %v", pub.Events())
	}
	if len(s.Labels()) != 0 {
		t.Fatalf("labels left after close")
	}
}

func TestSessionAddErrors(t *testing.T) {
	mg := adapter.NewManager(adapter.ManagerConfig{})
	s := NewSession(mg, nil, zerolog.Nop())
	defer s.Close()

	if err := s.Add(config.DeviceConfig{Label: "A", Adapter: demo.ModuleName, Device: demo.ShutterName}); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := s.Add(config.DeviceConfig{Label: "A", Adapter: demo.ModuleName, Device: demo.StageName})
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("expected duplicate label, got %v", err)
	}
	if err := s.Add(config.DeviceConfig{Label: "B", Adapter: "nope", Device: "X"}); !adapter.IsLoadError(err) {
		t.Fatalf("expected load error, got %v", err)
	}
	if err := s.Add(config.DeviceConfig{Label: "C", Adapter: demo.ModuleName, Device: "Nope"}); !adapter.IsCreationError(err) {
		t.Fatalf("expected creation error, got %v", err)
	}
	if got := s.Labels(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("failed adds left labels: %v", got)
	}
	if !s.Remove("A") || s.Remove("A") {
		t.Fatalf("remove should succeed exactly once")
	}
	if len(mg.Loaded()) != 0 {
		t.Fatalf("module still loaded after removing its only device")
	}
}

func TestLogCoreReceivesDeviceNotifications(t *testing.T) {
	var buf bytes.Buffer
	core := LogCore{Log: zerolog.New(&buf)}
	s := NewSession(adapter.NewManager(adapter.ManagerConfig{}), core, zerolog.Nop())
	defer s.Close()
	if err := s.Add(config.DeviceConfig{Label: "Focus", Adapter: demo.ModuleName, Device: demo.StageName}); err != nil {
		t.Fatalf("add: %v", err)
	}
	d, _ := s.Get("Focus")
	if err := d.(*device.Stage).SetPositionUm(42); err != nil {
		t.Fatalf("move: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"label":"Focus"`) || !strings.Contains(out, `"position_um":42`) {
		t.Fatalf("notification not logged: %s", out)
	}
}
