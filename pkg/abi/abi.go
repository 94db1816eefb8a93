// Package abi describes the raw contract every device adapter module exports.
//
// An adapter module is a plugin binary (a C shared library loaded through the
// cabi opener, a Go plugin, or a module registered in-process) that creates
// raw device handles by name. Every raw call returns an integer status code:
// OK (0) means success, anything else is an adapter-defined error that the
// module can turn into text with ErrorText.
//
// Plugin authors implement Module plus one category interface per device
// (Camera, Stage, ...). Hosts never call these interfaces directly; they go
// through mmdevice/internal/device, which adds lifecycle and error
// translation on top.
package abi

// Interface versions a module must report to be accepted by the host.
const (
	ModuleInterfaceVersion = 10
	DeviceInterfaceVersion = 71
)

// DeviceType identifies the category of a raw device. Values follow the
// MMDevice numbering so that C adapters can report them unchanged.
type DeviceType int

const (
	UnknownType        DeviceType = 0
	AnyType            DeviceType = 1
	CameraType         DeviceType = 2
	ShutterType        DeviceType = 3
	StateType          DeviceType = 4
	StageType          DeviceType = 5
	XYStageType        DeviceType = 6
	SerialType         DeviceType = 7
	GenericType        DeviceType = 8
	AutoFocusType      DeviceType = 9
	CoreType           DeviceType = 10
	ImageProcessorType DeviceType = 11
)

var deviceTypeNames = map[DeviceType]string{
	UnknownType:        "unknown",
	AnyType:            "any",
	CameraType:         "camera",
	ShutterType:        "shutter",
	StateType:          "state",
	StageType:          "stage",
	XYStageType:        "xystage",
	SerialType:         "serial",
	GenericType:        "generic",
	AutoFocusType:      "autofocus",
	CoreType:           "core",
	ImageProcessorType: "imageprocessor",
}

func (t DeviceType) String() string {
	if s, ok := deviceTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Module is the set of entry points resolved from an adapter module at load time.
type Module interface {
	ModuleVersion() int
	DeviceInterfaceVersion() int
	// DeviceNames lists the devices this module can create.
	DeviceNames() []string
	DeviceDescription(name string) string
	DeviceType(name string) DeviceType
	// CreateDevice returns nil when the device cannot be created.
	CreateDevice(name string) Device
	// DeleteDevice releases a handle returned by CreateDevice.
	DeleteDevice(d Device) int
	// ErrorText resolves an adapter-defined status code. ok is false for codes
	// the module does not know.
	ErrorText(code int) (text string, ok bool)
}

// Device is the part of the raw ABI shared by every category.
type Device interface {
	Initialize() int
	Shutdown() int
	Type() DeviceType
}

// Camera is the raw camera entry point set.
type Camera interface {
	Device
	SnapImage() int
	// ImageBuffer returns the last snapped frame, nil if none is available.
	ImageBuffer() []byte
	ImageWidth() int
	ImageHeight() int
	ImageBytesPerPixel() int
	SetExposure(ms float64) int
	Exposure() (float64, int)
}

// Stage is a single-axis (focus) stage.
type Stage interface {
	Device
	SetPositionUm(pos float64) int
	PositionUm() (float64, int)
	Home() int
}

// XYStage is a two-axis stage.
type XYStage interface {
	Device
	SetXYPositionUm(x, y float64) int
	XYPositionUm() (x, y float64, code int)
	Home() int
}

// Shutter is a device that can be opened and closed.
type Shutter interface {
	Device
	SetOpen(open bool) int
	Open() (bool, int)
}

// State is a device with a discrete set of positions (filter wheels, turrets).
type State interface {
	Device
	SetPosition(pos int) int
	Position() (int, int)
	NumberOfPositions() int
}

// ImageProcessor transforms an image buffer in place.
type ImageProcessor interface {
	Device
	Process(buf []byte, width, height, byteDepth int) int
}

// Generic has no entry points beyond the lifecycle.
type Generic interface {
	Device
}

// Host is the callback surface a device may use to reach its host.
type Host interface {
	LogMessage(msg string, debugOnly bool) int
	OnStagePositionChanged(pos float64) int
	OnXYStagePositionChanged(x, y float64) int
	OnShutterOpenChanged(open bool) int
	OnExposureChanged(ms float64) int
}

// HostAware is implemented by devices that want host callbacks. SetHost is
// called once, before Initialize.
type HostAware interface {
	SetHost(h Host)
}
