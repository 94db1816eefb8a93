package abi

// Standard status codes shared by all adapters. Adapter-specific codes start
// at 10000 by convention.
const (
	OK                    = 0
	Err                   = 1
	InvalidProperty       = 2
	InvalidPropertyValue  = 3
	DuplicateProperty     = 4
	InvalidPropertyType   = 5
	NativeModuleFailed    = 6
	UnsupportedDataFormat = 7
	InternalInconsistency = 8
	NotSupported          = 9
	UnknownLabel          = 10
	UnsupportedCommand    = 11
	UnknownPosition       = 12
	NoCallbackRegistered  = 13
	SerialCommandFailed   = 14
	InvalidInputParam     = 21
	BufferOverflow        = 22
	NotConnected          = 30
	CameraBusyAcquiring   = 31

	// FirstAdapterCode is the lowest code an adapter should use for its own errors.
	FirstAdapterCode = 10000
)

var standardText = map[int]string{
	Err:                   "Unspecified device error",
	InvalidProperty:       "Invalid property",
	InvalidPropertyValue:  "Invalid property value",
	DuplicateProperty:     "Duplicate property",
	InvalidPropertyType:   "Invalid property type",
	NativeModuleFailed:    "Native module failed",
	UnsupportedDataFormat: "Unsupported data format",
	InternalInconsistency: "Internal inconsistency",
	NotSupported:          "Operation not supported",
	UnknownLabel:          "Unknown label",
	UnsupportedCommand:    "Unsupported command",
	UnknownPosition:       "Unknown position",
	NoCallbackRegistered:  "No callback registered",
	SerialCommandFailed:   "Serial command failed",
	InvalidInputParam:     "Invalid input parameter",
	BufferOverflow:        "Buffer overflow",
	NotConnected:          "Device not connected",
	CameraBusyAcquiring:   "Camera is busy acquiring",
}

// StandardErrorText returns the default text for a standard status code.
// Adapters typically fall back to it from their own ErrorText.
func StandardErrorText(code int) (string, bool) {
	s, ok := standardText[code]
	return s, ok
}
