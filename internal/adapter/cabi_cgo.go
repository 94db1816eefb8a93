//go:build cabi && cgo

package adapter

// C ABI backend. An adapter library exports plain C functions prefixed MMA_.
// Required entry points are resolved once in Open; category entry points are
// optional and decide which raw category a handle is wrapped as.
//
// Link directives: libdl on linux. The adapter libraries themselves are
// opened at runtime, nothing is linked against them.

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef int (*mma_int_void)(void);
typedef int (*mma_int_int_buf)(int, char*, int);
typedef int (*mma_int_cstr)(const char*);
typedef int (*mma_int_cstr_buf)(const char*, char*, int);
typedef void* (*mma_ptr_cstr)(const char*);
typedef int (*mma_int_ptr)(void*);
typedef int (*mma_int_ptr_dbl)(void*, double);
typedef int (*mma_int_ptr_dblp)(void*, double*);
typedef int (*mma_int_ptr_dbl2)(void*, double, double);
typedef int (*mma_int_ptr_dblp2)(void*, double*, double*);
typedef int (*mma_int_ptr_int)(void*, int);
typedef int (*mma_int_ptr_intp)(void*, int*);
typedef const unsigned char* (*mma_buf_ptr)(void*);
typedef int (*mma_process)(void*, unsigned char*, unsigned, unsigned, unsigned);

static int mma_call_int_void(void* f) { return ((mma_int_void)f)(); }
static int mma_call_int_int_buf(void* f, int a, char* b, int n) { return ((mma_int_int_buf)f)(a, b, n); }
static int mma_call_int_cstr(void* f, const char* s) { return ((mma_int_cstr)f)(s); }
static int mma_call_int_cstr_buf(void* f, const char* s, char* b, int n) { return ((mma_int_cstr_buf)f)(s, b, n); }
static void* mma_call_ptr_cstr(void* f, const char* s) { return ((mma_ptr_cstr)f)(s); }
static int mma_call_int_ptr(void* f, void* h) { return ((mma_int_ptr)f)(h); }
static int mma_call_int_ptr_dbl(void* f, void* h, double v) { return ((mma_int_ptr_dbl)f)(h, v); }
static int mma_call_int_ptr_dblp(void* f, void* h, double* v) { return ((mma_int_ptr_dblp)f)(h, v); }
static int mma_call_int_ptr_dbl2(void* f, void* h, double x, double y) { return ((mma_int_ptr_dbl2)f)(h, x, y); }
static int mma_call_int_ptr_dblp2(void* f, void* h, double* x, double* y) { return ((mma_int_ptr_dblp2)f)(h, x, y); }
static int mma_call_int_ptr_int(void* f, void* h, int v) { return ((mma_int_ptr_int)f)(h, v); }
static int mma_call_int_ptr_intp(void* f, void* h, int* v) { return ((mma_int_ptr_intp)f)(h, v); }
static const unsigned char* mma_call_buf_ptr(void* f, void* h) { return ((mma_buf_ptr)f)(h); }
static int mma_call_process(void* f, void* h, unsigned char* b, unsigned w, unsigned ht, unsigned d) {
	return ((mma_process)f)(h, b, w, ht, d);
}
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"mmdevice/pkg/abi"
)

const cTextLen = 1024

var requiredSymbols = []string{
	"MMA_GetModuleVersion",
	"MMA_GetDeviceInterfaceVersion",
	"MMA_GetNumberOfDevices",
	"MMA_GetDeviceName",
	"MMA_GetDeviceType",
	"MMA_CreateDevice",
	"MMA_DeleteDevice",
	"MMA_GetErrorText",
	"MMA_Initialize",
	"MMA_Shutdown",
}

var optionalSymbols = []string{
	"MMA_GetDeviceDescription",
	// camera
	"MMA_SnapImage", "MMA_GetImageBuffer", "MMA_GetImageWidth", "MMA_GetImageHeight",
	"MMA_GetImageBytesPerPixel", "MMA_SetExposure", "MMA_GetExposure",
	// stages
	"MMA_SetPositionUm", "MMA_GetPositionUm", "MMA_Home",
	"MMA_SetXYPositionUm", "MMA_GetXYPositionUm",
	// shutter
	"MMA_SetOpen", "MMA_GetOpen",
	// state device
	"MMA_SetPosition", "MMA_GetPosition", "MMA_GetNumberOfPositions",
	// image processor
	"MMA_Process",
}

// categorySymbols lists the entry points a handle needs to be wrapped as its
// reported category.
var categorySymbols = map[abi.DeviceType][]string{
	abi.CameraType:         {"MMA_SnapImage", "MMA_GetImageBuffer", "MMA_GetImageWidth", "MMA_GetImageHeight", "MMA_GetImageBytesPerPixel", "MMA_SetExposure", "MMA_GetExposure"},
	abi.StageType:          {"MMA_SetPositionUm", "MMA_GetPositionUm", "MMA_Home"},
	abi.XYStageType:        {"MMA_SetXYPositionUm", "MMA_GetXYPositionUm", "MMA_Home"},
	abi.ShutterType:        {"MMA_SetOpen", "MMA_GetOpen"},
	abi.StateType:          {"MMA_SetPosition", "MMA_GetPosition", "MMA_GetNumberOfPositions"},
	abi.ImageProcessorType: {"MMA_Process"},
}

// CABIOpener opens adapter libraries exporting the MMA_ C entry points.
type CABIOpener struct{}

func (CABIOpener) Open(path string) (abi.Module, func() error, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	h := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if h == nil {
		return nil, nil, fmt.Errorf("c abi: dlopen: %s", C.GoString(C.dlerror()))
	}
	lib := &cLibrary{handle: h, sym: make(map[string]unsafe.Pointer)}
	for _, name := range requiredSymbols {
		p := lib.lookup(name)
		if p == nil {
			_ = lib.close()
			return nil, nil, fmt.Errorf("%w: %s in %s", ErrMissingSymbol, name, path)
		}
		lib.sym[name] = p
	}
	for _, name := range optionalSymbols {
		if p := lib.lookup(name); p != nil {
			lib.sym[name] = p
		}
	}
	return lib, lib.close, nil
}

// cLibrary is one dlopen'ed adapter library. The symbol table is written only
// in Open.
type cLibrary struct {
	handle unsafe.Pointer
	sym    map[string]unsafe.Pointer
}

func (l *cLibrary) lookup(name string) unsafe.Pointer {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	return C.dlsym(l.handle, cs)
}

func (l *cLibrary) close() error {
	if C.dlclose(l.handle) != 0 {
		return fmt.Errorf("c abi: dlclose: %s", C.GoString(C.dlerror()))
	}
	return nil
}

func (l *cLibrary) has(names ...string) bool {
	for _, n := range names {
		if l.sym[n] == nil {
			return false
		}
	}
	return true
}

func (l *cLibrary) ModuleVersion() int {
	return int(C.mma_call_int_void(l.sym["MMA_GetModuleVersion"]))
}

func (l *cLibrary) DeviceInterfaceVersion() int {
	return int(C.mma_call_int_void(l.sym["MMA_GetDeviceInterfaceVersion"]))
}

func (l *cLibrary) DeviceNames() []string {
	n := int(C.mma_call_int_void(l.sym["MMA_GetNumberOfDevices"]))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var buf [cTextLen]C.char
		if C.mma_call_int_int_buf(l.sym["MMA_GetDeviceName"], C.int(i), &buf[0], C.int(len(buf))) != abi.OK {
			continue
		}
		out = append(out, C.GoString(&buf[0]))
	}
	return out
}

func (l *cLibrary) DeviceDescription(name string) string {
	f := l.sym["MMA_GetDeviceDescription"]
	if f == nil {
		return ""
	}
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var buf [cTextLen]C.char
	if C.mma_call_int_cstr_buf(f, cs, &buf[0], C.int(len(buf))) != abi.OK {
		return ""
	}
	return C.GoString(&buf[0])
}

func (l *cLibrary) DeviceType(name string) abi.DeviceType {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	return abi.DeviceType(C.mma_call_int_cstr(l.sym["MMA_GetDeviceType"], cs))
}

func (l *cLibrary) CreateDevice(name string) abi.Device {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	h := C.mma_call_ptr_cstr(l.sym["MMA_CreateDevice"], cs)
	if h == nil {
		return nil
	}
	base := cDevice{lib: l, h: h, typ: l.DeviceType(name)}
	if !l.has(categorySymbols[base.typ]...) {
		// Missing category entry points: expose lifecycle only and let the
		// host reject the handle.
		return &base
	}
	switch base.typ {
	case abi.CameraType:
		return &cCamera{base}
	case abi.StageType:
		return &cStage{base}
	case abi.XYStageType:
		return &cXYStage{base}
	case abi.ShutterType:
		return &cShutter{base}
	case abi.StateType:
		return &cState{base}
	case abi.ImageProcessorType:
		return &cImageProcessor{base}
	}
	return &base
}

type cHandle interface{ cPtr() unsafe.Pointer }

func (l *cLibrary) DeleteDevice(d abi.Device) int {
	ch, ok := d.(cHandle)
	if !ok {
		return abi.InternalInconsistency
	}
	return int(C.mma_call_int_ptr(l.sym["MMA_DeleteDevice"], ch.cPtr()))
}

// ErrorText relies on MMA_GetErrorText returning nonzero for known codes.
func (l *cLibrary) ErrorText(code int) (string, bool) {
	var buf [cTextLen]C.char
	if C.mma_call_int_int_buf(l.sym["MMA_GetErrorText"], C.int(code), &buf[0], C.int(len(buf))) == 0 {
		return "", false
	}
	return C.GoString(&buf[0]), true
}

// cDevice is a raw handle owned by the adapter library.
type cDevice struct {
	lib *cLibrary
	h   unsafe.Pointer
	typ abi.DeviceType
}

func (d *cDevice) cPtr() unsafe.Pointer          { return d.h }
func (d *cDevice) Type() abi.DeviceType          { return d.typ }
func (d *cDevice) Initialize() int               { return d.callPtr("MMA_Initialize") }
func (d *cDevice) Shutdown() int                 { return d.callPtr("MMA_Shutdown") }
func (d *cDevice) fn(name string) unsafe.Pointer { return d.lib.sym[name] }

func (d *cDevice) callPtr(name string) int {
	return int(C.mma_call_int_ptr(d.fn(name), d.h))
}

type cCamera struct{ cDevice }

func (c *cCamera) SnapImage() int          { return c.callPtr("MMA_SnapImage") }
func (c *cCamera) ImageWidth() int         { return c.callPtr("MMA_GetImageWidth") }
func (c *cCamera) ImageHeight() int        { return c.callPtr("MMA_GetImageHeight") }
func (c *cCamera) ImageBytesPerPixel() int { return c.callPtr("MMA_GetImageBytesPerPixel") }

func (c *cCamera) ImageBuffer() []byte {
	p := C.mma_call_buf_ptr(c.fn("MMA_GetImageBuffer"), c.h)
	if p == nil {
		return nil
	}
	n := c.ImageWidth() * c.ImageHeight() * c.ImageBytesPerPixel()
	if n <= 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

func (c *cCamera) SetExposure(ms float64) int {
	return int(C.mma_call_int_ptr_dbl(c.fn("MMA_SetExposure"), c.h, C.double(ms)))
}

func (c *cCamera) Exposure() (float64, int) {
	var v C.double
	code := C.mma_call_int_ptr_dblp(c.fn("MMA_GetExposure"), c.h, &v)
	return float64(v), int(code)
}

type cStage struct{ cDevice }

func (s *cStage) SetPositionUm(pos float64) int {
	return int(C.mma_call_int_ptr_dbl(s.fn("MMA_SetPositionUm"), s.h, C.double(pos)))
}

func (s *cStage) PositionUm() (float64, int) {
	var v C.double
	code := C.mma_call_int_ptr_dblp(s.fn("MMA_GetPositionUm"), s.h, &v)
	return float64(v), int(code)
}

func (s *cStage) Home() int { return s.callPtr("MMA_Home") }

type cXYStage struct{ cDevice }

func (s *cXYStage) SetXYPositionUm(x, y float64) int {
	return int(C.mma_call_int_ptr_dbl2(s.fn("MMA_SetXYPositionUm"), s.h, C.double(x), C.double(y)))
}

func (s *cXYStage) XYPositionUm() (float64, float64, int) {
	var x, y C.double
	code := C.mma_call_int_ptr_dblp2(s.fn("MMA_GetXYPositionUm"), s.h, &x, &y)
	return float64(x), float64(y), int(code)
}

func (s *cXYStage) Home() int { return s.callPtr("MMA_Home") }

type cShutter struct{ cDevice }

func (s *cShutter) SetOpen(open bool) int {
	v := 0
	if open {
		v = 1
	}
	return int(C.mma_call_int_ptr_int(s.fn("MMA_SetOpen"), s.h, C.int(v)))
}

func (s *cShutter) Open() (bool, int) {
	var v C.int
	code := C.mma_call_int_ptr_intp(s.fn("MMA_GetOpen"), s.h, &v)
	return v != 0, int(code)
}

type cState struct{ cDevice }

func (s *cState) SetPosition(pos int) int {
	return int(C.mma_call_int_ptr_int(s.fn("MMA_SetPosition"), s.h, C.int(pos)))
}

func (s *cState) Position() (int, int) {
	var v C.int
	code := C.mma_call_int_ptr_intp(s.fn("MMA_GetPosition"), s.h, &v)
	return int(v), int(code)
}

func (s *cState) NumberOfPositions() int { return s.callPtr("MMA_GetNumberOfPositions") }

type cImageProcessor struct{ cDevice }

func (p *cImageProcessor) Process(buf []byte, width, height, byteDepth int) int {
	if len(buf) == 0 {
		return abi.InvalidInputParam
	}
	for _, v := range []int{width, height, byteDepth} {
		if v < 0 || uint64(v) > math.MaxUint32 {
			return abi.InvalidInputParam
		}
	}
	return int(C.mma_call_process(p.fn("MMA_Process"), p.h,
		(*C.uchar)(unsafe.Pointer(&buf[0])), C.uint(width), C.uint(height), C.uint(byteDepth)))
}
