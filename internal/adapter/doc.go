// Package adapter loads device adapter modules and keeps each one alive for
// exactly as long as something still references it.
//
// Files by concern:
//
//   - module.go: Module, the reference-counted wrapper around one loaded
//     abi.Module (Wrap, Acquire, Release, CreateDevice, DeleteDevice).
//   - manager.go: Manager, load-on-first-use cache keyed by module name.
//   - builtin.go: in-process module registrations (Register, Builtins).
//   - opener.go: Opener backends used for library files on search paths.
//   - goplugin.go / goplugin_other.go: Go plugin backend (stdlib plugin).
//   - cabi_cgo.go / cabi_stub.go: C ABI backend via dlopen, built with
//     `-tags=cabi` and cgo enabled. Without the tag a stub reports the
//     backend as unavailable.
//   - errors.go: LoadError, CreationError and helpers.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: prometheus collectors.
//
// A module returned by Wrap or Manager.Load carries one reference owned by
// the caller (the lease). Device instances acquire their own reference when
// they are constructed, so the usual pattern is:
//
//	mod, err := mgr.Load("demo")
//	if err != nil { ... }
//	defer mod.Release()
//	dev, err := device.New(core, mod, "DCam", "Camera", log)
//
// When the last reference is released the module is unloaded and a later
// Load opens it again.
package adapter
