// Package device wraps raw adapter handles in lifecycle-managed,
// capability-typed instances.
//
// Instance[T] is the shared base: it owns one raw handle, holds a reference
// on the adapter.Module that created it, runs the Created → Initialized →
// ShutDown → Destroyed state machine and turns nonzero status codes into
// *DeviceError values. Each device category is a thin struct embedding the
// base (Camera, Stage, XYStage, Shutter, StateDevice, ImageProcessor,
// Generic) and adds its own operations, all funnelled through the same
// call path.
//
// Instances do no locking. Callers serialize calls into one instance;
// distinct instances may be used from different goroutines.
package device
