package adapter

import (
	"slices"
	"sync"

	"mmdevice/pkg/abi"
)

var (
	builtinMu sync.RWMutex
	builtins  = make(map[string]abi.Module)
)

// Register makes an in-process module available under name. It is meant to
// be called from an init function, like database/sql drivers. Registering
// nil or the same name twice panics.
func Register(name string, m abi.Module) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	if m == nil {
		panic("adapter: Register module is nil")
	}
	if _, dup := builtins[name]; dup {
		panic("adapter: Register called twice for module " + name)
	}
	builtins[name] = m
}

// Builtins returns the sorted names of registered in-process modules.
func Builtins() []string {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func lookupBuiltin(name string) (abi.Module, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	m, ok := builtins[name]
	return m, ok
}
