package adapter

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"mmdevice/internal/registry"
	"mmdevice/pkg/abi"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// SearchPaths are scanned, in order, for adapter library files.
	SearchPaths []string
	// Openers are tried in order for library files. Defaults to DefaultOpeners().
	Openers   []Opener
	Logger    *zerolog.Logger
	Publisher EventPublisher
}

// Manager loads adapter modules on first use and forgets them when their
// last reference is released. Loading is serialized by the manager; the
// returned modules may be used concurrently.
type Manager struct {
	mu          sync.Mutex
	searchPaths []string
	openers     []Opener
	modules     map[string]*Module
	log         zerolog.Logger
	logp        *zerolog.Logger
	pub         EventPublisher
}

// NewManager constructs a Manager from cfg, applying defaults for unset fields.
func NewManager(cfg ManagerConfig) *Manager {
	mg := &Manager{
		searchPaths: slices.Clone(cfg.SearchPaths),
		openers:     cfg.Openers,
		modules:     make(map[string]*Module),
		log:         zerolog.Nop(),
		pub:         noopPublisher{},
	}
	if len(mg.openers) == 0 {
		mg.openers = DefaultOpeners()
	}
	if cfg.Logger != nil {
		mg.log = cfg.Logger.With().Str("component", "adapter_manager").Logger()
		mg.logp = cfg.Logger
	}
	if cfg.Publisher != nil {
		mg.pub = cfg.Publisher
	}
	return mg
}

// Load returns the named module holding a new reference owned by the caller.
// A live cached module is reused; otherwise built-in registrations are
// checked first, then library files on the search paths.
func (mg *Manager) Load(name string) (*Module, error) {
	if name == "" {
		return nil, &LoadError{Module: "(unspecified)", Err: ErrModuleNotFound}
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()

	if m := mg.modules[name]; m != nil && m.tryAcquire() {
		return m, nil
	}

	raw, unload, path, err := mg.open(name)
	if err != nil {
		moduleLoadsTotal.WithLabelValues("error").Inc()
		mg.log.Error().Str("module", name).Err(err).Msg("adapter module load failed")
		mg.pub.Publish(Event{Name: EventModuleLoadFailed, Module: name, Fields: map[string]any{"error": err.Error()}})
		return nil, err
	}
	m, err := Wrap(name, path, raw, ModuleOptions{
		Unload:    unload,
		Logger:    mg.logp,
		Publisher: mg.pub,
		onUnload:  mg.forget,
	})
	if err != nil {
		mg.log.Error().Str("module", name).Err(err).Msg("adapter module rejected")
		mg.pub.Publish(Event{Name: EventModuleLoadFailed, Module: name, Fields: map[string]any{"error": err.Error()}})
		return nil, err
	}
	mg.modules[name] = m
	return m, nil
}

func (mg *Manager) open(name string) (abi.Module, func() error, string, error) {
	if raw, ok := lookupBuiltin(name); ok {
		return raw, nil, "builtin:" + name, nil
	}
	libs, err := registry.Scan(mg.searchPaths)
	if err != nil {
		return nil, nil, "", &LoadError{Module: name, Err: fmt.Errorf("scan search paths: %w", err)}
	}
	idx := slices.IndexFunc(libs, func(l registry.Library) bool { return l.Name == name })
	if idx < 0 {
		return nil, nil, "", &LoadError{Module: name, Err: ErrModuleNotFound}
	}
	path := libs[idx].Path
	var errs []error
	for _, o := range mg.openers {
		raw, unload, err := o.Open(path)
		if err == nil {
			return raw, unload, path, nil
		}
		errs = append(errs, err)
	}
	return nil, nil, path, &LoadError{Module: name, Path: path, Err: errors.Join(errs...)}
}

// forget drops m from the cache if it is still the cached entry for its name.
func (mg *Manager) forget(m *Module) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	if mg.modules[m.name] == m {
		delete(mg.modules, m.name)
	}
}

// Loaded returns the sorted names of modules currently loaded.
func (mg *Manager) Loaded() []string {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	out := make([]string, 0, len(mg.modules))
	for name, m := range mg.modules {
		if m.Loaded() {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Available lists every module name Load could resolve: built-ins plus
// library files found on the search paths.
func (mg *Manager) Available() ([]string, error) {
	out := Builtins()
	libs, err := registry.Scan(mg.searchPaths)
	if err != nil {
		return out, err
	}
	for _, l := range libs {
		if !slices.Contains(out, l.Name) {
			out = append(out, l.Name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// SearchPaths returns a copy of the configured search paths.
func (mg *Manager) SearchPaths() []string { return slices.Clone(mg.searchPaths) }
