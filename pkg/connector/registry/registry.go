// Package registry maps wrapper identifiers to their constructors,
// validators and metadata. The table is populated by wrapper packages
// at init time and is read-only afterwards.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/core"
	"github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/logger"
	"github.com/openfdw/openfdw/pkg/secrets"
)

// Definition bundles everything the host needs to expose one wrapper:
// its construction entry point, its definition-time validator, and its
// static metadata.
type Definition struct {
	Metadata  core.Metadata
	Factory   core.Factory
	Validator core.Validator
}

// Registry manages wrapper registration and instantiation.
type Registry struct {
	wrappers map[string]Definition
	mu       sync.RWMutex
	logger   *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new wrapper registry.
func NewRegistry() *Registry {
	return &Registry{
		wrappers: make(map[string]Definition),
		logger:   logger.Get().With(zap.String("component", "wrapper_registry")),
	}
}

// Register adds a wrapper definition under its metadata name.
func (r *Registry) Register(def Definition) error {
	name := def.Metadata.Name
	if name == "" {
		return errors.New(errors.ErrorTypeConfig, "wrapper metadata has no name")
	}
	if def.Factory == nil {
		return errors.Newf(errors.ErrorTypeConfig, "wrapper %s has no factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.wrappers[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("wrapper %s already registered", name))
	}

	r.wrappers[name] = def
	r.logger.Info("wrapper registered",
		zap.String("name", name),
		zap.String("version", def.Metadata.Version))
	return nil
}

// New creates a wrapper instance by name.
func (r *Registry) New(ctx context.Context, name string, options config.Options, store secrets.Store) (core.ForeignDataWrapper, error) {
	r.mu.RLock()
	def, exists := r.wrappers[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("wrapper %s not found", name))
	}

	fdw, err := def.Factory(ctx, options, store)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create wrapper %s", name))
	}
	return fdw, nil
}

// Validate runs the named wrapper's validator against options at
// definition time. Wrappers without a validator accept anything.
func (r *Registry) Validate(name string, options config.Options, kind core.ObjectKind) error {
	r.mu.RLock()
	def, exists := r.wrappers[name]
	r.mu.RUnlock()

	if !exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("wrapper %s not found", name))
	}
	if def.Validator == nil {
		return nil
	}
	return def.Validator(options, kind)
}

// Metadata returns the named wrapper's static metadata.
func (r *Registry) Metadata(name string) (core.Metadata, error) {
	r.mu.RLock()
	def, exists := r.wrappers[name]
	r.mu.RUnlock()

	if !exists {
		return core.Metadata{}, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("wrapper %s not found", name))
	}
	return def.Metadata, nil
}

// List returns metadata for all registered wrappers.
func (r *Registry) List() []core.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Metadata, 0, len(r.wrappers))
	for _, def := range r.wrappers {
		out = append(out, def.Metadata)
	}
	return out
}

// Has checks whether a wrapper is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.wrappers[name]
	return exists
}

// Clear removes all registered wrappers (mainly for testing).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wrappers = make(map[string]Definition)
}

// Global registry functions

// Register adds a wrapper definition to the global registry.
func Register(def Definition) error {
	return globalRegistry.Register(def)
}

// MustRegister registers a wrapper definition and panics on conflict.
// Wrapper packages call this from init.
func MustRegister(def Definition) {
	if err := globalRegistry.Register(def); err != nil {
		panic(err)
	}
}

// New creates a wrapper instance from the global registry.
func New(ctx context.Context, name string, options config.Options, store secrets.Store) (core.ForeignDataWrapper, error) {
	return globalRegistry.New(ctx, name, options, store)
}

// Validate runs a validator from the global registry.
func Validate(name string, options config.Options, kind core.ObjectKind) error {
	return globalRegistry.Validate(name, options, kind)
}

// Metadata returns wrapper metadata from the global registry.
func Metadata(name string) (core.Metadata, error) {
	return globalRegistry.Metadata(name)
}

// List returns all wrapper metadata from the global registry.
func List() []core.Metadata {
	return globalRegistry.List()
}

// Has checks the global registry.
func Has(name string) bool {
	return globalRegistry.Has(name)
}

// GetRegistry returns the global registry instance.
func GetRegistry() *Registry {
	return globalRegistry
}
