// Package registry provides storage for bindings, decorators and cached
// instances keyed by identifier. It holds no resolution logic.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Kind tags how a binding participates in resolution.
type Kind int

const (
	// KindFactory is the primary producer of an identifier.
	// At most one factory exists per identifier; the last one registered wins.
	KindFactory Kind = iota

	// KindDecorator runs after construction and receives the built instance.
	// Decorators accumulate in registration order.
	KindDecorator
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindFactory:
		return "factory"
	case KindDecorator:
		return "decorator"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Binding is a registered constructable for an identifier.
type Binding struct {
	// ID is the identifier the binding is registered for
	ID string

	// Kind is fixed when the binding is registered
	Kind Kind

	// Constructable is opaque to the registry; the container's
	// introspector knows how to inspect and invoke it
	Constructable interface{}
}

// Registry stores bindings and instances.
// Individual methods are goroutine-safe; sequences of calls are not atomic.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]*Binding
	decorators map[string][]*Binding
	instances  map[string]interface{}
	noShare    map[string]struct{}
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		factories:  make(map[string]*Binding),
		decorators: make(map[string][]*Binding),
		instances:  make(map[string]interface{}),
		noShare:    make(map[string]struct{}),
	}
}

// Register stores a binding according to its kind and drops any cached
// instance for its identifier.
//
// This method is goroutine-safe.
func (r *Registry) Register(binding *Binding) error {
	if binding == nil {
		return fmt.Errorf("binding cannot be nil")
	}
	if binding.ID == "" {
		return fmt.Errorf("binding must have an identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch binding.Kind {
	case KindFactory:
		r.factories[binding.ID] = binding
	case KindDecorator:
		r.decorators[binding.ID] = append(r.decorators[binding.ID], binding)
	default:
		return fmt.Errorf("unknown binding kind %v for %s", binding.Kind, binding.ID)
	}
	delete(r.instances, binding.ID)
	return nil
}

// Factory returns the primary factory registered for id.
//
// This method is goroutine-safe.
func (r *Registry) Factory(id string) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, exists := r.factories[id]
	return binding, exists
}

// Has checks if a primary factory exists for id.
//
// This method is goroutine-safe.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[id]
	return exists
}

// Decorators returns the decorators for id in registration order.
// The returned slice is a copy.
//
// This method is goroutine-safe.
func (r *Registry) Decorators(id string) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.decorators[id]
	if len(list) == 0 {
		return nil
	}
	out := make([]*Binding, len(list))
	copy(out, list)
	return out
}

// Cached returns the cached instance for id.
//
// This method is goroutine-safe.
func (r *Registry) Cached(id string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, exists := r.instances[id]
	return instance, exists
}

// Store caches instance under id, replacing any previous entry.
//
// This method is goroutine-safe.
func (r *Registry) Store(id string, instance interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[id] = instance
}

// Invalidate drops the cached instance for id.
//
// This method is goroutine-safe.
func (r *Registry) Invalidate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, id)
}

// SetShare toggles cache participation for id. Identifiers are shared
// unless excluded.
//
// This method is goroutine-safe.
func (r *Registry) SetShare(id string, share bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if share {
		delete(r.noShare, id)
	} else {
		r.noShare[id] = struct{}{}
	}
}

// Shared reports whether instances of id are cached.
//
// This method is goroutine-safe.
func (r *Registry) Shared(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, excluded := r.noShare[id]
	return !excluded
}

// IDs returns all identifiers with a factory or decorator, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]bool, len(r.factories)+len(r.decorators))
	for id := range r.factories {
		set[id] = true
	}
	for id := range r.decorators {
		set[id] = true
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered bindings, decorators included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.factories)
	for _, list := range r.decorators {
		n += len(list)
	}
	return n
}
