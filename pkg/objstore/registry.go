package objstore

import (
	"sort"
	"sync"

	"github.com/rawbytedev/hexscriptex/pkg/cosave"
)

// Object is a native value that scripts hold by handle and that persists
// in the co-save.
type Object interface {
	ClassName() string
	ClassVersion() uint32
	Save(enc cosave.Encoder) error
	Load(dec cosave.Decoder, version uint32) error
}

// Factory builds an empty object ready to be filled by Load.
type Factory func() Object

// Registry maps class names to factories so saved objects can be rebuilt.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterClass makes a class available for loading under name.
//
// If RegisterClass is called twice with the same name or if factory is nil,
// it panics.
func (r *Registry) RegisterClass(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		panic("registering object class: factory is nil")
	}

	if _, dup := r.factories[name]; dup {
		panic("registering object class: registration called twice for class " + name)
	}

	r.factories[name] = factory
}

func (r *Registry) Create(name string) (Object, bool) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return factory(), true
}

func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
