package member

import (
	"sort"
	"sync"

	"arena/internal/typesys"
)

// Class is a loaded candidate class and its reflective member list.
type Class struct {
	Name         string
	Type         typesys.Type
	Constructors []Member
	Methods      []Member
	Fields       []Member
}

// NewClass creates an empty class of the given type.
func NewClass(t typesys.Type) *Class {
	return &Class{Name: t.Name, Type: t}
}

// Add files m under the list matching its kind.
func (c *Class) Add(members ...Member) *Class {
	for _, m := range members {
		switch m.Kind() {
		case KindConstructor:
			c.Constructors = append(c.Constructors, m)
		case KindField:
			c.Fields = append(c.Fields, m)
		default:
			c.Methods = append(c.Methods, m)
		}
	}
	return c
}

// Field returns the field with the given name.
func (c *Class) Field(name string) (Member, bool) {
	for _, f := range c.Fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// DefaultConstructor returns the public zero-argument constructor, if any.
func (c *Class) DefaultConstructor() (Member, bool) {
	for _, m := range c.Constructors {
		if len(m.Params()) == 0 && m.Modifiers().Has(Public) {
			return m, true
		}
	}
	return nil, false
}

// Registry holds already-loaded candidate classes by name.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

func (r *Registry) Register(classes ...*Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range classes {
		r.classes[c.Name] = c
	}
}

func (r *Registry) Get(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// All returns the registered classes sorted by name.
func (r *Registry) All() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
