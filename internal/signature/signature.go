package signature

import (
	"fmt"
	"strings"

	"arena/internal/typesys"
)

// Signature describes a required constructor or method.
type Signature struct {
	Name   string
	Params []typesys.Type
	Return typesys.Type
	Static bool
}

// New builds a method signature.
func New(name string, ret typesys.Type, params ...typesys.Type) Signature {
	return Signature{Name: name, Params: params, Return: ret}
}

// NewConstructor builds a constructor signature for owner.
func NewConstructor(owner typesys.Type, params ...typesys.Type) Signature {
	return Signature{Name: "<init>", Params: params, Return: owner}
}

// Matches is structural equality on name, ordered parameter types and return type.
func (s Signature) Matches(o Signature) bool {
	if s.Name != o.Name || !s.Return.Equal(o.Return) || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if !s.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Name
	}
	out := fmt.Sprintf("%s(%s):%s", s.Name, strings.Join(params, ","), s.Return.Name)
	if s.Static {
		out = "static " + out
	}
	return out
}

// InterfaceSpecification is the required interface of a search target.
type InterfaceSpecification struct {
	ClassName    string
	Constructors []Signature
	Methods      []Signature
}

// ConstructorIndex returns the index of the constructor matching sig, or -1.
func (s *InterfaceSpecification) ConstructorIndex(sig Signature) int {
	for i, c := range s.Constructors {
		if c.Matches(sig) {
			return i
		}
	}
	if len(sig.Params) == 0 {
		for i, c := range s.Constructors {
			if len(c.Params) == 0 {
				return i
			}
		}
	}
	return -1
}

// MethodIndex returns the index of the method matching sig, or -1.
// When no signature matches structurally, the first method with the same name
// is returned; specifications and reflected members are built independently.
func (s *InterfaceSpecification) MethodIndex(sig Signature) int {
	for i, m := range s.Methods {
		if m.Matches(sig) {
			return i
		}
	}
	for i, m := range s.Methods {
		if m.Name == sig.Name {
			return i
		}
	}
	return -1
}

// WithDefaultConstructor returns s, or a copy declaring a zero-argument
// constructor when s declares none.
func (s *InterfaceSpecification) WithDefaultConstructor() *InterfaceSpecification {
	if len(s.Constructors) > 0 {
		return s
	}
	cp := *s
	cp.Constructors = []Signature{NewConstructor(typesys.Named(s.ClassName))}
	return &cp
}

// Key identifies the specification for caching.
func (s *InterfaceSpecification) Key() string {
	var b strings.Builder
	b.WriteString(s.ClassName)
	for _, c := range s.Constructors {
		b.WriteString("|")
		b.WriteString(c.String())
	}
	for _, m := range s.Methods {
		b.WriteString("|")
		b.WriteString(m.String())
	}
	return b.String()
}
