package member

import (
	"fmt"
	"strings"

	"arena/internal/typesys"
)

// Kind distinguishes the callable member variants.
type Kind int

const (
	KindConstructor Kind = iota
	KindMethod
	KindStaticMethod
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	case KindStaticMethod:
		return "static_method"
	default:
		return "field"
	}
}

// Modifiers is a bit set of member modifiers.
type Modifiers uint8

const (
	Public Modifiers = 1 << iota
	Static
	Final
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag == flag }

// Member is a callable unit of a candidate class. The set of variants is
// closed: Constructor, InstanceMethod, StaticMethod and FieldGetter.
type Member interface {
	Owner() typesys.Type
	Name() string
	Params() []typesys.Type
	Return() typesys.Type
	Modifiers() Modifiers
	Kind() Kind

	// Invoke calls the member. Static variants ignore the receiver.
	// Panics raised by the member are returned as *PanicError.
	Invoke(receiver any, args []any) (any, error)

	member()
}

type header struct {
	owner  typesys.Type
	name   string
	params []typesys.Type
	ret    typesys.Type
	mods   Modifiers
}

func (h *header) Owner() typesys.Type    { return h.owner }
func (h *header) Name() string           { return h.name }
func (h *header) Params() []typesys.Type { return h.params }
func (h *header) Return() typesys.Type   { return h.ret }
func (h *header) Modifiers() Modifiers   { return h.mods }
func (h *header) member()                {}

// Constructor creates instances of its owner.
type Constructor struct {
	header
	fn func(args []any) (any, error)
}

// NewConstructor declares a constructor of owner.
func NewConstructor(owner typesys.Type, mods Modifiers, params []typesys.Type, fn func(args []any) (any, error)) *Constructor {
	return &Constructor{
		header: header{owner: owner, name: "<init>", params: params, ret: owner, mods: mods},
		fn:     fn,
	}
}

func (c *Constructor) Kind() Kind { return KindConstructor }

func (c *Constructor) Invoke(_ any, args []any) (out any, err error) {
	defer recoverInto(&err)
	return c.fn(args)
}

// InstanceMethod is called on a receiver.
type InstanceMethod struct {
	header
	fn func(receiver any, args []any) (any, error)
}

// NewMethod declares an instance method of owner.
func NewMethod(owner typesys.Type, name string, mods Modifiers, params []typesys.Type, ret typesys.Type, fn func(receiver any, args []any) (any, error)) *InstanceMethod {
	return &InstanceMethod{
		header: header{owner: owner, name: name, params: params, ret: ret, mods: mods &^ Static},
		fn:     fn,
	}
}

func (m *InstanceMethod) Kind() Kind { return KindMethod }

func (m *InstanceMethod) Invoke(receiver any, args []any) (out any, err error) {
	if receiver == nil {
		return nil, NewFault("NullPointerException", fmt.Sprintf("%s invoked on null receiver", Describe(m)))
	}
	defer recoverInto(&err)
	return m.fn(receiver, args)
}

// StaticMethod is called without a receiver.
type StaticMethod struct {
	header
	fn func(args []any) (any, error)
}

// NewStaticMethod declares a static method of owner.
func NewStaticMethod(owner typesys.Type, name string, mods Modifiers, params []typesys.Type, ret typesys.Type, fn func(args []any) (any, error)) *StaticMethod {
	return &StaticMethod{
		header: header{owner: owner, name: name, params: params, ret: ret, mods: mods | Static},
		fn:     fn,
	}
}

func (m *StaticMethod) Kind() Kind { return KindStaticMethod }

func (m *StaticMethod) Invoke(_ any, args []any) (out any, err error) {
	defer recoverInto(&err)
	return m.fn(args)
}

// FieldGetter reads a static field.
type FieldGetter struct {
	header
	value func() any
}

// NewField declares a static field of owner holding value.
func NewField(owner typesys.Type, name string, mods Modifiers, typ typesys.Type, value any) *FieldGetter {
	return &FieldGetter{
		header: header{owner: owner, name: name, ret: typ, mods: mods | Static},
		value:  func() any { return value },
	}
}

func (f *FieldGetter) Kind() Kind { return KindField }

func (f *FieldGetter) Invoke(_ any, _ []any) (out any, err error) {
	defer recoverInto(&err)
	return f.value(), nil
}

// IsStatic reports whether m needs no receiver.
func IsStatic(m Member) bool {
	return m.Kind() == KindConstructor || m.Modifiers().Has(Static)
}

// Describe renders m as Owner.name(params):return.
func Describe(m Member) string {
	params := make([]string, len(m.Params()))
	for i, p := range m.Params() {
		params[i] = p.Name
	}
	switch m.Kind() {
	case KindConstructor:
		return fmt.Sprintf("%s(%s)", m.Owner().Name, strings.Join(params, ","))
	case KindField:
		return fmt.Sprintf("%s.%s:%s", m.Owner().Name, m.Name(), m.Return().Name)
	}
	return fmt.Sprintf("%s.%s(%s):%s", m.Owner().Name, m.Name(), strings.Join(params, ","), m.Return().Name)
}

// ID is the identity of m used for deduplication.
func ID(m Member) string {
	return m.Kind().String() + " " + Describe(m)
}
