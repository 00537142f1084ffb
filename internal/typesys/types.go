package typesys

import (
	"strings"
)

// Kind classifies a semantic type tag.
type Kind int

const (
	KindVoid Kind = iota
	KindPrimitive
	KindWrapper
	KindString
	KindArray
	KindList
	KindStream
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindPrimitive:
		return "primitive"
	case KindWrapper:
		return "wrapper"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindList:
		return "list"
	case KindStream:
		return "stream"
	default:
		return "object"
	}
}

// Type is a semantic type tag. Two types are equal when their names are equal.
type Type struct {
	Name   string
	Kind   Kind
	Elem   *Type    // element type of arrays
	Supers []string // flattened supertype names of object types
}

var (
	Void = Type{Name: "void", Kind: KindVoid}

	Boolean = primitive("boolean")
	Byte    = primitive("byte")
	Char    = primitive("char")
	Short   = primitive("short")
	Int     = primitive("int")
	Long    = primitive("long")
	Float   = primitive("float")
	Double  = primitive("double")

	BooleanWrapper = wrapper("Boolean")
	ByteWrapper    = wrapper("Byte")
	CharWrapper    = wrapper("Character")
	ShortWrapper   = wrapper("Short")
	IntWrapper     = wrapper("Integer")
	LongWrapper    = wrapper("Long")
	FloatWrapper   = wrapper("Float")
	DoubleWrapper  = wrapper("Double")

	String = Type{Name: "String", Kind: KindString}
	Object = Type{Name: "Object", Kind: KindObject}
	List   = Type{Name: "List", Kind: KindList}
	Stream = Type{Name: "Stream", Kind: KindStream}
)

var (
	boxes = map[string]Type{
		"boolean": BooleanWrapper,
		"byte":    ByteWrapper,
		"char":    CharWrapper,
		"short":   ShortWrapper,
		"int":     IntWrapper,
		"long":    LongWrapper,
		"float":   FloatWrapper,
		"double":  DoubleWrapper,
	}
	unboxes = map[string]Type{}
	builtin = map[string]Type{}
)

func init() {
	for _, t := range []Type{Void, String, Object, List, Stream} {
		builtin[t.Name] = t
	}
	for name, w := range boxes {
		p := primitive(name)
		unboxes[w.Name] = p
		builtin[p.Name] = p
		builtin[w.Name] = w
	}
}

func primitive(name string) Type { return Type{Name: name, Kind: KindPrimitive} }
func wrapper(name string) Type   { return Type{Name: name, Kind: KindWrapper} }

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Name: elem.Name + "[]", Kind: KindArray, Elem: &e}
}

// Named returns an object type with the given flattened supertypes.
func Named(name string, supers ...string) Type {
	return Type{Name: name, Kind: KindObject, Supers: supers}
}

// Parse resolves a type name such as "int", "char[]" or "Integer[][]".
// Unknown names become object types without supertypes.
func Parse(name string) Type {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "[]") {
		return ArrayOf(Parse(strings.TrimSuffix(name, "[]")))
	}
	if t, ok := builtin[name]; ok {
		return t
	}
	return Named(name)
}

func (t Type) Equal(o Type) bool { return t.Name == o.Name }

func (t Type) IsZero() bool { return t.Name == "" }

func (t Type) IsVoid() bool { return t.Kind == KindVoid }

func (t Type) String() string { return t.Name }

// Box maps a primitive to its wrapper. Other types are returned unchanged.
func Box(t Type) Type {
	if w, ok := boxes[t.Name]; ok && t.Kind == KindPrimitive {
		return w
	}
	return t
}

// Unbox maps a wrapper to its primitive. Other types are returned unchanged.
func Unbox(t Type) Type {
	if p, ok := unboxes[t.Name]; ok && t.Kind == KindWrapper {
		return p
	}
	return t
}

// IsListLike reports whether t is the list type or declares it as a supertype.
func IsListLike(t Type) bool {
	if t.Kind == KindList {
		return true
	}
	for _, s := range t.Supers {
		if s == List.Name {
			return true
		}
	}
	return false
}

// IsMutable reports whether values of t can be changed through a reference.
// Text, scalars and void are immutable.
func IsMutable(t Type) bool {
	switch t.Kind {
	case KindVoid, KindPrimitive, KindWrapper, KindString:
		return false
	}
	return true
}
