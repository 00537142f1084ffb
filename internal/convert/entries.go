package convert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"arena/internal/typesys"
)

type typePred func(typesys.Type) bool

func arrayOf(pred typePred) typePred {
	return func(t typesys.Type) bool { return t.Kind == typesys.KindArray && pred(*t.Elem) }
}

func is(want typesys.Type) typePred {
	return func(t typesys.Type) bool { return t.Equal(want) }
}

func kind(k typesys.Kind) typePred {
	return func(t typesys.Type) bool { return t.Kind == k }
}

var (
	isBytes         = arrayOf(is(typesys.Byte))
	isWrappedBytes  = arrayOf(is(typesys.ByteWrapper))
	isChars         = arrayOf(is(typesys.Char))
	isWrappedChars  = arrayOf(is(typesys.CharWrapper))
	isString        = kind(typesys.KindString)
	isStream        = kind(typesys.KindStream)
	isArray         = kind(typesys.KindArray)
	isPrimitiveArr  = arrayOf(kind(typesys.KindPrimitive))
	isWrapperArr    = arrayOf(kind(typesys.KindWrapper))
	isObjectArr     = arrayOf(is(typesys.Object))
	isListLike      = typesys.IsListLike
	notPrimitiveArr = func(t typesys.Type) bool { return isArray(t) && t.Elem.Kind != typesys.KindPrimitive }
)

// pair converts between two disjoint type families a and b.
type pair struct {
	name string
	a, b typePred
	fits func(from, to typesys.Type) bool
	toB  func(v any, to typesys.Type) (any, error)
	toA  func(v any, to typesys.Type) (any, error)
}

func (p *pair) Name() string { return p.name }

func (p *pair) CanConvert(from, to typesys.Type) bool {
	if from.Equal(to) {
		return false
	}
	if !(p.a(from) && p.b(to)) && !(p.b(from) && p.a(to)) {
		return false
	}
	return p.fits == nil || p.fits(from, to)
}

func (p *pair) Convert(v any, to typesys.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch {
	case p.b(to):
		return p.toB(v, to)
	case p.a(to):
		return p.toA(v, to)
	}
	return nil, fmt.Errorf("%s: cannot convert to %s", p.name, to)
}

func bytesString() Converter {
	return &pair{
		name: "byte[]<->String",
		a:    isBytes,
		b:    isString,
		toB: func(v any, _ typesys.Type) (any, error) {
			b, err := as[[]byte](v)
			return string(b), err
		},
		toA: func(v any, _ typesys.Type) (any, error) {
			s, err := as[string](v)
			return []byte(s), err
		},
	}
}

func wrappedBytesString() Converter {
	return &pair{
		name: "Byte[]<->String",
		a:    isWrappedBytes,
		b:    isString,
		toB: func(v any, _ typesys.Type) (any, error) {
			raw, err := typesys.Coerce(v, typesys.ArrayOf(typesys.Byte))
			if err != nil {
				return nil, err
			}
			return string(raw.([]byte)), nil
		},
		toA: func(v any, to typesys.Type) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			return typesys.Coerce([]byte(s), to)
		},
	}
}

func charsString() Converter {
	return &pair{
		name: "char[]<->String",
		a:    isChars,
		b:    isString,
		toB: func(v any, _ typesys.Type) (any, error) {
			r, err := as[[]rune](v)
			return string(r), err
		},
		toA: func(v any, _ typesys.Type) (any, error) {
			s, err := as[string](v)
			return []rune(s), err
		},
	}
}

func wrappedCharsString() Converter {
	return &pair{
		name: "Character[]<->String",
		a:    isWrappedChars,
		b:    isString,
		toB: func(v any, _ typesys.Type) (any, error) {
			raw, err := typesys.Coerce(v, typesys.ArrayOf(typesys.Char))
			if err != nil {
				return nil, err
			}
			return string(raw.([]rune)), nil
		},
		toA: func(v any, to typesys.Type) (any, error) {
			s, err := as[string](v)
			if err != nil {
				return nil, err
			}
			return typesys.Coerce([]rune(s), to)
		},
	}
}

func bytesStream() Converter {
	return &pair{
		name: "byte[]<->stream",
		a:    isBytes,
		b:    isStream,
		toB: func(v any, _ typesys.Type) (any, error) {
			b, err := as[[]byte](v)
			return bytes.NewReader(b), err
		},
		toA: func(v any, _ typesys.Type) (any, error) {
			r, err := as[io.Reader](v)
			if err != nil {
				return nil, err
			}
			return io.ReadAll(r)
		},
	}
}

func stringStream() Converter {
	return &pair{
		name: "String<->stream",
		a:    isString,
		b:    isStream,
		toB: func(v any, _ typesys.Type) (any, error) {
			s, err := as[string](v)
			return strings.NewReader(s), err
		},
		toA: func(v any, _ typesys.Type) (any, error) {
			r, err := as[io.Reader](v)
			if err != nil {
				return nil, err
			}
			b, err := io.ReadAll(r)
			return string(b), err
		},
	}
}

// composed converts between a and b through String, using aText for a<->String
// and bText for String<->b.
func composed(name string, a, b typePred, aText, bText Converter) Converter {
	via := func(v any, first, second Converter, to typesys.Type) (any, error) {
		s, err := first.Convert(v, typesys.String)
		if err != nil {
			return nil, err
		}
		return second.Convert(s, to)
	}
	return &pair{
		name: name,
		a:    a,
		b:    b,
		toB: func(v any, to typesys.Type) (any, error) {
			return via(v, aText, bText, to)
		},
		toA: func(v any, to typesys.Type) (any, error) {
			return via(v, bText, aText, to)
		},
	}
}

func listArray() Converter {
	return &pair{
		name: "list<->array",
		a:    isListLike,
		b:    isArray,
		toB: func(v any, to typesys.Type) (any, error) {
			elems, err := listElements(v)
			if err != nil {
				return nil, err
			}
			if len(elems) == 0 {
				return nil, nil
			}
			return typesys.NewArray(*to.Elem, elems)
		},
		toA: func(v any, _ typesys.Type) (any, error) {
			elems, err := typesys.Elements(v)
			if err != nil {
				return nil, err
			}
			return typesys.ListValue(elems), nil
		},
	}
}

func primitiveWrapperArray() Converter {
	return &pair{
		name: "primitive[]<->wrapper[]",
		a:    isPrimitiveArr,
		b:    isWrapperArr,
		fits: func(from, to typesys.Type) bool {
			return typesys.Box(*from.Elem).Equal(typesys.Box(*to.Elem))
		},
		toB: rebuildArray,
		toA: rebuildArray,
	}
}

func primitiveObjectArray() Converter {
	return &pair{
		name: "primitive[]<->Object[]",
		a:    isPrimitiveArr,
		b:    isObjectArr,
		toB:  rebuildArray,
		toA:  rebuildArray,
	}
}

// objectArrays converts between reference arrays whose element types are
// assignable in either direction, coercing each element.
type objectArrays struct{}

func (objectArrays) Name() string { return "Object[]<->Object[]" }

func (objectArrays) CanConvert(from, to typesys.Type) bool {
	if from.Equal(to) || !notPrimitiveArr(from) || !notPrimitiveArr(to) {
		return false
	}
	return typesys.AssignableTo(*from.Elem, *to.Elem) || typesys.AssignableTo(*to.Elem, *from.Elem)
}

func (objectArrays) Convert(v any, to typesys.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	return rebuildArray(v, to)
}

func rebuildArray(v any, to typesys.Type) (any, error) {
	elems, err := typesys.Elements(v)
	if err != nil {
		return nil, err
	}
	return typesys.NewArray(*to.Elem, elems)
}

func listElements(v any) ([]any, error) {
	switch l := v.(type) {
	case typesys.ListValue:
		return l, nil
	case []any:
		return l, nil
	}
	return typesys.Elements(v)
}

func as[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected value %T, want %T", v, zero)
	}
	return t, nil
}
