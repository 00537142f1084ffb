package typesys

import (
	"fmt"
	"io"
	"reflect"
	"unicode/utf8"
)

// ListValue is the runtime representation of list-typed values.
type ListValue []any

var (
	anyType    = reflect.TypeOf((*any)(nil)).Elem()
	readerType = reflect.TypeOf((*io.Reader)(nil)).Elem()

	goPrimitives = map[string]reflect.Type{
		"boolean": reflect.TypeOf(false),
		"byte":    reflect.TypeOf(byte(0)),
		"char":    reflect.TypeOf(rune(0)),
		"short":   reflect.TypeOf(int16(0)),
		"int":     reflect.TypeOf(int32(0)),
		"long":    reflect.TypeOf(int64(0)),
		"float":   reflect.TypeOf(float32(0)),
		"double":  reflect.TypeOf(float64(0)),
	}
)

// GoType returns the Go representation used for runtime values of t.
// Wrappers and object types are carried as interface values so they may be nil.
func GoType(t Type) reflect.Type {
	switch t.Kind {
	case KindPrimitive:
		return goPrimitives[t.Name]
	case KindString:
		return reflect.TypeOf("")
	case KindArray:
		return reflect.SliceOf(GoType(*t.Elem))
	case KindList:
		return reflect.TypeOf(ListValue(nil))
	case KindStream:
		return readerType
	default:
		return anyType
	}
}

// Zero returns the zero value of t. Reference types yield nil.
func Zero(t Type) any {
	if t.Kind != KindPrimitive {
		return nil
	}
	return reflect.Zero(GoType(t)).Interface()
}

// Coerce converts v to the runtime representation of t. Numeric values are
// converted between widths, single-rune strings become chars and nested slices
// are rebuilt element by element.
func Coerce(v any, t Type) (any, error) {
	if v == nil {
		if t.Kind == KindPrimitive {
			return nil, fmt.Errorf("cannot assign null to %s", t.Name)
		}
		return nil, nil
	}

	switch t.Kind {
	case KindVoid:
		return nil, nil
	case KindPrimitive, KindWrapper:
		return coerceScalar(v, Unbox(t))
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("cannot use %T as %s", v, t.Name)
	case KindArray:
		return coerceArray(v, t)
	case KindList:
		switch x := v.(type) {
		case ListValue:
			return x, nil
		case []any:
			return ListValue(x), nil
		}
		return nil, fmt.Errorf("cannot use %T as %s", v, t.Name)
	case KindStream:
		if r, ok := v.(io.Reader); ok {
			return r, nil
		}
		return nil, fmt.Errorf("cannot use %T as %s", v, t.Name)
	default:
		return v, nil
	}
}

func coerceScalar(v any, prim Type) (any, error) {
	target, ok := goPrimitives[prim.Name]
	if !ok {
		return nil, fmt.Errorf("unknown primitive %q", prim.Name)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == target {
		return v, nil
	}

	if prim.Equal(Boolean) {
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
		return nil, fmt.Errorf("cannot use %T as boolean", v)
	}
	if s, ok := v.(string); ok && prim.Equal(Char) {
		if utf8.RuneCountInString(s) != 1 {
			return nil, fmt.Errorf("cannot use %q as char", s)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}
	if isNumeric(rv.Kind()) {
		return rv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, prim.Name)
}

func coerceArray(v any, t Type) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() == GoType(t) && t.Elem.Kind != KindWrapper {
		return v, nil
	}
	if s, ok := v.(string); ok && t.Elem.Equal(Char) {
		return []rune(s), nil
	}
	elems, err := Elements(v)
	if err != nil {
		return nil, fmt.Errorf("cannot use %T as %s: %w", v, t.Name, err)
	}
	return NewArray(*t.Elem, elems)
}

// NewArray materializes an array of elem from the given element values.
func NewArray(elem Type, elems []any) (any, error) {
	rv := reflect.MakeSlice(reflect.SliceOf(GoType(elem)), len(elems), len(elems))
	for i, e := range elems {
		c, err := Coerce(e, elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if c == nil {
			continue
		}
		rv.Index(i).Set(reflect.ValueOf(c))
	}
	return rv.Interface(), nil
}

// Elements returns the elements of a slice value. nil yields nil.
func Elements(arr any) ([]any, error) {
	if arr == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(arr)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%T is not an array", arr)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// SetElement assigns v to arr[index] after coercing it to the element type.
func SetElement(arr any, index int, v any) error {
	rv := reflect.ValueOf(arr)
	if arr == nil || rv.Kind() != reflect.Slice {
		return fmt.Errorf("%T is not an array", arr)
	}
	if index < 0 || index >= rv.Len() {
		return fmt.Errorf("index %d out of bounds for length %d", index, rv.Len())
	}
	slot := rv.Index(index)
	if v == nil {
		slot.Set(reflect.Zero(slot.Type()))
		return nil
	}
	val := reflect.ValueOf(v)
	switch {
	case val.Type().AssignableTo(slot.Type()):
		slot.Set(val)
	case isNumeric(val.Kind()) && isNumeric(slot.Kind()):
		slot.Set(val.Convert(slot.Type()))
	default:
		return fmt.Errorf("cannot store %T in %s", v, rv.Type())
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
