package record

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"arena/internal/typesys"
)

// Render produces the JSON text of a runtime value of type t. Chars render as
// one-character strings and byte arrays as lists of numbers.
func Render(v any, t typesys.Type) (string, error) {
	jv, err := jsonValue(v, t)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(jv)
	if err != nil {
		return "", fmt.Errorf("failed to render %T: %w", v, err)
	}
	return string(b), nil
}

func jsonValue(v any, t typesys.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(io.Reader); ok {
		return nil, fmt.Errorf("cannot render stream %T", v)
	}
	if r, ok := v.(rune); ok && isChar(t) {
		return string(r), nil
	}
	if l, ok := v.(typesys.ListValue); ok {
		return elements(reflect.ValueOf([]any(l)), typesys.Object)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		if rv.IsNil() {
			return nil, nil
		}
		elem := typesys.Object
		if t.Elem != nil {
			elem = *t.Elem
		}
		return elements(rv, elem)
	}
	return v, nil
}

func elements(rv reflect.Value, elem typesys.Type) ([]any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		jv, err := jsonValue(rv.Index(i).Interface(), elem)
		if err != nil {
			return nil, err
		}
		out[i] = jv
	}
	return out, nil
}

func isChar(t typesys.Type) bool {
	return t.Equal(typesys.Char) || t.Equal(typesys.CharWrapper)
}

func goTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
