package member

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap adapts a typed Go function into a constructor or static method body.
// fn may return nothing, a value, an error, or a value and an error.
func Wrap(fn any) func(args []any) (any, error) {
	fv := mustFunc(fn)
	return func(args []any) (any, error) {
		return call(fv, args)
	}
}

// WrapMethod adapts a typed Go function whose first parameter is the receiver.
func WrapMethod(fn any) func(receiver any, args []any) (any, error) {
	fv := mustFunc(fn)
	if fv.Type().NumIn() == 0 {
		panic("member: method body needs a receiver parameter")
	}
	return func(receiver any, args []any) (any, error) {
		in := make([]any, 0, len(args)+1)
		in = append(in, receiver)
		in = append(in, args...)
		return call(fv, in)
	}
}

func mustFunc(fn any) reflect.Value {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		panic(fmt.Sprintf("member: %T is not a function", fn))
	}
	return fv
}

func call(fv reflect.Value, args []any) (any, error) {
	ft := fv.Type()
	if len(args) != ft.NumIn() {
		return nil, NewFault("IllegalArgumentException", fmt.Sprintf("wrong number of arguments: want %d, got %d", ft.NumIn(), len(args)))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := ft.In(i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(a)
		switch {
		case v.Type().AssignableTo(pt):
			in[i] = v
		case numeric(v.Kind()) && numeric(pt.Kind()):
			in[i] = v.Convert(pt)
		default:
			return nil, NewFault("IllegalArgumentException", fmt.Sprintf("argument %d: cannot use %s as %s", i, v.Type(), pt))
		}
	}

	out := fv.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if ft.Out(len(out)-1) == errorType {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
	}
	return out[0].Interface(), nil
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
