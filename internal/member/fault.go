package member

import (
	"errors"
	"fmt"
)

// Fault is an exception raised by a candidate member.
type Fault struct {
	Type string
	Msg  string
}

func NewFault(typ, msg string) *Fault { return &Fault{Type: typ, Msg: msg} }

func (f *Fault) Error() string {
	if f.Msg == "" {
		return f.Type
	}
	return f.Type + ": " + f.Msg
}

// PanicError carries a recovered panic.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

// ExceptionType names the kind of err for result cells.
func ExceptionType(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Type
	}
	var p *PanicError
	if errors.As(err, &p) {
		if e, ok := p.Value.(error); ok {
			return fmt.Sprintf("panic(%T)", e)
		}
		return "panic"
	}
	return fmt.Sprintf("%T", err)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r}
	}
}
