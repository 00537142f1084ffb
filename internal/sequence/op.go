package sequence

import (
	"fmt"
	"strings"

	"arena/internal/adapt"
	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/typesys"
)

// OpKind enumerates the concrete operations of a sequence.
type OpKind int

const (
	OpLiteral OpKind = iota
	OpNull
	OpConstruct
	OpCall
	OpAdaptedCall
	OpNewArray
	OpArraySet
	OpConverterNew
	OpConverterInvoke
	OpCast
	OpNoOp
)

var opNames = map[OpKind]string{
	OpLiteral:         "literal",
	OpNull:            "null",
	OpConstruct:       "construct",
	OpCall:            "call",
	OpAdaptedCall:     "adapted_call",
	OpNewArray:        "new_array",
	OpArraySet:        "array_set",
	OpConverterNew:    "converter_new",
	OpConverterInvoke: "converter_invoke",
	OpCast:            "cast",
	OpNoOp:            "noop",
}

func (k OpKind) String() string { return opNames[k] }

// Op is one resolved operation. Its result is the variable with the same
// index as the op.
type Op struct {
	Kind OpKind
	// Type is the static type of the produced variable.
	Type  typesys.Type
	Value any
	Code  string

	Member    member.Member
	Candidate *adapt.Candidate
	// Receiver marks Inputs[0] as the call receiver.
	Receiver bool

	Converter convert.Converter
	From, To  typesys.Type

	Inputs []int
}

// IsCall reports whether the op invokes a member.
func (o Op) IsCall() bool {
	switch o.Kind {
	case OpConstruct, OpCall, OpAdaptedCall, OpNoOp:
		return true
	}
	return false
}

// Args returns the inputs passed as arguments, excluding the receiver.
func (o Op) Args() []int {
	if o.Receiver && len(o.Inputs) > 0 {
		return o.Inputs[1:]
	}
	return o.Inputs
}

// Render writes the op as a single line of code assigning variable idx.
func (o Op) Render(idx int) string {
	return fmt.Sprintf("v%d := %s", idx, o.expr())
}

func (o Op) expr() string {
	switch o.Kind {
	case OpLiteral:
		if o.Code != "" {
			return o.Code
		}
		return literal(o.Value, o.Type)
	case OpNull:
		return "nil"
	case OpConstruct:
		return fmt.Sprintf("%s.new(%s)", o.Member.Owner().Name, vars(o.Inputs))
	case OpCall, OpAdaptedCall:
		call := o.callExpr()
		if o.Kind == OpAdaptedCall && o.Candidate != nil {
			call += " /* " + o.Candidate.StrategyName() + " */"
		}
		return call
	case OpNewArray:
		return fmt.Sprintf("%s{%s}", o.Type.Name, vars(o.Inputs))
	case OpArraySet:
		return fmt.Sprintf("set(v%d, v%d, v%d)", o.Inputs[0], o.Inputs[1], o.Inputs[2])
	case OpConverterNew:
		return fmt.Sprintf("converter(%q)", o.Converter.Name())
	case OpConverterInvoke:
		return fmt.Sprintf("v%d.Convert(v%d, %s)", o.Inputs[0], o.Inputs[1], o.To.Name)
	case OpCast:
		return fmt.Sprintf("(%s)(v%d)", o.Type.Name, o.Inputs[0])
	case OpNoOp:
		return "NoOp.new()"
	}
	return "?"
}

func (o Op) callExpr() string {
	m := o.Member
	if m.Kind() == member.KindField {
		return fmt.Sprintf("%s.%s", m.Owner().Name, m.Name())
	}
	args := o.callArgs()
	if m.Kind() == member.KindConstructor {
		return fmt.Sprintf("%s.new(%s)", m.Owner().Name, args)
	}
	if o.Receiver {
		return fmt.Sprintf("v%d.%s(%s)", o.Inputs[0], m.Name(), args)
	}
	return fmt.Sprintf("%s.%s(%s)", m.Owner().Name, m.Name(), args)
}

// callArgs lists the argument variables followed by any default fields the
// candidate supplies for trailing parameters.
func (o Op) callArgs() string {
	args := vars(o.Args())
	if o.Candidate == nil {
		return args
	}
	for _, f := range o.Candidate.OverfitFields() {
		if args != "" {
			args += ", "
		}
		args += f.Owner().Name + "." + f.Name()
	}
	return args
}

func vars(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return strings.Join(parts, ", ")
}

func literal(v any, t typesys.Type) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", x)
	case rune:
		if t.Equal(typesys.Char) || t.Equal(typesys.CharWrapper) {
			return fmt.Sprintf("%q", x)
		}
	}
	return fmt.Sprintf("%s(%v)", typesys.Unbox(t).Name, v)
}
