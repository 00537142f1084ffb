package statement

import (
	"arena/internal/member"
	"arena/internal/signature"
	"arena/internal/typesys"
)

// Statement is one node of an abstract sequence. The variants are Value,
// ConstructorCall, MethodCall and ArraySet.
type Statement interface {
	Position() int
	// Inputs lists the statements consumed, in argument order.
	Inputs() []Statement
	statement()
}

// Value produces a literal, a null, an array or an alias of another statement.
type Value struct {
	Pos   int
	Type  typesys.Type
	Value any // scalar, or []any of element values for arrays
	Null  bool
	Array bool
	// AliasOf names the statement whose variable this value reuses.
	AliasOf Statement
	// Code is the source text of the value when it was given as an expression.
	Code string
}

func (v *Value) Position() int { return v.Pos }

func (v *Value) Inputs() []Statement {
	if v.AliasOf != nil {
		return []Statement{v.AliasOf}
	}
	return nil
}

func (v *Value) IsAlias() bool { return v.AliasOf != nil }

func (*Value) statement() {}

// ConstructorCall creates an instance through a required constructor.
type ConstructorCall struct {
	Pos       int
	Signature signature.Signature
	// ClassUnderTest marks calls resolved through the adapted implementation.
	ClassUnderTest bool
	// Member is the resolved member of calls outside the class under test.
	Member member.Member
	Args   []Statement
}

func (c *ConstructorCall) Position() int       { return c.Pos }
func (c *ConstructorCall) Inputs() []Statement { return c.Args }
func (*ConstructorCall) statement()            {}

// MethodCall invokes a required method. Receiver is nil for static calls.
type MethodCall struct {
	Pos            int
	Signature      signature.Signature
	ClassUnderTest bool
	Member         member.Member
	Receiver       Statement
	Args           []Statement
}

func (c *MethodCall) Position() int { return c.Pos }

func (c *MethodCall) Inputs() []Statement {
	if c.Receiver == nil {
		return c.Args
	}
	return append([]Statement{c.Receiver}, c.Args...)
}

func (*MethodCall) statement() {}

// ArraySet assigns Value to Array[Index].
type ArraySet struct {
	Pos   int
	Array Statement
	Index int
	Value Statement
}

func (a *ArraySet) Position() int       { return a.Pos }
func (a *ArraySet) Inputs() []Statement { return []Statement{a.Array, a.Value} }
func (*ArraySet) statement()            {}

// Oracle holds expected values per statement position.
type Oracle struct {
	Expected map[int]*Value
}

func NewOracle() *Oracle { return &Oracle{Expected: make(map[int]*Value)} }

func (o *Oracle) Expect(pos int, v *Value) { o.Expected[pos] = v }

func (o *Oracle) Lookup(pos int) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.Expected[pos]
	return v, ok
}

// SequenceSpecification is an abstract statement sequence in program order.
type SequenceSpecification struct {
	Name       string
	Statements []Statement
	Oracle     *Oracle
}

// At returns the statement at pos.
func (s *SequenceSpecification) At(pos int) (Statement, bool) {
	for _, st := range s.Statements {
		if st.Position() == pos {
			return st, true
		}
	}
	return nil, false
}
