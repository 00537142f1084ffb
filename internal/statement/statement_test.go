package statement

import (
	"testing"

	"arena/internal/signature"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
)

func TestInputs(t *testing.T) {
	ctor := &ConstructorCall{Pos: 0, Signature: signature.NewConstructor(typesys.Named("Stack")), ClassUnderTest: true}
	val := &Value{Pos: 1, Type: typesys.Int, Value: int32(4)}
	push := &MethodCall{Pos: 2, Signature: signature.New("push", typesys.Void, typesys.Int), ClassUnderTest: true, Receiver: ctor, Args: []Statement{val}}
	alias := &Value{Pos: 3, Type: typesys.Named("Stack"), AliasOf: ctor}

	assert.Empty(t, ctor.Inputs())
	assert.Equal(t, []Statement{ctor, val}, push.Inputs())
	assert.True(t, alias.IsAlias())
	assert.Equal(t, []Statement{ctor}, alias.Inputs())

	spec := &SequenceSpecification{Name: "s", Statements: []Statement{ctor, val, push, alias}}
	st, ok := spec.At(2)
	assert.True(t, ok)
	assert.Same(t, push, st)
}

func TestOracle(t *testing.T) {
	var none *Oracle
	_, ok := none.Lookup(0)
	assert.False(t, ok)

	o := NewOracle()
	o.Expect(2, &Value{Pos: 2, Type: typesys.Int, Value: int32(4)})
	v, ok := o.Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, int32(4), v.Value)
}
