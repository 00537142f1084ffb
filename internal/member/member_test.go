package member

import (
	"errors"
	"strings"
	"testing"

	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int32 }

func TestWrap_Conversions(t *testing.T) {
	owner := typesys.Named("Math")
	add := NewStaticMethod(owner, "add", Public, []typesys.Type{typesys.Long, typesys.Long}, typesys.Long,
		Wrap(func(a, b int64) int64 { return a + b }))

	got, err := add.Invoke(nil, []any{int32(2), int64(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	_, err = add.Invoke(nil, []any{"x", int64(1)})
	require.Error(t, err)
	assert.Equal(t, "IllegalArgumentException", ExceptionType(err))

	_, err = add.Invoke(nil, []any{int64(1)})
	assert.Error(t, err)
}

func TestWrapMethod_Receiver(t *testing.T) {
	owner := typesys.Named("Counter")
	inc := NewMethod(owner, "inc", Public, []typesys.Type{typesys.Int}, typesys.Int,
		WrapMethod(func(c *counter, by int32) int32 { c.n += by; return c.n }))

	c := &counter{}
	got, err := inc.Invoke(c, []any{int32(4)})
	require.NoError(t, err)
	assert.Equal(t, int32(4), got)

	_, err = inc.Invoke(nil, []any{int32(1)})
	require.Error(t, err)
	assert.Equal(t, "NullPointerException", ExceptionType(err))
}

func TestInvoke_RecoversPanics(t *testing.T) {
	owner := typesys.Named("Boom")
	m := NewStaticMethod(owner, "boom", Public, nil, typesys.Void, Wrap(func() { panic("kaboom") }))

	_, err := m.Invoke(nil, nil)
	var p *PanicError
	require.True(t, errors.As(err, &p))
	assert.Equal(t, "kaboom", p.Value)
	assert.Equal(t, "panic", ExceptionType(err))
}

func TestWrap_ErrorResult(t *testing.T) {
	owner := typesys.Named("Parser")
	m := NewStaticMethod(owner, "parse", Public, []typesys.Type{typesys.String}, typesys.Int,
		Wrap(func(s string) (int32, error) {
			if s == "" {
				return 0, NewFault("NumberFormatException", "empty")
			}
			return int32(len(s)), nil
		}))

	v, err := m.Invoke(nil, []any{"abc"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)

	_, err = m.Invoke(nil, []any{""})
	assert.Equal(t, "NumberFormatException", ExceptionType(err))
}

func TestClass_AddAndDescribe(t *testing.T) {
	owner := typesys.Named("Codec")
	c := NewClass(owner).Add(
		NewConstructor(owner, Public, nil, Wrap(func() *counter { return &counter{} })),
		NewStaticMethod(owner, "encode", Public, []typesys.Type{typesys.String}, typesys.String, Wrap(strings.ToUpper)),
		NewField(owner, "WIDTH", Public|Final, typesys.Int, int32(8)),
	)

	require.Len(t, c.Constructors, 1)
	require.Len(t, c.Methods, 1)
	require.Len(t, c.Fields, 1)

	assert.Equal(t, "Codec()", Describe(c.Constructors[0]))
	assert.Equal(t, "Codec.encode(String):String", Describe(c.Methods[0]))
	assert.True(t, IsStatic(c.Methods[0]))
	assert.True(t, c.Fields[0].Modifiers().Has(Public|Static|Final))

	_, ok := c.DefaultConstructor()
	assert.True(t, ok)

	f, ok := c.Field("WIDTH")
	require.True(t, ok)
	v, err := f.Invoke(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(8), v)
}

func TestNoOp(t *testing.T) {
	v, err := NoOp().Invoke(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, NoOpInstance{}, v)
	assert.True(t, IsNoOp(NoOp()))
}
