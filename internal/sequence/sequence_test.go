package sequence

import (
	"testing"

	"arena/internal/adapt"
	"arena/internal/member"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(v any, t typesys.Type) Op {
	return Op{Kind: OpLiteral, Type: t, Value: v}
}

func TestExtend_ViewsAreIsolated(t *testing.T) {
	base := New()
	one, i0 := base.Extend(lit(int32(1), typesys.Int))
	two, i1 := one.Extend(lit(int32(2), typesys.Int))

	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 0, base.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())
	assert.Greater(t, two.Generation(), one.Generation())

	// extending an older view forks instead of overwriting two's op
	other, idx := one.Extend(lit("x", typesys.String))
	assert.Equal(t, 1, idx)
	assert.Equal(t, int32(2), two.At(1).Value)
	assert.Equal(t, "x", other.At(1).Value)
}

func TestTruncate(t *testing.T) {
	s := New()
	for i := 0; i < 4; i++ {
		s, _ = s.Extend(lit(int32(i), typesys.Int))
	}
	short := s.Truncate(2)
	assert.Equal(t, 2, short.Len())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 4, s.Truncate(10).Len())

	grown, _ := short.Extend(lit(int32(9), typesys.Int))
	assert.Equal(t, int32(9), grown.At(2).Value)
	assert.Equal(t, int32(2), s.At(2).Value)
}

func TestDoNotInline(t *testing.T) {
	s := New().DoNotInline()
	s, _ = s.Extend(lit(int32(1), typesys.Int))
	assert.True(t, s.NoInline())
	assert.False(t, New().NoInline())
}

func TestString(t *testing.T) {
	owner := typesys.Named("Padder")
	pad := member.NewStaticMethod(owner, "pad", member.Public, []typesys.Type{typesys.String, typesys.Int}, typesys.String,
		member.Wrap(func(s string, w int32) string { return s }))

	s := New()
	s, a := s.Extend(lit("ab", typesys.String))
	s, b := s.Extend(lit(int32(4), typesys.Int))
	s, c := s.Extend(lit('z', typesys.Char))
	s, _ = s.Extend(Op{Kind: OpCall, Type: typesys.String, Member: pad, Inputs: []int{a, b}})
	s, _ = s.Extend(Op{Kind: OpNewArray, Type: typesys.ArrayOf(typesys.Char), Inputs: []int{c}})

	want := "v0 := \"ab\"\n" +
		"v1 := int(4)\n" +
		"v2 := 'z'\n" +
		"v3 := Padder.pad(v0, v1)\n" +
		"v4 := char[]{v2}\n"
	assert.Equal(t, want, s.String())
}

func TestString_DefaultArguments(t *testing.T) {
	owner := typesys.Named("Padder")
	pad := member.NewStaticMethod(owner, "pad", member.Public, []typesys.Type{typesys.String, typesys.Int}, typesys.String,
		member.Wrap(func(s string, w int32) string { return s }))
	class := member.NewClass(owner).Add(pad, member.NewField(owner, "WIDTH", member.Public|member.Final, typesys.Int, int32(8)))

	cands := adapt.NewDefaults(2).Match(class, typesys.String, []typesys.Type{typesys.String}, pad, []int{0})
	require.Len(t, cands, 1)

	s := New()
	s, a := s.Extend(lit("a", typesys.String))
	s, _ = s.Extend(Op{Kind: OpAdaptedCall, Type: typesys.String, Member: pad, Candidate: cands[0], Inputs: []int{a}})

	assert.Equal(t, "v0 := \"a\"\nv1 := Padder.pad(v0, Padder.WIDTH) /* defaults */\n", s.String())
}

func TestOp_Args(t *testing.T) {
	op := Op{Kind: OpCall, Receiver: true, Inputs: []int{3, 1, 2}}
	require.Len(t, op.Args(), 2)
	assert.Equal(t, []int{1, 2}, op.Args())
	assert.True(t, op.IsCall())
	assert.False(t, Op{Kind: OpLiteral}.IsCall())
}
