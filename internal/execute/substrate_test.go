package execute

import (
	"context"
	"errors"
	"testing"

	"arena/internal/adapt"
	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/sequence"
	"arena/internal/signature"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intsT = typesys.ArrayOf(typesys.Int)

func reverser() *member.Class {
	t := typesys.Named("Reverser")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "reverse", member.Public, []typesys.Type{intsT}, intsT,
			member.Wrap(func(a []int32) []int32 {
				out := make([]int32, len(a))
				for i, v := range a {
					out[len(a)-1-i] = v
				}
				return out
			})),
	)
}

func TestInProcess_StopsAtFirstException(t *testing.T) {
	owner := typesys.Named("Boom")
	boom := member.NewStaticMethod(owner, "boom", member.Public, nil, typesys.Int,
		member.Wrap(func() (int32, error) { return 0, member.NewFault("IllegalStateException", "no") }))

	s := sequence.New()
	s, _ = s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(1)})
	s, _ = s.Extend(sequence.Op{Kind: sequence.OpCall, Type: typesys.Int, Member: boom})
	s, _ = s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(2)})
	s, _ = s.Extend(sequence.Op{Kind: sequence.OpNull, Type: typesys.String})

	ex, err := NewInProcess().Execute(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, Normal, ex.Outcome(0).Kind)
	assert.Equal(t, Exceptional, ex.Outcome(1).Kind)
	assert.Equal(t, NotExecuted, ex.Outcome(2).Kind)
	assert.Equal(t, NotExecuted, ex.Outcome(3).Kind)
	assert.Equal(t, 1, ex.ExceptionIndex())
	assert.True(t, ex.HasNonExecuted())
	assert.False(t, ex.IsNormalExecution())
	assert.False(t, ex.HasFailure())
	assert.Contains(t, ex.String(), "throws IllegalStateException")
	assert.Contains(t, ex.String(), "// not executed")

	short := ex.Truncate(2)
	assert.Equal(t, 2, short.Len())
	assert.Equal(t, 2, short.Sequence.Len())
	assert.False(t, short.HasNonExecuted())
}

func TestInProcess_ArraysAndSet(t *testing.T) {
	s := sequence.New()
	s, a := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(1)})
	s, b := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(2)})
	s, arr := s.Extend(sequence.Op{Kind: sequence.OpNewArray, Type: intsT, Inputs: []int{a, b}})
	s, idx := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(1)})
	s, v := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(7)})
	s, _ = s.Extend(sequence.Op{Kind: sequence.OpArraySet, Type: typesys.Void, Inputs: []int{arr, idx, v}})
	s, oob := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(5)})
	s, _ = s.Extend(sequence.Op{Kind: sequence.OpArraySet, Type: typesys.Void, Inputs: []int{arr, oob, v}})

	ex, err := NewInProcess().Execute(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 7}, ex.Value(arr))
	last := ex.Outcome(s.Len() - 1)
	require.Equal(t, Exceptional, last.Kind)
	assert.Equal(t, "ArrayIndexOutOfBoundsException", member.ExceptionType(last.Err))
}

func TestInProcess_ConverterGlue(t *testing.T) {
	cat := convert.NewDefaultCatalogue()
	charsT := typesys.ArrayOf(typesys.Char)
	conv, ok := cat.Lookup(charsT, typesys.String)
	require.True(t, ok)

	s := sequence.New()
	s, c := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: charsT, Value: []rune("ab")})
	s, k := s.Extend(sequence.Op{Kind: sequence.OpConverterNew, Converter: conv})
	s, out := s.Extend(sequence.Op{Kind: sequence.OpConverterInvoke, Type: typesys.Object, From: charsT, To: typesys.String, Inputs: []int{k, c}})
	s, cast := s.Extend(sequence.Op{Kind: sequence.OpCast, Type: typesys.String, Inputs: []int{out}})

	ex, err := NewInProcess().Execute(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, ex.IsNormalExecution())
	assert.Equal(t, "ab", ex.Value(cast))
}

func TestInProcess_MutableValueWritesBack(t *testing.T) {
	class := reverser()
	sig := signature.New("reverse", typesys.Void, intsT)
	sig.Static = true
	engine := adapt.NewDefaultEngine(convert.NewDefaultCatalogue(), adapt.DefaultMaxOverfit)
	cands, _ := engine.Match(class, sig, class.Methods)

	var mutval *adapt.Candidate
	for _, c := range cands {
		if c.StrategyName() == "mutability_value" {
			mutval = c
		}
	}
	require.NotNil(t, mutval)

	s := sequence.New()
	s, arr := s.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: intsT, Value: []int32{1, 2, 3}})
	s, call := s.Extend(sequence.Op{Kind: sequence.OpAdaptedCall, Type: typesys.Void, Member: mutval.Member, Candidate: mutval, Inputs: []int{arr}})

	ex, err := NewInProcess().Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, ex.Value(call))
	assert.Equal(t, []int32{3, 2, 1}, ex.Value(arr))
}

func TestInProcess_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := sequence.New().Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(1)})
	ex, err := NewInProcess().Execute(ctx, s)
	require.NoError(t, err)
	assert.True(t, ex.HasFailure())
	assert.True(t, ex.HasNonExecuted())
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
}
