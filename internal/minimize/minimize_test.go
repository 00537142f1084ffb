package minimize

import (
	"context"
	"testing"

	"arena/internal/execute"
	"arena/internal/member"
	"arena/internal/record"
	"arena/internal/sequence"
	"arena/internal/statement"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literals(t *testing.T, name string, values ...int32) *record.SequenceExecutionRecord {
	t.Helper()
	spec := &statement.SequenceSpecification{Name: name}
	seq := sequence.New().DoNotInline()
	calls := map[int]record.CallRecord{}
	for i, v := range values {
		st := &statement.Value{Pos: i, Type: typesys.Int, Value: v}
		spec.Statements = append(spec.Statements, st)
		var idx int
		seq, idx = seq.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: v})
		calls[i] = record.CallRecord{Var: idx, Op: idx, Statement: st}
	}
	rec := record.New(spec, "Impl", "Impl#0", seq, calls)
	require.NoError(t, rec.Execute(context.Background(), execute.NewInProcess()))
	return rec
}

func failing(t *testing.T) *record.SequenceExecutionRecord {
	t.Helper()
	owner := typesys.Named("Boom")
	boom := member.NewStaticMethod(owner, "boom", member.Public, nil, typesys.Int,
		member.Wrap(func() (int32, error) { return 0, member.NewFault("IllegalStateException", "") }))

	call := &statement.MethodCall{Pos: 0, Member: boom}
	next := &statement.Value{Pos: 1, Type: typesys.Int, Value: 1}
	spec := &statement.SequenceSpecification{Name: "boom", Statements: []statement.Statement{call, next}}

	seq, a := sequence.New().Extend(sequence.Op{Kind: sequence.OpCall, Type: typesys.Int, Member: boom})
	seq, b := seq.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(1)})
	rec := record.New(spec, "Impl", "Impl#0", seq, map[int]record.CallRecord{
		0: {Var: a, Op: a, Statement: call},
		1: {Var: b, Op: b, Statement: next},
	})
	require.NoError(t, rec.Execute(context.Background(), execute.NewInProcess()))
	return rec
}

func TestMinimize_Dedup(t *testing.T) {
	recs := []*record.SequenceExecutionRecord{
		literals(t, "a", 1, 2),
		literals(t, "b", 1, 2),
		literals(t, "c", 2, 1),
	}
	out := Minimize(recs, Policy{MinimizeSequences: true})
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Spec.Name)
	assert.Equal(t, "c", out[1].Spec.Name)

	assert.Len(t, Minimize(recs, Policy{}), 3)
}

func TestMinimize_DropFailed(t *testing.T) {
	bad := failing(t)
	assert.Equal(t, 1, bad.Sequence.Len())
	assert.True(t, bad.Failed())

	recs := []*record.SequenceExecutionRecord{literals(t, "ok", 1), bad}
	assert.Len(t, Minimize(recs, Policy{DropFailedSequences: true}), 1)
	assert.Len(t, Minimize(recs, Policy{}), 2)
}
