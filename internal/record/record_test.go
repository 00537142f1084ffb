package record

import (
	"bytes"
	"context"
	"math"
	"testing"

	"arena/internal/execute"
	"arena/internal/sequence"
	"arena/internal/statement"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	cases := []struct {
		v    any
		t    typesys.Type
		want string
	}{
		{nil, typesys.String, "null"},
		{'x', typesys.Char, `"x"`},
		{int32(120), typesys.Int, "120"},
		{[]rune("hi"), typesys.ArrayOf(typesys.Char), `["h","i"]`},
		{[]byte{1, 2}, typesys.ArrayOf(typesys.Byte), "[1,2]"},
		{typesys.ListValue{"a", int32(1)}, typesys.List, `["a",1]`},
		{[]any{nil, int32(2)}, typesys.ArrayOf(typesys.IntWrapper), "[null,2]"},
		{"s", typesys.String, `"s"`},
	}
	for _, tc := range cases {
		got, err := Render(tc.v, tc.t)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := Render(bytes.NewReader(nil), typesys.Stream)
	assert.Error(t, err)
	_, err = Render(math.NaN(), typesys.Double)
	assert.Error(t, err)
}

func literalRecord(t *testing.T, oracle *statement.Oracle) *SequenceExecutionRecord {
	t.Helper()
	a := &statement.Value{Pos: 0, Type: typesys.Int, Value: 1}
	b := &statement.Value{Pos: 1, Type: typesys.Double, Value: math.NaN()}
	c := &statement.Value{Pos: 2, Type: typesys.String, Value: "z"}
	spec := &statement.SequenceSpecification{Name: "lits", Statements: []statement.Statement{a, b, c}, Oracle: oracle}

	seq := sequence.New()
	calls := make(map[int]CallRecord)
	for _, st := range spec.Statements {
		v := st.(*statement.Value)
		var idx int
		seq, idx = seq.Extend(sequence.Op{Kind: sequence.OpLiteral, Type: v.Type, Value: mustCoerce(t, v.Value, v.Type)})
		calls[v.Pos] = CallRecord{Var: idx, Op: idx, Statement: v}
	}
	rec := New(spec, "Impl", "Impl#0", seq, calls)
	require.NoError(t, rec.Execute(context.Background(), execute.NewInProcess()))
	return rec
}

func mustCoerce(t *testing.T, v any, typ typesys.Type) any {
	c, err := typesys.Coerce(v, typ)
	require.NoError(t, err)
	return c
}

func TestCells_SkipsUnrenderable(t *testing.T) {
	rec := literalRecord(t, nil)
	cells := rec.Cells(SerializeOptions{ExecutionID: "run-1"})

	rows := map[int]string{}
	var seq, exseq int
	for _, c := range cells {
		assert.Equal(t, "run-1", c.ID.ExecutionID)
		assert.Equal(t, "Impl#0", c.ID.AdapterID)
		switch c.ID.Field {
		case FieldValue:
			rows[c.ID.Row] = c.Value.Value
		case FieldSeq:
			seq++
			assert.Equal(t, SequenceRow, c.ID.Row)
		case FieldExSeq:
			exseq++
		}
	}
	assert.Equal(t, map[int]string{0: "1", 2: `"z"`}, rows)
	assert.Equal(t, 1, seq)
	assert.Equal(t, 1, exseq)
}

func TestCells_Oracle(t *testing.T) {
	oracle := statement.NewOracle()
	oracle.Expect(0, &statement.Value{Type: typesys.Int, Value: 1})
	oracle.Expect(2, &statement.Value{Type: typesys.String, Value: "y"})
	rec := literalRecord(t, oracle)

	verdicts := map[int]string{}
	for _, c := range rec.Cells(SerializeOptions{}) {
		if c.ID.Oracle {
			verdicts[c.ID.Row] = c.Value.RawValue
		}
	}
	assert.Equal(t, Match, verdicts[0])
	assert.Equal(t, NA, verdicts[1])
	assert.Equal(t, Mismatch, verdicts[2])
}

func TestOutcome_Unknown(t *testing.T) {
	rec := literalRecord(t, nil)
	_, ok := rec.Outcome(42)
	assert.False(t, ok)
	assert.False(t, rec.Failed())
}
