package builder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"testing"

	"arena/internal/adapt"
	"arena/internal/convert"
	"arena/internal/execute"
	"arena/internal/member"
	"arena/internal/record"
	"arena/internal/sequence"
	"arena/internal/signature"
	"arena/internal/statement"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	charsT = typesys.ArrayOf(typesys.Char)
	intsT  = typesys.ArrayOf(typesys.Int)
	codecT = typesys.Named("Codec")
)

type codec struct{}

func stringCodec() *member.Class {
	t := typesys.Named("StringCodec")
	return member.NewClass(t).Add(
		member.NewConstructor(t, member.Public, nil, member.Wrap(func() *codec { return &codec{} })),
		member.NewMethod(t, "encode", member.Public, []typesys.Type{typesys.String}, typesys.String,
			member.WrapMethod(func(_ *codec, s string) string {
				return base64.StdEncoding.EncodeToString([]byte(s))
			})),
	)
}

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

func engine() *adapt.Engine {
	return adapt.NewDefaultEngine(convert.NewDefaultCatalogue(), adapt.DefaultMaxOverfit)
}

func run(t *testing.T, rec *record.SequenceExecutionRecord) {
	t.Helper()
	require.NoError(t, rec.Execute(context.Background(), execute.NewInProcess()))
}

func valueCells(cells []record.Cell) map[int]record.CellValue {
	out := make(map[int]record.CellValue)
	for _, c := range cells {
		if c.ID.Field == record.FieldValue && !c.ID.Oracle {
			out[c.ID.Row] = c.Value
		}
	}
	return out
}

func encodeSpec() *signature.InterfaceSpecification {
	return &signature.InterfaceSpecification{
		ClassName:    "Codec",
		Constructors: []signature.Signature{signature.NewConstructor(codecT)},
		Methods:      []signature.Signature{signature.New("encode", charsT, charsT)},
	}
}

func TestInstantiate_ConversionGlue(t *testing.T) {
	spec := encodeSpec()
	impl := engine().Adapt(spec, stringCodec())

	ctor := &statement.ConstructorCall{Pos: 0, Signature: spec.Constructors[0], ClassUnderTest: true}
	input := &statement.Value{Pos: 1, Type: charsT, Array: true, Value: []any{"a", "b"}}
	call := &statement.MethodCall{Pos: 2, Signature: spec.Methods[0], ClassUnderTest: true, Receiver: ctor, Args: []statement.Statement{input}}
	seqSpec := &statement.SequenceSpecification{Name: "encode", Statements: []statement.Statement{ctor, input, call}}

	rec, err := New().Instantiate(seqSpec, impl)
	require.NoError(t, err)
	assert.True(t, rec.Sequence.NoInline())

	kinds := make([]sequence.OpKind, rec.Sequence.Len())
	for i, op := range rec.Sequence.Ops() {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []sequence.OpKind{
		sequence.OpConstruct,
		sequence.OpLiteral, sequence.OpLiteral, sequence.OpNewArray,
		sequence.OpConverterNew, sequence.OpConverterInvoke, sequence.OpCast,
		sequence.OpCall,
		sequence.OpConverterNew, sequence.OpConverterInvoke, sequence.OpCast,
	}, kinds)

	run(t, rec)
	out, ok := rec.Outcome(2)
	require.True(t, ok)
	assert.Equal(t, execute.Normal, out.Kind)
	assert.Equal(t, []rune("YWI="), out.Value)

	cells := rec.Cells(record.SerializeOptions{ExecutionID: "e1", SerializeInputs: true, SerializeOperations: true})
	values := valueCells(cells)
	require.Len(t, values, 3)
	assert.Equal(t, record.Instance, values[0].Value)
	assert.Equal(t, `["a","b"]`, values[1].Value)
	assert.Equal(t, `["Y","W","I","="]`, values[2].Value)
	assert.Equal(t, "char[]", values[2].ValueType)

	for _, c := range cells {
		if c.ID.Field == record.FieldOp && c.ID.Row == 2 {
			assert.Equal(t, record.ColumnOp, c.ID.Column)
			assert.Equal(t, "StringCodec", c.Value.ValueType)
			assert.Equal(t, "encode(char[]):char[]", c.Value.RawValue)
			assert.Equal(t, "StringCodec.encode(String):String", c.Value.Value)
		}
	}
}

func TestInstantiate_MutableValueRelay(t *testing.T) {
	sig := signature.New("reverse", typesys.Void, intsT)
	sig.Static = true
	spec := &signature.InterfaceSpecification{ClassName: "Reverser", Methods: []signature.Signature{sig}}
	impl := engine().Adapt(spec, reverser())

	arr := &statement.Value{Pos: 0, Type: intsT, Array: true, Value: []any{1, 2, 3}}
	call := &statement.MethodCall{Pos: 1, Signature: sig, ClassUnderTest: true, Args: []statement.Statement{arr}}
	alias := &statement.Value{Pos: 2, Type: intsT, AliasOf: arr}
	seqSpec := &statement.SequenceSpecification{Name: "reverse", Statements: []statement.Statement{arr, call, alias}}

	rec, err := New().Instantiate(seqSpec, impl)
	require.NoError(t, err)
	run(t, rec)

	values := valueCells(rec.Cells(record.SerializeOptions{}))
	assert.Equal(t, "null", values[1].Value)
	assert.Equal(t, "[3,2,1]", values[2].Value)
	assert.Equal(t, "[3,2,1]", values[0].Value)
}

func TestInstantiate_SynthesizesReceiver(t *testing.T) {
	spec := &signature.InterfaceSpecification{
		ClassName: "Codec",
		Methods:   []signature.Signature{signature.New("encode", typesys.String, typesys.String)},
	}
	impl := engine().Adapt(spec, stringCodec())

	in := &statement.Value{Pos: 0, Type: typesys.String, Value: "ab"}
	call := &statement.MethodCall{Pos: 1, Signature: spec.Methods[0], ClassUnderTest: true, Args: []statement.Statement{in}}
	again := &statement.MethodCall{Pos: 2, Signature: spec.Methods[0], ClassUnderTest: true, Args: []statement.Statement{in}}
	seqSpec := &statement.SequenceSpecification{Name: "encode", Statements: []statement.Statement{in, call, again}}

	rec, err := New().Instantiate(seqSpec, impl)
	require.NoError(t, err)

	constructs := 0
	for _, op := range rec.Sequence.Ops() {
		if op.Kind == sequence.OpConstruct {
			constructs++
		}
	}
	assert.Equal(t, 1, constructs)

	run(t, rec)
	out, _ := rec.Outcome(2)
	assert.Equal(t, "YWI=", out.Value)
}

func TestInstantiate_StaticContractOnInstanceMember(t *testing.T) {
	sig := signature.New("encode", typesys.String, typesys.String)
	sig.Static = true
	spec := &signature.InterfaceSpecification{ClassName: "Codec", Methods: []signature.Signature{sig}}
	impl := engine().Adapt(spec, stringCodec())
	require.True(t, impl.StaticMismatch(0))

	var logs bytes.Buffer
	b := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	in := &statement.Value{Pos: 0, Type: typesys.String, Value: "ab"}
	call := &statement.MethodCall{Pos: 1, Signature: sig, ClassUnderTest: true, Args: []statement.Statement{in}}
	rec, err := b.Instantiate(&statement.SequenceSpecification{Name: "static", Statements: []statement.Statement{in, call}}, impl)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "static contract bound to instance member")

	last := rec.Sequence.At(rec.Sequence.Len() - 1)
	assert.True(t, last.Receiver)

	run(t, rec)
	out, _ := rec.Outcome(1)
	assert.Equal(t, "YWI=", out.Value)
}

func TestInstantiate_PlaceholderInitializer(t *testing.T) {
	sig := signature.New("reverse", intsT, intsT)
	sig.Static = true
	spec := &signature.InterfaceSpecification{
		ClassName:    "Reverser",
		Constructors: []signature.Signature{signature.NewConstructor(typesys.Named("Reverser"))},
		Methods:      []signature.Signature{sig},
	}
	impl := engine().Adapt(spec, reverser())

	ctor := &statement.ConstructorCall{Pos: 0, Signature: spec.Constructors[0], ClassUnderTest: true}
	seqSpec := &statement.SequenceSpecification{Name: "init", Statements: []statement.Statement{ctor}}

	rec, err := New().Instantiate(seqSpec, impl)
	require.NoError(t, err)
	require.Equal(t, 1, rec.Sequence.Len())
	assert.Equal(t, sequence.OpNoOp, rec.Sequence.At(0).Kind)

	run(t, rec)
	assert.True(t, rec.Executed.IsNormalExecution())
}

func TestInstantiate_TruncatesAfterException(t *testing.T) {
	owner := typesys.Named("Failing")
	class := member.NewClass(owner).Add(
		member.NewStaticMethod(owner, "fail", member.Public, []typesys.Type{typesys.Int}, typesys.Int,
			member.Wrap(func(n int32) (int32, error) {
				return 0, member.NewFault("IllegalArgumentException", "bad")
			})),
	)
	sig := signature.New("fail", typesys.Int, typesys.Int)
	sig.Static = true
	spec := &signature.InterfaceSpecification{ClassName: "Failing", Methods: []signature.Signature{sig}}
	impl := engine().Adapt(spec, class)

	in := &statement.Value{Pos: 0, Type: typesys.Int, Value: 1}
	call := &statement.MethodCall{Pos: 1, Signature: sig, ClassUnderTest: true, Args: []statement.Statement{in}}
	after := &statement.Value{Pos: 2, Type: typesys.Int, Value: 2}
	more := &statement.Value{Pos: 3, Type: typesys.String, Value: "x"}
	seqSpec := &statement.SequenceSpecification{Name: "fail", Statements: []statement.Statement{in, call, after, more}}

	rec, err := New().Instantiate(seqSpec, impl)
	require.NoError(t, err)
	require.Equal(t, 4, rec.Sequence.Len())
	run(t, rec)

	assert.Equal(t, 2, rec.Sequence.Len())
	assert.True(t, rec.Failed())

	values := valueCells(rec.Cells(record.SerializeOptions{}))
	assert.Equal(t, record.Exception, values[1].Value)
	assert.Equal(t, "IllegalArgumentException", values[1].RawValue)
	assert.Equal(t, record.NotExecuted, values[2].Value)
	assert.Equal(t, record.NotExecuted, values[3].Value)
}

func TestInstantiate_Errors(t *testing.T) {
	spec := encodeSpec()
	impl := engine().Adapt(spec, stringCodec())

	unknown := &statement.MethodCall{Pos: 0, Signature: signature.New("decode", typesys.String), ClassUnderTest: true}
	_, err := New().Instantiate(&statement.SequenceSpecification{Name: "x", Statements: []statement.Statement{unknown}}, impl)
	assert.True(t, errors.Is(err, ErrUnresolvedSignature))

	orphan := &statement.Value{Pos: 0, Type: typesys.Int, Value: 1}
	alias := &statement.Value{Pos: 1, Type: typesys.Int, AliasOf: orphan}
	_, err = New().Instantiate(&statement.SequenceSpecification{Name: "y", Statements: []statement.Statement{alias}}, impl)
	assert.True(t, errors.Is(err, ErrUnbuiltInput))

	hidden := member.NewClass(typesys.Named("Hidden")).Add(
		member.NewStaticMethod(typesys.Named("Hidden"), "encode", 0, []typesys.Type{charsT}, charsT,
			member.Wrap(func(c []rune) []rune { return c })),
	)
	himpl := engine().Adapt(spec, hidden)
	in := &statement.Value{Pos: 0, Type: charsT, Array: true, Value: []any{"a"}}
	call := &statement.MethodCall{Pos: 1, Signature: spec.Methods[0], ClassUnderTest: true, Args: []statement.Statement{in}}
	_, err = New().Instantiate(&statement.SequenceSpecification{Name: "z", Statements: []statement.Statement{in, call}}, himpl)
	assert.True(t, errors.Is(err, adapt.ErrInaccessible))
}
