package record

import (
	"log/slog"
	"time"

	"arena/internal/execute"
	"arena/internal/member"
	"arena/internal/statement"
	"arena/internal/typesys"
)

// Sentinel cell values.
const (
	Instance    = "_INSTANCE_"
	Exception   = "_EXCEPTION_"
	NotExecuted = "_NOT_EXECUTED_"
	NA          = "_NA_"
)

type Field string

const (
	FieldValue      Field = "value"
	FieldOp         Field = "op"
	FieldInputValue Field = "input_value"
	FieldSeq        Field = "seq"
	FieldExSeq      Field = "exseq"
)

// Columns of a cell row.
const (
	ColumnValue      = 0
	ColumnOp         = 1
	ColumnFirstInput = 2
)

// SequenceRow holds the sequence-level cells.
const SequenceRow = -1

// Oracle verdicts stored as the raw value of oracle cells.
const (
	Match    = "match"
	Mismatch = "mismatch"
)

// CellId addresses one cell of an execution's table.
type CellId struct {
	ExecutionID    string
	Implementation string
	AdapterID      string
	Sequence       string
	Column         int
	Row            int
	Field          Field
	Oracle         bool
}

type CellValue struct {
	ValueType     string
	RawValue      string
	Value         string
	ExecutionTime time.Duration
}

type Cell struct {
	ID    CellId
	Value CellValue
}

type SerializeOptions struct {
	ExecutionID         string
	SerializeInputs     bool
	SerializeOperations bool
	Logger              *slog.Logger
}

// Cells serializes the record into its cell table. Cells whose value cannot
// be rendered are logged and left out.
func (r *SequenceExecutionRecord) Cells(opts SerializeOptions) []Cell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := func(col, row int, f Field, oracle bool) CellId {
		return CellId{
			ExecutionID:    opts.ExecutionID,
			Implementation: r.Implementation,
			AdapterID:      r.AdapterID,
			Sequence:       r.Spec.Name,
			Column:         col,
			Row:            row,
			Field:          f,
			Oracle:         oracle,
		}
	}

	var cells []Cell
	cells = append(cells, Cell{ID: id(ColumnValue, SequenceRow, FieldSeq, false), Value: CellValue{Value: r.Sequence.String()}})
	if r.Executed != nil {
		cells = append(cells, Cell{ID: id(ColumnValue, SequenceRow, FieldExSeq, false), Value: CellValue{Value: r.Executed.String()}})
	}

	for _, st := range r.Spec.Statements {
		pos := st.Position()
		if _, ok := r.Calls[pos]; !ok {
			continue
		}
		v, err := r.valueCell(st)
		if err != nil {
			logger.Warn("skipping unrenderable cell", "sequence", r.Spec.Name, "row", pos, "field", FieldValue, "error", err)
		} else {
			cells = append(cells, Cell{ID: id(ColumnValue, pos, FieldValue, false), Value: v})
		}

		if opts.SerializeOperations {
			cells = append(cells, Cell{ID: id(ColumnOp, pos, FieldOp, false), Value: r.opCell(st)})
		}

		if opts.SerializeInputs {
			for i, in := range st.Inputs() {
				iv, err := r.valueCell(in)
				if err != nil {
					logger.Warn("skipping unrenderable cell", "sequence", r.Spec.Name, "row", pos, "field", FieldInputValue, "error", err)
					continue
				}
				cells = append(cells, Cell{ID: id(ColumnFirstInput+i, pos, FieldInputValue, false), Value: iv})
			}
		}

		if r.Spec.Oracle != nil {
			ov, err := r.oracleCell(st, v)
			if err != nil {
				logger.Warn("skipping unrenderable oracle cell", "sequence", r.Spec.Name, "row", pos, "error", err)
				continue
			}
			cells = append(cells, Cell{ID: id(ColumnValue, pos, FieldValue, true), Value: ov})
		}
	}
	return cells
}

func (r *SequenceExecutionRecord) valueCell(st statement.Statement) (CellValue, error) {
	typ := StatementType(st)
	out, ok := r.Outcome(st.Position())
	if !ok {
		return CellValue{ValueType: typ.Name, RawValue: NotExecuted, Value: NotExecuted}, nil
	}
	switch out.Kind {
	case execute.NotExecuted:
		return CellValue{ValueType: typ.Name, RawValue: NotExecuted, Value: NotExecuted}, nil
	case execute.Exceptional:
		return CellValue{ValueType: typ.Name, RawValue: member.ExceptionType(out.Err), Value: Exception, ExecutionTime: out.Duration}, nil
	}
	if _, ok := st.(*statement.ConstructorCall); ok {
		return CellValue{ValueType: typ.Name, RawValue: goTypeName(out.Value), Value: Instance, ExecutionTime: out.Duration}, nil
	}
	text, err := Render(out.Value, typ)
	if err != nil {
		return CellValue{}, err
	}
	return CellValue{ValueType: typ.Name, RawValue: text, Value: text, ExecutionTime: out.Duration}, nil
}

func (r *SequenceExecutionRecord) opCell(st statement.Statement) CellValue {
	cr := r.Calls[st.Position()]
	var dur time.Duration
	if r.Executed != nil && cr.Op < r.Executed.Len() {
		dur = r.Executed.Outcome(cr.Op).Duration
	}
	switch s := st.(type) {
	case *statement.ConstructorCall:
		return CellValue{ValueType: s.Signature.Return.Name, RawValue: s.Signature.String(), Value: r.resolved(cr), ExecutionTime: dur}
	case *statement.MethodCall:
		return CellValue{ValueType: declaring(s, r.resolvedMember(cr)), RawValue: s.Signature.String(), Value: r.resolved(cr), ExecutionTime: dur}
	case *statement.ArraySet:
		return CellValue{ValueType: StatementType(s.Array).Name, RawValue: "array_set", Value: "array_set", ExecutionTime: dur}
	case *statement.Value:
		kind := "literal"
		switch {
		case s.IsAlias():
			kind = "alias"
		case s.Null:
			kind = "null"
		case s.Array:
			kind = "array"
		}
		return CellValue{ValueType: s.Type.Name, RawValue: kind, Value: kind, ExecutionTime: dur}
	}
	return CellValue{}
}

func (r *SequenceExecutionRecord) resolvedMember(cr CallRecord) member.Member {
	if cr.Op >= r.Sequence.Len() {
		return nil
	}
	return r.Sequence.At(cr.Op).Member
}

func (r *SequenceExecutionRecord) resolved(cr CallRecord) string {
	if m := r.resolvedMember(cr); m != nil {
		return member.Describe(m)
	}
	return NotExecuted
}

func declaring(s *statement.MethodCall, m member.Member) string {
	if m != nil {
		return m.Owner().Name
	}
	if s.Member != nil {
		return s.Member.Owner().Name
	}
	return ""
}

// oracleCell compares the actual value cell with the expected value for the
// statement, yielding _NA_ when the oracle has no entry for it.
func (r *SequenceExecutionRecord) oracleCell(st statement.Statement, actual CellValue) (CellValue, error) {
	expected, ok := r.Spec.Oracle.Lookup(st.Position())
	if !ok {
		return CellValue{RawValue: NA, Value: NA}, nil
	}
	want, err := ExpectedText(expected)
	if err != nil {
		return CellValue{}, err
	}
	verdict := Mismatch
	if actual.Value == want {
		verdict = Match
	}
	return CellValue{ValueType: expected.Type.Name, RawValue: verdict, Value: want}, nil
}

// ExpectedText renders an oracle value the way actual values are rendered.
func ExpectedText(v *statement.Value) (string, error) {
	if v.Null {
		return Render(nil, v.Type)
	}
	c, err := typesys.Coerce(v.Value, v.Type)
	if err != nil {
		return "", err
	}
	return Render(c, v.Type)
}

// StatementType is the logical type of the value a statement produces.
func StatementType(st statement.Statement) typesys.Type {
	switch s := st.(type) {
	case *statement.Value:
		return s.Type
	case *statement.ConstructorCall:
		return s.Signature.Return
	case *statement.MethodCall:
		return s.Signature.Return
	case *statement.ArraySet:
		if t := StatementType(s.Array); t.Elem != nil {
			return *t.Elem
		}
	}
	return typesys.Object
}
