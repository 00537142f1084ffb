package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arena/internal/adapt"
	"arena/internal/member"
	"arena/internal/metrics"
	"arena/internal/record"
	"arena/internal/sequence"
	"arena/internal/statement"
	"arena/internal/typesys"
)

var (
	// ErrMissingConverter means a strategy promised a conversion it cannot supply.
	ErrMissingConverter = errors.New("missing converter")
	// ErrNoInitializer means a required constructor resolved to nothing usable.
	ErrNoInitializer = errors.New("no initializer")
	// ErrUnresolvedSignature means a statement names a signature the
	// specification or registry does not know.
	ErrUnresolvedSignature = errors.New("unresolved signature")
	// ErrUnbuiltInput means a statement consumes one that was not built before it.
	ErrUnbuiltInput = errors.New("input not built")
)

// Builder instantiates sequence specifications against adapted implementations.
type Builder struct {
	logger *slog.Logger
}

type Option func(*Builder)

func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func New(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Instantiate walks the statements in program order and emits the concrete
// sequence for impl. Calls on the class under test go through impl; every
// other statement is emitted as written.
func (b *Builder) Instantiate(spec *statement.SequenceSpecification, impl *adapt.AdaptedImplementation) (*record.SequenceExecutionRecord, error) {
	start := time.Now()
	defer func() { metrics.SequenceBuildDuration.Observe(time.Since(start).Seconds()) }()

	st := &state{
		logger:   b.logger,
		impl:     impl,
		seq:      sequence.New().DoNotInline(),
		vars:     make(map[int]int),
		calls:    make(map[int]record.CallRecord),
		receiver: -1,
	}
	for _, s := range spec.Statements {
		if err := st.emit(s); err != nil {
			return nil, fmt.Errorf("failed to build %s at position %d: %w", spec.Name, s.Position(), err)
		}
	}
	b.logger.Debug("sequence built", "sequence", spec.Name, "implementation", impl.ID, "ops", st.seq.Len())

	return record.New(spec, impl.Class.Name, impl.ID, st.seq, st.calls), nil
}

type state struct {
	logger *slog.Logger
	impl   *adapt.AdaptedImplementation
	seq    *sequence.Sequence
	vars   map[int]int
	calls  map[int]record.CallRecord
	// receiver is the first instance of the class under test, or -1.
	receiver int
}

func (s *state) append(op sequence.Op) int {
	var v int
	s.seq, v = s.seq.Extend(op)
	return v
}

func (s *state) typeOf(v int) typesys.Type { return s.seq.At(v).Type }

func (s *state) bind(st statement.Statement, v, op int) {
	s.vars[st.Position()] = v
	s.calls[st.Position()] = record.CallRecord{Var: v, Op: op, Statement: st}
}

func (s *state) input(st statement.Statement) (int, error) {
	v, ok := s.vars[st.Position()]
	if !ok {
		return 0, fmt.Errorf("%w: position %d", ErrUnbuiltInput, st.Position())
	}
	return v, nil
}

func (s *state) inputs(sts []statement.Statement) ([]int, error) {
	out := make([]int, len(sts))
	for i, st := range sts {
		v, err := s.input(st)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *state) emit(st statement.Statement) error {
	switch x := st.(type) {
	case *statement.Value:
		return s.emitValue(x)
	case *statement.ConstructorCall:
		if x.ClassUnderTest {
			return s.emitAdaptedConstructor(x)
		}
		return s.emitConstructor(x)
	case *statement.MethodCall:
		if x.ClassUnderTest {
			return s.emitAdaptedMethod(x)
		}
		return s.emitMethod(x)
	case *statement.ArraySet:
		return s.emitArraySet(x)
	}
	return fmt.Errorf("unknown statement %T", st)
}

func (s *state) emitValue(v *statement.Value) error {
	if v.IsAlias() {
		src, err := s.input(v.AliasOf)
		if err != nil {
			return err
		}
		s.bind(v, src, src)
		return nil
	}
	if v.Null {
		idx := s.append(sequence.Op{Kind: sequence.OpNull, Type: v.Type})
		s.bind(v, idx, idx)
		return nil
	}
	if v.Array {
		elems, _ := v.Value.([]any)
		idx, err := s.emitArray(v.Type, elems)
		if err != nil {
			return err
		}
		s.bind(v, idx, idx)
		return nil
	}
	idx, err := s.emitLiteral(v.Type, v.Value, v.Code)
	if err != nil {
		return err
	}
	s.bind(v, idx, idx)
	return nil
}

func (s *state) emitLiteral(t typesys.Type, value any, code string) (int, error) {
	if value == nil {
		return s.append(sequence.Op{Kind: sequence.OpNull, Type: t}), nil
	}
	c, err := typesys.Coerce(value, t)
	if err != nil {
		return 0, fmt.Errorf("failed to build %s literal: %w", t.Name, err)
	}
	return s.append(sequence.Op{Kind: sequence.OpLiteral, Type: t, Value: c, Code: code}), nil
}

// emitArray emits one op per element, recursing into nested arrays, then the
// array itself.
func (s *state) emitArray(t typesys.Type, elems []any) (int, error) {
	if t.Elem == nil {
		return 0, fmt.Errorf("%s is not an array type", t.Name)
	}
	elem := *t.Elem
	vars := make([]int, len(elems))
	for i, e := range elems {
		var (
			v   int
			err error
		)
		if nested, ok := e.([]any); ok && elem.Kind == typesys.KindArray {
			v, err = s.emitArray(elem, nested)
		} else {
			v, err = s.emitLiteral(elem, e, "")
		}
		if err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
		vars[i] = v
	}
	return s.append(sequence.Op{Kind: sequence.OpNewArray, Type: t, Inputs: vars}), nil
}

func (s *state) emitArraySet(a *statement.ArraySet) error {
	arr, err := s.input(a.Array)
	if err != nil {
		return err
	}
	val, err := s.input(a.Value)
	if err != nil {
		return err
	}
	idx := s.append(sequence.Op{Kind: sequence.OpLiteral, Type: typesys.Int, Value: int32(a.Index)})
	elem := typesys.Object
	if t := s.typeOf(arr); t.Elem != nil {
		elem = *t.Elem
	}
	set := s.append(sequence.Op{Kind: sequence.OpArraySet, Type: elem, Inputs: []int{arr, idx, val}})
	s.bind(a, set, set)
	return nil
}

func (s *state) emitConstructor(c *statement.ConstructorCall) error {
	if c.Member == nil {
		return fmt.Errorf("%w: %s", ErrUnresolvedSignature, c.Signature)
	}
	args, err := s.inputs(c.Args)
	if err != nil {
		return err
	}
	kind := sequence.OpConstruct
	if c.Member.Kind() != member.KindConstructor {
		kind = sequence.OpCall
	}
	idx := s.append(sequence.Op{Kind: kind, Type: c.Member.Return(), Member: c.Member, Inputs: args})
	s.bind(c, idx, idx)
	return nil
}

func (s *state) emitMethod(c *statement.MethodCall) error {
	if c.Member == nil {
		return fmt.Errorf("%w: %s", ErrUnresolvedSignature, c.Signature)
	}
	args, err := s.inputs(c.Args)
	if err != nil {
		return err
	}
	op := sequence.Op{Kind: sequence.OpCall, Type: c.Member.Return(), Member: c.Member, Inputs: args}
	if !member.IsStatic(c.Member) {
		if c.Receiver == nil {
			return fmt.Errorf("%w: instance call %s without receiver", ErrUnresolvedSignature, c.Signature)
		}
		recv, err := s.input(c.Receiver)
		if err != nil {
			return err
		}
		op.Receiver = true
		op.Inputs = append([]int{recv}, args...)
	}
	idx := s.append(op)
	s.bind(c, idx, idx)
	return nil
}
