package execute

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arena/internal/adapt"
	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/metrics"
	"arena/internal/sequence"
	"arena/internal/typesys"
)

// Substrate runs a concrete sequence and reports the outcome of every op.
type Substrate interface {
	Execute(ctx context.Context, seq *sequence.Sequence) (*Executed, error)
}

// InProcess executes sequences in the calling goroutine. Panics raised by
// members are recovered by the member layer and recorded as exceptional
// outcomes. The context is checked between ops.
type InProcess struct {
	logger *slog.Logger
}

type Option func(*InProcess)

func WithLogger(l *slog.Logger) Option {
	return func(p *InProcess) { p.logger = l }
}

func NewInProcess(opts ...Option) *InProcess {
	p := &InProcess{logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *InProcess) Execute(ctx context.Context, seq *sequence.Sequence) (*Executed, error) {
	ex := newExecuted(seq)
	for i := 0; i < seq.Len(); i++ {
		if err := ctx.Err(); err != nil {
			ex.Interrupted = true
			p.logger.Warn("sequence execution interrupted", "index", i, "error", err)
			break
		}
		op := seq.At(i)
		start := time.Now()
		value, err := p.step(ex, op)
		out := Outcome{Kind: Normal, Value: value, Err: err, Duration: time.Since(start)}
		if err != nil {
			out.Kind = Exceptional
			out.Value = nil
		}
		ex.Outcomes[i] = out
		metrics.StatementOutcomesTotal.WithLabelValues(out.Kind.String()).Inc()
		if err != nil {
			break
		}
	}
	for i := range ex.Outcomes {
		if ex.Outcomes[i].Kind == NotExecuted {
			metrics.StatementOutcomesTotal.WithLabelValues(NotExecuted.String()).Inc()
		}
	}
	return ex, nil
}

func (p *InProcess) step(ex *Executed, op sequence.Op) (any, error) {
	switch op.Kind {
	case sequence.OpLiteral:
		return op.Value, nil
	case sequence.OpNull:
		return nil, nil
	case sequence.OpNoOp:
		return member.NoOp().Invoke(nil, nil)
	case sequence.OpConstruct:
		return op.Member.Invoke(nil, values(ex, op.Inputs))
	case sequence.OpCall:
		recv, args := receiverAndArgs(ex, op)
		return op.Member.Invoke(recv, args)
	case sequence.OpAdaptedCall:
		return p.adaptedCall(ex, op)
	case sequence.OpNewArray:
		return typesys.NewArray(*op.Type.Elem, values(ex, op.Inputs))
	case sequence.OpArraySet:
		return setElement(ex.Value(op.Inputs[0]), ex.Value(op.Inputs[1]), ex.Value(op.Inputs[2]))
	case sequence.OpConverterNew:
		return op.Converter, nil
	case sequence.OpConverterInvoke:
		conv, ok := ex.Value(op.Inputs[0]).(convert.Converter)
		if !ok {
			return nil, fmt.Errorf("variable v%d is not a converter", op.Inputs[0])
		}
		return conv.Convert(ex.Value(op.Inputs[1]), op.To)
	case sequence.OpCast:
		v, err := typesys.Coerce(ex.Value(op.Inputs[0]), op.Type)
		if err != nil {
			return nil, member.NewFault("ClassCastException", err.Error())
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown op kind %d", op.Kind)
}

// adaptedCall runs the strategy hooks around the member and writes a relayed
// value back into the caller's variable when the strategy asks for it.
func (p *InProcess) adaptedCall(ex *Executed, op sequence.Op) (any, error) {
	recv, args := receiverAndArgs(ex, op)
	result, seen, err := adapt.Invoke(op.Candidate, recv, args)
	if err != nil {
		return nil, err
	}
	if idx, ok := adapt.WriteBackIndex(op.Candidate); ok {
		vars := op.Args()
		if idx < len(vars) && idx < len(seen) {
			ex.Set(vars[idx], seen[idx])
		}
	}
	return result, nil
}

func receiverAndArgs(ex *Executed, op sequence.Op) (any, []any) {
	if op.Receiver {
		return ex.Value(op.Inputs[0]), values(ex, op.Inputs[1:])
	}
	return nil, values(ex, op.Inputs)
}

// values copies the current values of vars into a fresh slice.
func values(ex *Executed, vars []int) []any {
	out := make([]any, len(vars))
	for i, v := range vars {
		out[i] = ex.Value(v)
	}
	return out
}

func setElement(arr, index, v any) (any, error) {
	if arr == nil {
		return nil, member.NewFault("NullPointerException", "array is null")
	}
	idx, ok := toInt(index)
	if !ok {
		return nil, member.NewFault("IllegalArgumentException", fmt.Sprintf("index %v is not an int", index))
	}
	elems, err := typesys.Elements(arr)
	if err != nil {
		return nil, member.NewFault("IllegalArgumentException", err.Error())
	}
	if idx < 0 || idx >= len(elems) {
		return nil, member.NewFault("ArrayIndexOutOfBoundsException", fmt.Sprintf("index %d out of bounds for length %d", idx, len(elems)))
	}
	if err := typesys.SetElement(arr, idx, v); err != nil {
		return nil, member.NewFault("ArrayStoreException", err.Error())
	}
	return v, nil
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case int16:
		return int(x), true
	case byte:
		return int(x), true
	}
	return 0, false
}
