package record

import (
	"context"
	"fmt"

	"arena/internal/execute"
	"arena/internal/sequence"
	"arena/internal/statement"
)

// CallRecord ties a statement to the variable holding its value. Op is the
// variable of the underlying operation, which differs from Var when the
// result went through conversion glue.
type CallRecord struct {
	Var       int
	Op        int
	Statement statement.Statement
}

// SequenceExecutionRecord owns a concrete sequence built for one
// implementation, its executed form and the statement correspondence.
type SequenceExecutionRecord struct {
	Spec           *statement.SequenceSpecification
	Implementation string
	AdapterID      string
	Sequence       *sequence.Sequence
	Executed       *execute.Executed
	Calls          map[int]CallRecord
}

func New(spec *statement.SequenceSpecification, impl, adapterID string, seq *sequence.Sequence, calls map[int]CallRecord) *SequenceExecutionRecord {
	return &SequenceExecutionRecord{
		Spec:           spec,
		Implementation: impl,
		AdapterID:      adapterID,
		Sequence:       seq,
		Calls:          calls,
	}
}

// Execute runs the sequence on sub. When the run stops early the stored
// sequence is cut right after the last op that ran.
func (r *SequenceExecutionRecord) Execute(ctx context.Context, sub execute.Substrate) error {
	ex, err := sub.Execute(ctx, r.Sequence)
	if err != nil {
		return fmt.Errorf("failed to execute sequence %s: %w", r.Spec.Name, err)
	}
	if ex.HasNonExecuted() {
		ex = ex.Truncate(firstNotExecuted(ex))
		r.Sequence = ex.Sequence
	}
	r.Executed = ex
	return nil
}

func firstNotExecuted(ex *execute.Executed) int {
	for i := 0; i < ex.Len(); i++ {
		if ex.Outcome(i).Kind == execute.NotExecuted {
			return i
		}
	}
	return ex.Len()
}

// Outcome returns the outcome of the statement at pos. Statements cut off by
// truncation are reported as not executed.
func (r *SequenceExecutionRecord) Outcome(pos int) (execute.Outcome, bool) {
	cr, ok := r.Calls[pos]
	if !ok {
		return execute.Outcome{}, false
	}
	if r.Executed == nil {
		return execute.Outcome{Kind: execute.NotExecuted}, true
	}
	// glue after a throwing call never runs; report the call's exception
	if cr.Op < r.Executed.Len() {
		if op := r.Executed.Outcome(cr.Op); op.Kind == execute.Exceptional {
			return op, true
		}
	}
	if cr.Var >= r.Executed.Len() {
		return execute.Outcome{Kind: execute.NotExecuted}, true
	}
	return r.Executed.Outcome(cr.Var), true
}

// Failed reports whether the executed sequence did not complete normally.
func (r *SequenceExecutionRecord) Failed() bool {
	if r.Executed == nil {
		return true
	}
	return !r.Executed.IsNormalExecution() || r.Executed.HasNonExecuted() || r.Executed.HasFailure()
}
