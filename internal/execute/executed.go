package execute

import (
	"fmt"
	"strings"
	"time"

	"arena/internal/member"
	"arena/internal/sequence"
)

type OutcomeKind int

const (
	NotExecuted OutcomeKind = iota
	Normal
	Exceptional
)

func (k OutcomeKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Exceptional:
		return "exceptional"
	default:
		return "not_executed"
	}
}

// Outcome is the result of one op.
type Outcome struct {
	Kind     OutcomeKind
	Value    any
	Err      error
	Duration time.Duration
}

// Executed is a sequence together with the outcome of every op.
type Executed struct {
	Sequence *sequence.Sequence
	Outcomes []Outcome
	// Interrupted is set when the run was abandoned before reaching the end,
	// for instance because its context expired.
	Interrupted bool
}

func newExecuted(seq *sequence.Sequence) *Executed {
	return &Executed{Sequence: seq, Outcomes: make([]Outcome, seq.Len())}
}

func (e *Executed) Len() int { return len(e.Outcomes) }

func (e *Executed) Outcome(i int) Outcome { return e.Outcomes[i] }

// Value returns the current value of variable i.
func (e *Executed) Value(i int) any { return e.Outcomes[i].Value }

// Set replaces the value of variable i, used when a call writes back into a
// caller variable.
func (e *Executed) Set(i int, v any) { e.Outcomes[i].Value = v }

// IsNormalExecution reports whether every op completed normally.
func (e *Executed) IsNormalExecution() bool {
	for _, o := range e.Outcomes {
		if o.Kind != Normal {
			return false
		}
	}
	return true
}

func (e *Executed) HasNonExecuted() bool {
	for _, o := range e.Outcomes {
		if o.Kind == NotExecuted {
			return true
		}
	}
	return false
}

// HasFailure reports a run the substrate could not complete.
func (e *Executed) HasFailure() bool { return e.Interrupted }

// ExceptionIndex returns the index of the first exceptional op, or -1.
func (e *Executed) ExceptionIndex() int {
	for i, o := range e.Outcomes {
		if o.Kind == Exceptional {
			return i
		}
	}
	return -1
}

// Truncate drops the outcomes past n along with the ops.
func (e *Executed) Truncate(n int) *Executed {
	if n >= len(e.Outcomes) {
		return e
	}
	return &Executed{
		Sequence:    e.Sequence.Truncate(n),
		Outcomes:    append([]Outcome(nil), e.Outcomes[:n]...),
		Interrupted: e.Interrupted,
	}
}

// String renders the executed sequence with the outcome of each op.
func (e *Executed) String() string {
	var b strings.Builder
	for i, o := range e.Outcomes {
		b.WriteString(e.Sequence.At(i).Render(i))
		switch o.Kind {
		case Normal:
			fmt.Fprintf(&b, " // => %s", display(o.Value))
		case Exceptional:
			fmt.Fprintf(&b, " // throws %s", member.ExceptionType(o.Err))
		default:
			b.WriteString(" // not executed")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", x)
	case rune:
		return fmt.Sprintf("%d", x)
	case []rune:
		return fmt.Sprintf("%q", string(x))
	}
	return fmt.Sprintf("%v", v)
}
