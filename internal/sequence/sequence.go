package sequence

import (
	"strings"
)

type arena struct {
	ops []Op
}

// Sequence is an immutable view over an append-only arena of ops. Extending a
// view yields a new view with a higher generation; older views keep seeing
// only their own prefix.
type Sequence struct {
	arena    *arena
	n        int
	gen      int
	noInline bool
}

func New() *Sequence {
	return &Sequence{arena: &arena{}}
}

// Extend returns a view with op appended and the index of op's variable.
func (s *Sequence) Extend(op Op) (*Sequence, int) {
	a := s.arena
	if len(a.ops) != s.n {
		// another view already grew the arena past this prefix
		a = &arena{ops: append([]Op(nil), s.arena.ops[:s.n]...)}
	}
	a.ops = append(a.ops, op)
	return &Sequence{arena: a, n: s.n + 1, gen: s.gen + 1, noInline: s.noInline}, s.n
}

// Truncate returns a view of the first n ops.
func (s *Sequence) Truncate(n int) *Sequence {
	if n > s.n {
		n = s.n
	}
	if n < 0 {
		n = 0
	}
	return &Sequence{arena: s.arena, n: n, gen: s.gen + 1, noInline: s.noInline}
}

// DoNotInline returns a view marked so that distinct literal ops are never
// folded into shared constants.
func (s *Sequence) DoNotInline() *Sequence {
	cp := *s
	cp.noInline = true
	return &cp
}

func (s *Sequence) NoInline() bool { return s.noInline }

func (s *Sequence) Len() int { return s.n }

func (s *Sequence) Generation() int { return s.gen }

func (s *Sequence) At(i int) Op { return s.arena.ops[i] }

// Ops returns a copy of the ops of this view.
func (s *Sequence) Ops() []Op {
	return append([]Op(nil), s.arena.ops[:s.n]...)
}

// String renders the sequence as code, one op per line.
func (s *Sequence) String() string {
	var b strings.Builder
	for i := 0; i < s.n; i++ {
		b.WriteString(s.arena.ops[i].Render(i))
		b.WriteByte('\n')
	}
	return b.String()
}
