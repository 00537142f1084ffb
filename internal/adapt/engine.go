package adapt

import (
	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/metrics"
	"arena/internal/signature"
)

const (
	DefaultMaxParamsLength = 5
	DefaultMaxOverfit      = 2
)

// StageResult reports what one strategy contributed to a match run.
type StageResult struct {
	Strategy  string
	Attempted int
	Matched   int
	Duplicate int
}

// Engine runs every strategy over every member and unions the results.
type Engine struct {
	strategies []Strategy
	maxParams  int
}

type EngineOption func(*Engine)

// WithMaxParamsLength limits permutation enumeration to members with at most n
// parameters; larger members are only tried in declaration order.
func WithMaxParamsLength(n int) EngineOption {
	return func(e *Engine) { e.maxParams = n }
}

func NewEngine(strategies []Strategy, opts ...EngineOption) *Engine {
	e := &Engine{strategies: strategies, maxParams: DefaultMaxParamsLength}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewDefaultEngine wires the standard strategies. The order decides which
// strategy keeps a candidate produced by more than one of them.
func NewDefaultEngine(catalogue *convert.Catalogue, maxOverfit int, opts ...EngineOption) *Engine {
	return NewEngine([]Strategy{
		NewMutableValue(),
		NewDirect(),
		NewConversion(catalogue),
		NewMutableReference(),
		NewDefaults(maxOverfit),
	}, opts...)
}

// Strategies returns the configured strategies in run order.
func (e *Engine) Strategies() []Strategy {
	return append([]Strategy(nil), e.strategies...)
}

// Strategy returns the configured strategy with the given name.
func (e *Engine) Strategy(name string) (Strategy, bool) {
	for _, s := range e.strategies {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Match returns the deduplicated candidates of members for sig.
func (e *Engine) Match(owner *member.Class, sig signature.Signature, members []member.Member) ([]*Candidate, []StageResult) {
	stats := make([]StageResult, len(e.strategies))
	for i, s := range e.strategies {
		stats[i].Strategy = s.Name()
	}

	seen := make(map[string]bool)
	var out []*Candidate
	for _, m := range members {
		if len(m.Params()) < len(sig.Params) {
			continue
		}
		arrangements := e.arrangements(len(sig.Params), len(m.Params()))
		for i, s := range e.strategies {
			if !s.MatchMethod(sig.Return, sig.Params, m) {
				continue
			}
			for _, positions := range arrangements {
				stats[i].Attempted++
				for _, c := range s.Match(owner, sig.Return, sig.Params, m, positions) {
					if seen[c.Key()] {
						stats[i].Duplicate++
						continue
					}
					seen[c.Key()] = true
					stats[i].Matched++
					out = append(out, c)
				}
			}
		}
	}

	for _, st := range stats {
		if st.Matched > 0 {
			metrics.CandidatesTotal.WithLabelValues(st.Strategy).Add(float64(st.Matched))
		}
	}
	return out, stats
}

func (e *Engine) arrangements(required, params int) [][]int {
	if required == params && required <= e.maxParams {
		return Permutations(required)
	}
	return [][]int{identity(required)}
}

// Permutations lists every permutation of 0..n-1 in lexicographic order,
// starting with the identity.
func Permutations(n int) [][]int {
	var out [][]int
	used := make([]bool, n)
	cur := make([]int, 0, n)
	var walk func()
	walk = func() {
		if len(cur) == n {
			out = append(out, append(make([]int, 0, n), cur...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, i)
			walk()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	walk()
	return out
}
