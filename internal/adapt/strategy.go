package adapt

import (
	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/typesys"
)

// Strategy decides whether and how a member can satisfy a required
// signature, and adjusts inputs and results at call time. Implementations are
// stateless and safe to share between goroutines.
type Strategy interface {
	Name() string

	// MatchMethod is a cheap pre-filter run once per member.
	MatchMethod(ret typesys.Type, params []typesys.Type, m member.Member) bool

	// Match returns the candidates for one arrangement of positions, or nil.
	Match(owner *member.Class, ret typesys.Type, params []typesys.Type, m member.Member, positions []int) []*Candidate

	PreProcess(c *Candidate, inputs []any) ([]any, error)
	PostProcess(c *Candidate, inputs []any, returned any, thrown error) (any, error)

	// Serialize and Deserialize persist strategy-specific extra data to a flat
	// map so an adaptation can be replayed without matching again.
	Serialize(c *Candidate) map[string]string
	Deserialize(c *Candidate, owner *member.Class, data map[string]string) error
}

// Converting is implemented by strategies that can supply a converter for a
// type mismatch at call time.
type Converting interface {
	Converter(from, to typesys.Type) (convert.Converter, bool)
}

type passthrough struct{}

func (passthrough) PreProcess(_ *Candidate, inputs []any) ([]any, error) { return inputs, nil }

func (passthrough) PostProcess(_ *Candidate, _ []any, returned any, thrown error) (any, error) {
	return returned, thrown
}

func (passthrough) Serialize(*Candidate) map[string]string { return map[string]string{} }

func (passthrough) Deserialize(*Candidate, *member.Class, map[string]string) error { return nil }

func orderedParams(params []typesys.Type, positions []int) []typesys.Type {
	out := make([]typesys.Type, len(positions))
	for j, p := range positions {
		out[j] = params[p]
	}
	return out
}

func returnFits(m member.Member, ret typesys.Type) bool {
	return m.Kind() == member.KindConstructor || typesys.ReturnAssignable(m.Return(), ret)
}
