package adapt

import (
	"fmt"
	"strings"

	"arena/internal/member"
	"arena/internal/typesys"
)

// Defaults fills trailing parameters the contract does not supply from public
// static final fields of the owner. Superseded by the other strategies and
// kept for replaying older adaptations.
type Defaults struct {
	passthrough
	maxOverfit int
}

func NewDefaults(maxOverfit int) *Defaults {
	return &Defaults{maxOverfit: maxOverfit}
}

func (s *Defaults) Name() string { return "defaults" }

func (s *Defaults) MatchMethod(_ typesys.Type, params []typesys.Type, m member.Member) bool {
	extra := len(m.Params()) - len(params)
	return extra > 0 && extra <= s.maxOverfit
}

func (s *Defaults) Match(owner *member.Class, ret typesys.Type, params []typesys.Type, m member.Member, positions []int) []*Candidate {
	if owner == nil || !s.MatchMethod(ret, params, m) || len(positions) != len(params) {
		return nil
	}
	mp := m.Params()
	if !typesys.AllAssignable(orderedParams(params, positions), mp[:len(params)]) {
		return nil
	}
	if !returnFits(m, ret) {
		return nil
	}

	var slots []int
	var choices [][]member.Member
	for k := len(params); k < len(mp); k++ {
		fields := defaultFields(owner, mp[k])
		if len(fields) == 0 {
			return nil
		}
		slots = append(slots, k)
		choices = append(choices, fields)
	}

	var out []*Candidate
	for _, combo := range product(choices) {
		c := &Candidate{Member: m, Positions: append([]int(nil), positions...), Strategy: s}
		c.setExtra(ExtraOverfitPos, append([]int(nil), slots...))
		c.setExtra(ExtraOverfitFields, combo)
		out = append(out, c)
	}
	return out
}

func (s *Defaults) PreProcess(c *Candidate, inputs []any) ([]any, error) {
	fields := c.OverfitFields()
	out := make([]any, 0, len(inputs)+len(fields))
	out = append(out, inputs...)
	for _, f := range fields {
		v, err := f.Invoke(nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read default %s: %w", member.Describe(f), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Defaults) Serialize(c *Candidate) map[string]string {
	out := map[string]string{}
	if pos, ok := c.Extra[ExtraOverfitPos].([]int); ok {
		out[ExtraOverfitPos] = joinInts(pos)
	}
	for i, f := range c.OverfitFields() {
		out[fmt.Sprintf("overfit_field_%d", i)] = f.Owner().Name + "." + f.Name()
	}
	return out
}

func (s *Defaults) Deserialize(c *Candidate, owner *member.Class, data map[string]string) error {
	pos, err := splitInts(data[ExtraOverfitPos])
	if err != nil {
		return fmt.Errorf("invalid %s: %w", ExtraOverfitPos, err)
	}
	fields := make([]member.Member, len(pos))
	for i := range pos {
		ref := data[fmt.Sprintf("overfit_field_%d", i)]
		name := ref[strings.LastIndex(ref, ".")+1:]
		f, ok := owner.Field(name)
		if !ok {
			return fmt.Errorf("default field %q not found on %s", ref, owner.Name)
		}
		fields[i] = f
	}
	c.setExtra(ExtraOverfitPos, pos)
	c.setExtra(ExtraOverfitFields, fields)
	return nil
}

func defaultFields(owner *member.Class, t typesys.Type) []member.Member {
	var out []member.Member
	for _, f := range owner.Fields {
		if f.Modifiers().Has(member.Public|member.Static|member.Final) && typesys.AssignableTo(f.Return(), t) {
			out = append(out, f)
		}
	}
	return out
}

func product(choices [][]member.Member) [][]member.Member {
	out := [][]member.Member{{}}
	for _, options := range choices {
		var next [][]member.Member
		for _, prefix := range out {
			for _, o := range options {
				combo := append(append([]member.Member(nil), prefix...), o)
				next = append(next, combo)
			}
		}
		out = next
	}
	return out
}
