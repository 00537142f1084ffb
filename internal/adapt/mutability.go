package adapt

import (
	"fmt"
	"strconv"

	"arena/internal/member"
	"arena/internal/typesys"
)

// MutableReference adapts a void member that mutates one of its arguments to
// a contract that returns that argument.
type MutableReference struct{ passthrough }

func NewMutableReference() *MutableReference { return &MutableReference{} }

func (s *MutableReference) Name() string { return "mutability_reference" }

func (s *MutableReference) MatchMethod(ret typesys.Type, params []typesys.Type, m member.Member) bool {
	return m.Kind() != member.KindConstructor && m.Return().IsVoid() && !ret.IsVoid() && len(m.Params()) == len(params)
}

func (s *MutableReference) Match(_ *member.Class, ret typesys.Type, params []typesys.Type, m member.Member, positions []int) []*Candidate {
	if !s.MatchMethod(ret, params, m) || len(positions) != len(params) {
		return nil
	}
	if !typesys.AllAssignable(orderedParams(params, positions), m.Params()) {
		return nil
	}
	for j, p := range m.Params() {
		if typesys.IsMutable(p) && p.Equal(ret) {
			c := &Candidate{Member: m, Positions: append([]int(nil), positions...), Strategy: s}
			c.setExtra(ExtraMutableIndex, j)
			return []*Candidate{c}
		}
	}
	return nil
}

// PostProcess returns the mutated argument as the logical result.
func (s *MutableReference) PostProcess(c *Candidate, inputs []any, _ any, thrown error) (any, error) {
	if thrown != nil {
		return nil, thrown
	}
	idx, ok := c.MutableIndex()
	if !ok || idx >= len(inputs) {
		return nil, fmt.Errorf("mutable index missing for %s", member.Describe(c.Member))
	}
	return inputs[idx], nil
}

func (s *MutableReference) Serialize(c *Candidate) map[string]string {
	return serializeIndex(c)
}

func (s *MutableReference) Deserialize(c *Candidate, _ *member.Class, data map[string]string) error {
	return deserializeIndex(c, data)
}

// MutableValue adapts a member returning a value of one of its parameter types
// to a void contract; the returned value replaces the argument it mirrors.
type MutableValue struct{ passthrough }

func NewMutableValue() *MutableValue { return &MutableValue{} }

func (s *MutableValue) Name() string { return "mutability_value" }

func (s *MutableValue) MatchMethod(ret typesys.Type, params []typesys.Type, m member.Member) bool {
	return m.Kind() != member.KindConstructor && ret.IsVoid() && !m.Return().IsVoid() && len(m.Params()) == len(params)
}

func (s *MutableValue) Match(_ *member.Class, ret typesys.Type, params []typesys.Type, m member.Member, positions []int) []*Candidate {
	if !s.MatchMethod(ret, params, m) || len(positions) != len(params) {
		return nil
	}
	required := orderedParams(params, positions)
	if !typesys.AllAssignable(required, m.Params()) {
		return nil
	}
	for j := range m.Params() {
		if required[j].Equal(m.Return()) {
			c := &Candidate{Member: m, Positions: append([]int(nil), positions...), Strategy: s}
			c.setExtra(ExtraMutableIndex, j)
			return []*Candidate{c}
		}
	}
	return nil
}

// PostProcess stores the returned value in the mirrored argument slot and
// yields no result.
func (s *MutableValue) PostProcess(c *Candidate, inputs []any, returned any, thrown error) (any, error) {
	if thrown != nil {
		return nil, thrown
	}
	idx, ok := c.MutableIndex()
	if !ok || idx >= len(inputs) {
		return nil, fmt.Errorf("mutable index missing for %s", member.Describe(c.Member))
	}
	inputs[idx] = returned
	return nil, nil
}

func (s *MutableValue) Serialize(c *Candidate) map[string]string {
	return serializeIndex(c)
}

func (s *MutableValue) Deserialize(c *Candidate, _ *member.Class, data map[string]string) error {
	return deserializeIndex(c, data)
}

func serializeIndex(c *Candidate) map[string]string {
	out := map[string]string{}
	if idx, ok := c.MutableIndex(); ok {
		out[ExtraMutableIndex] = strconv.Itoa(idx)
	}
	return out
}

func deserializeIndex(c *Candidate, data map[string]string) error {
	raw, ok := data[ExtraMutableIndex]
	if !ok {
		return nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", ExtraMutableIndex, raw, err)
	}
	c.setExtra(ExtraMutableIndex, idx)
	return nil
}
