package adapt

import (
	"fmt"

	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/typesys"
)

// Conversion matches members whose parameter or return types differ from the
// required ones but can be bridged by the conversion catalogue.
type Conversion struct {
	passthrough
	catalogue *convert.Catalogue
}

func NewConversion(catalogue *convert.Catalogue) *Conversion {
	return &Conversion{catalogue: catalogue}
}

func (s *Conversion) Name() string { return "conversion" }

func (s *Conversion) Converter(from, to typesys.Type) (convert.Converter, bool) {
	return s.catalogue.Lookup(from, to)
}

func (s *Conversion) MatchMethod(_ typesys.Type, params []typesys.Type, m member.Member) bool {
	return len(m.Params()) == len(params)
}

func (s *Conversion) Match(_ *member.Class, ret typesys.Type, params []typesys.Type, m member.Member, positions []int) []*Candidate {
	if len(m.Params()) != len(params) || len(positions) != len(params) {
		return nil
	}

	required := orderedParams(params, positions)
	converts := false
	for j, p := range m.Params() {
		if required[j].Equal(p) {
			continue
		}
		if !s.catalogue.CanConvert(required[j], p) {
			return nil
		}
		converts = true
	}

	if m.Kind() != member.KindConstructor && !ret.IsVoid() && !m.Return().Equal(ret) {
		if m.Return().IsVoid() || !s.catalogue.CanConvert(m.Return(), ret) {
			return nil
		}
		converts = true
	}
	if !converts {
		return nil
	}

	c := &Candidate{Member: m, Positions: append([]int(nil), positions...), Strategy: s}
	c.setExtra(ExtraParamTypes, required)
	c.setExtra(ExtraReturnType, ret)
	return []*Candidate{c}
}

func (s *Conversion) PreProcess(c *Candidate, inputs []any) ([]any, error) {
	required, ok := c.ParamTypes()
	if !ok {
		return inputs, nil
	}
	out := make([]any, len(inputs))
	for j, v := range inputs {
		target := c.Member.Params()[j]
		if required[j].Equal(target) {
			out[j] = v
			continue
		}
		conv, err := s.catalogue.Convert(v, required[j], target)
		if err != nil {
			return nil, fmt.Errorf("failed to convert argument %d: %w", j, err)
		}
		out[j] = conv
	}
	return out, nil
}

func (s *Conversion) PostProcess(c *Candidate, _ []any, returned any, thrown error) (any, error) {
	if thrown != nil {
		return nil, thrown
	}
	ret, ok := c.ReturnType()
	if !ok || ret.IsVoid() || c.Member.Kind() == member.KindConstructor || c.Member.Return().Equal(ret) {
		return returned, nil
	}
	out, err := s.catalogue.Convert(returned, c.Member.Return(), ret)
	if err != nil {
		return nil, fmt.Errorf("failed to convert result: %w", err)
	}
	return out, nil
}

func (s *Conversion) Serialize(c *Candidate) map[string]string {
	out := map[string]string{}
	if p, ok := c.ParamTypes(); ok {
		out[ExtraParamTypes] = typeNames(p)
	}
	if r, ok := c.ReturnType(); ok {
		out[ExtraReturnType] = r.Name
	}
	return out
}

func (s *Conversion) Deserialize(c *Candidate, _ *member.Class, data map[string]string) error {
	if p, ok := data[ExtraParamTypes]; ok {
		c.setExtra(ExtraParamTypes, parseTypes(p))
	}
	if r, ok := data[ExtraReturnType]; ok {
		c.setExtra(ExtraReturnType, typesys.Parse(r))
	}
	return nil
}
