package adapt

import (
	"arena/internal/member"
	"arena/internal/typesys"
)

// Direct matches members whose parameters accept the required arguments in
// some order, with no conversion.
type Direct struct{ passthrough }

func NewDirect() *Direct { return &Direct{} }

func (d *Direct) Name() string { return "direct" }

func (d *Direct) MatchMethod(_ typesys.Type, params []typesys.Type, m member.Member) bool {
	return len(m.Params()) == len(params)
}

func (d *Direct) Match(_ *member.Class, ret typesys.Type, params []typesys.Type, m member.Member, positions []int) []*Candidate {
	if len(m.Params()) != len(params) || len(positions) != len(params) {
		return nil
	}
	if !typesys.AllAssignable(orderedParams(params, positions), m.Params()) {
		return nil
	}
	if !returnFits(m, ret) {
		return nil
	}
	return []*Candidate{{Member: m, Positions: append([]int(nil), positions...), Strategy: d}}
}
