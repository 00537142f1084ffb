package adapt

import (
	"fmt"

	"arena/internal/member"
	"arena/internal/signature"
)

// Adapt matches class against spec and returns its primary adaptation.
func (e *Engine) Adapt(spec *signature.InterfaceSpecification, class *member.Class, opts ...Option) *AdaptedImplementation {
	return e.AdaptAll(spec, class, 1, opts...)[0]
}

// AdaptAll returns up to limit adaptations of class, one per combination of
// candidates across the required signatures. Within each adaptation the chosen
// candidate of an index comes first and the others remain as alternates.
// Combinations are enumerated in candidate order without ranking.
func (e *Engine) AdaptAll(spec *signature.InterfaceSpecification, class *member.Class, limit int, opts ...Option) []*AdaptedImplementation {
	spec = spec.WithDefaultConstructor()
	if limit < 1 {
		limit = 1
	}

	ctors := make([][]*Candidate, len(spec.Constructors))
	for i, sig := range spec.Constructors {
		ctors[i], _ = e.Match(class, sig, class.Constructors)
	}
	methods := make([][]*Candidate, len(spec.Methods))
	for i, sig := range spec.Methods {
		methods[i], _ = e.Match(class, sig, class.Methods)
	}

	slots := append(append([][]*Candidate{}, ctors...), methods...)
	choice := make([]int, len(slots))

	var out []*AdaptedImplementation
	for n := 0; n < limit; n++ {
		picked := make([][]*Candidate, len(slots))
		for i, list := range slots {
			picked[i] = promote(list, choice[i])
		}
		id := fmt.Sprintf("%s#%d", class.Name, n)
		out = append(out, newAdapted(id, class, spec, picked[:len(ctors)], picked[len(ctors):], opts...))

		if !advance(choice, slots) {
			break
		}
	}
	return out
}

// promote returns list with list[i] moved to the front.
func promote(list []*Candidate, i int) []*Candidate {
	if i == 0 || i >= len(list) {
		return list
	}
	out := make([]*Candidate, 0, len(list))
	out = append(out, list[i])
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out
}

// advance steps choice like an odometer, last slot fastest. It returns false
// once every combination has been produced.
func advance(choice []int, slots [][]*Candidate) bool {
	for i := len(choice) - 1; i >= 0; i-- {
		if choice[i]+1 < len(slots[i]) {
			choice[i]++
			return true
		}
		choice[i] = 0
	}
	return false
}
