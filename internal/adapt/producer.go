package adapt

import (
	"arena/internal/member"
)

// FactoryMethods returns candidates for public static zero-argument methods
// returning the owner type.
func FactoryMethods(owner *member.Class) []*Candidate {
	var out []*Candidate
	for _, m := range owner.Methods {
		if m.Kind() == member.KindStaticMethod && m.Modifiers().Has(member.Public) &&
			len(m.Params()) == 0 && m.Return().Equal(owner.Type) {
			out = append(out, &Candidate{Member: m, Positions: []int{}, Producer: ProducerFactoryMethod})
		}
	}
	return out
}

// StaticInstances returns candidates for public static fields holding an
// instance of the owner type.
func StaticInstances(owner *member.Class) []*Candidate {
	var out []*Candidate
	for _, f := range owner.Fields {
		if f.Modifiers().Has(member.Public|member.Static) && f.Return().Equal(owner.Type) {
			out = append(out, &Candidate{Member: f, Positions: []int{}, Producer: ProducerStaticField})
		}
	}
	return out
}

func placeholder(producer Producer) *Candidate {
	return &Candidate{Member: member.NoOp(), Positions: []int{}, Producer: producer}
}
