package graph

func (g *Graph) ProblemCounts() map[ProblemReason]int {
	counts := make(map[ProblemReason]int)
	if g == nil {
		return counts
	}
	for _, p := range g.Problems {
		counts[p.Reason]++
	}
	return counts
}
