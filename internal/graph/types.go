package graph

type RelationKind string

const (
	RelationConsumes RelationKind = "consumes"
	RelationReceiver RelationKind = "receiver"
	RelationAliases  RelationKind = "aliases"
	RelationElement  RelationKind = "element"
)

type ProblemReason string

const (
	ReasonMissingInput  ProblemReason = "missing_input"
	ReasonForwardInput  ProblemReason = "forward_input"
	ReasonDuplicateSlot ProblemReason = "duplicate_position"
	ReasonCycle         ProblemReason = "cycle"
	ReasonMissingMember ProblemReason = "missing_member"
)

// Problem is a structural defect of a statement graph.
type Problem struct {
	Position int           `json:"position"`
	Input    int           `json:"input,omitempty"`
	Reason   ProblemReason `json:"reason"`
}
