package minimize

import (
	"arena/internal/record"
)

// Policy selects what Minimize removes.
type Policy struct {
	// DropFailedSequences removes records whose execution did not complete
	// normally.
	DropFailedSequences bool
	// MinimizeSequences removes records whose concrete sequence repeats an
	// earlier record of the same implementation.
	MinimizeSequences bool
}

// Minimize filters records according to policy, keeping the original order.
func Minimize(records []*record.SequenceExecutionRecord, policy Policy) []*record.SequenceExecutionRecord {
	seen := make(map[string]bool)
	out := make([]*record.SequenceExecutionRecord, 0, len(records))
	for _, r := range records {
		if policy.DropFailedSequences && r.Failed() {
			continue
		}
		if policy.MinimizeSequences {
			key := Shape(r)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, r)
	}
	return out
}

// Shape identifies a record by implementation, adapter and sequence text.
func Shape(r *record.SequenceExecutionRecord) string {
	return r.Implementation + "\x00" + r.AdapterID + "\x00" + r.Sequence.String()
}
