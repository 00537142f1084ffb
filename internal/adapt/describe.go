package adapt

import (
	"errors"
	"fmt"

	"arena/internal/member"
	"arena/internal/signature"
)

// ErrStaleBinding means a stored binding no longer fits the specification or
// the class it was recorded for.
var ErrStaleBinding = errors.New("stale binding")

// Binding describes how one required signature is served.
type Binding struct {
	Role       string            `json:"role"` // constructor | method
	Index      int               `json:"index"`
	Signature  string            `json:"signature"`
	Member     string            `json:"member,omitempty"`
	Positions  []int             `json:"positions,omitempty"`
	Strategy   string            `json:"strategy,omitempty"`
	Producer   string            `json:"producer,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	Alternates int               `json:"alternates"`
	Error      string            `json:"error,omitempty"`
}

// Describe resolves every index of a and reports the bindings.
func Describe(a *AdaptedImplementation) []Binding {
	var out []Binding
	for i, sig := range a.Spec.Constructors {
		c, err := a.Initializer(i)
		out = append(out, binding("constructor", i, sig.String(), c, err, len(a.ConstructorCandidates(i))))
	}
	for i, sig := range a.Spec.Methods {
		c, err := a.Method(i)
		out = append(out, binding("method", i, sig.String(), c, err, len(a.Candidates(i))))
	}
	return out
}

func binding(role string, index int, sig string, c *Candidate, err error, total int) Binding {
	b := Binding{Role: role, Index: index, Signature: sig}
	if total > 0 {
		b.Alternates = total - 1
	}
	if err != nil {
		b.Error = err.Error()
		return b
	}
	b.Member = member.Describe(c.Member)
	b.Positions = c.Positions
	b.Strategy = c.StrategyName()
	b.Producer = string(c.Producer)
	if c.Strategy != nil {
		b.Extra = c.Strategy.Serialize(c)
	}
	return b
}

// Restore rebuilds a candidate from a serialized binding without matching.
func Restore(e *Engine, class *member.Class, m member.Member, positions []int, strategy string, extra map[string]string) (*Candidate, error) {
	s, ok := e.Strategy(strategy)
	if !ok {
		return nil, ErrUnknownStrategy{Name: strategy}
	}
	c := &Candidate{Member: m, Positions: positions, Strategy: s}
	if err := s.Deserialize(c, class, extra); err != nil {
		return nil, err
	}
	return c, nil
}

// ErrUnknownStrategy is returned when a serialized strategy name is not configured.
type ErrUnknownStrategy struct{ Name string }

func (e ErrUnknownStrategy) Error() string { return "unknown adaptation strategy: " + e.Name }

// Replay rebuilds an adaptation of class from stored bindings without running
// matching. Indexes whose binding recorded an error are left without
// candidates and resolve as they would for a class with no match.
func (e *Engine) Replay(spec *signature.InterfaceSpecification, class *member.Class, id string, bindings []Binding, opts ...Option) (*AdaptedImplementation, error) {
	spec = spec.WithDefaultConstructor()
	ctors := make([][]*Candidate, len(spec.Constructors))
	methods := make([][]*Candidate, len(spec.Methods))

	for _, b := range bindings {
		var slots [][]*Candidate
		var sigs []signature.Signature
		switch b.Role {
		case "constructor":
			slots, sigs = ctors, spec.Constructors
		case "method":
			slots, sigs = methods, spec.Methods
		default:
			return nil, fmt.Errorf("%w: unknown role %q", ErrStaleBinding, b.Role)
		}
		if b.Index < 0 || b.Index >= len(sigs) || sigs[b.Index].String() != b.Signature {
			return nil, fmt.Errorf("%w: %s %d %s", ErrStaleBinding, b.Role, b.Index, b.Signature)
		}
		if b.Error != "" {
			continue
		}
		c, err := e.restoreBinding(class, b)
		if err != nil {
			return nil, fmt.Errorf("failed to restore %s %d: %w", b.Role, b.Index, err)
		}
		slots[b.Index] = []*Candidate{c}
	}
	return newAdapted(id, class, spec, ctors, methods, opts...), nil
}

func (e *Engine) restoreBinding(class *member.Class, b Binding) (*Candidate, error) {
	producer := Producer(b.Producer)
	switch producer {
	case ProducerPlaceholder, ProducerStaticInit:
		return placeholder(producer), nil
	}

	m, ok := findMember(class, b.Member)
	if !ok {
		return nil, fmt.Errorf("%w: member %s not found on %s", ErrStaleBinding, b.Member, class.Name)
	}
	if producer != ProducerNone {
		return &Candidate{Member: m, Positions: []int{}, Producer: producer}, nil
	}
	positions := b.Positions
	if positions == nil {
		positions = []int{}
	}
	return Restore(e, class, m, positions, b.Strategy, b.Extra)
}

func findMember(class *member.Class, desc string) (member.Member, bool) {
	for _, list := range [][]member.Member{class.Constructors, class.Methods, class.Fields} {
		for _, m := range list {
			if member.Describe(m) == desc {
				return m, true
			}
		}
	}
	return nil, false
}
