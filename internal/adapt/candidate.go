package adapt

import (
	"strconv"
	"strings"

	"arena/internal/member"
	"arena/internal/typesys"
)

// Producer tags how a constructor-role candidate obtains its instance.
type Producer string

const (
	ProducerNone          Producer = ""
	ProducerFactoryMethod Producer = "factory_method"
	ProducerStaticField   Producer = "static_field"
	ProducerStaticInit    Producer = "static_init"
	ProducerPlaceholder   Producer = "noop"
)

// Keys of Candidate.Extra.
const (
	ExtraParamTypes    = "param_types"    // []typesys.Type in member order
	ExtraReturnType    = "return_type"    // typesys.Type
	ExtraMutableIndex  = "mutable_index"  // int, member parameter slot
	ExtraOverfitPos    = "overfit_pos"    // []int, member parameter slots
	ExtraOverfitFields = "overfit_fields" // []member.Member, one per overfit slot
)

// Candidate is a proposed binding of a member to a required signature.
type Candidate struct {
	Member member.Member
	// Positions[j] is the required argument feeding member parameter j.
	Positions []int
	Strategy  Strategy
	Producer  Producer
	Extra     map[string]any
}

// Key identifies the candidate by member identity and positions. Default
// fields filling overfit slots count as part of the positions.
func (c *Candidate) Key() string {
	key := member.ID(c.Member) + "@" + joinInts(c.Positions)
	if fields, ok := c.Extra[ExtraOverfitFields].([]member.Member); ok {
		for _, f := range fields {
			key += "+" + f.Name()
		}
	}
	return key
}

// StrategyName is the name of the producing strategy, or "" for producers.
func (c *Candidate) StrategyName() string {
	if c.Strategy == nil {
		return ""
	}
	return c.Strategy.Name()
}

// IsPlaceholder reports whether the candidate stands in for a missing initializer.
func (c *Candidate) IsPlaceholder() bool {
	return member.IsNoOp(c.Member)
}

// ParamTypes returns the required parameter types recorded for conversion.
func (c *Candidate) ParamTypes() ([]typesys.Type, bool) {
	v, ok := c.Extra[ExtraParamTypes].([]typesys.Type)
	return v, ok
}

// ReturnType returns the required return type recorded for conversion.
func (c *Candidate) ReturnType() (typesys.Type, bool) {
	v, ok := c.Extra[ExtraReturnType].(typesys.Type)
	return v, ok
}

// MutableIndex returns the member slot carrying the mutated value.
func (c *Candidate) MutableIndex() (int, bool) {
	v, ok := c.Extra[ExtraMutableIndex].(int)
	return v, ok
}

// OverfitFields returns the fields supplying trailing default arguments.
func (c *Candidate) OverfitFields() []member.Member {
	v, _ := c.Extra[ExtraOverfitFields].([]member.Member)
	return v
}

func (c *Candidate) setExtra(key string, v any) {
	if c.Extra == nil {
		c.Extra = make(map[string]any)
	}
	c.Extra[key] = v
}

// Arrange reorders inputs given in required order into member order.
func Arrange(positions []int, inputs []any) []any {
	out := make([]any, len(positions))
	for j, p := range positions {
		out[j] = inputs[p]
	}
	return out
}

// Invoke calls the candidate with member-ordered args, applying the strategy
// hooks. It returns the logical result and the args seen by the member after
// pre- and post-processing.
func Invoke(c *Candidate, receiver any, args []any) (any, []any, error) {
	in := args
	if c.Strategy != nil {
		var err error
		if in, err = c.Strategy.PreProcess(c, args); err != nil {
			return nil, args, err
		}
	}
	returned, thrown := c.Member.Invoke(receiver, in)
	if c.Strategy == nil {
		return returned, in, thrown
	}
	out, err := c.Strategy.PostProcess(c, in, returned, thrown)
	return out, in, err
}

// WriteBackIndex reports the member slot whose post-call value must replace
// the caller's variable.
func WriteBackIndex(c *Candidate) (int, bool) {
	if _, ok := c.Strategy.(*MutableValue); !ok {
		return 0, false
	}
	return c.MutableIndex()
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func typeNames(ts []typesys.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return strings.Join(names, ",")
}

func parseTypes(s string) []typesys.Type {
	if s == "" {
		return []typesys.Type{}
	}
	parts := strings.Split(s, ",")
	out := make([]typesys.Type, len(parts))
	for i, p := range parts {
		out[i] = typesys.Parse(p)
	}
	return out
}
