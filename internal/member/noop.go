package member

import "arena/internal/typesys"

// NoOpType is the owner of the placeholder constructor.
var NoOpType = typesys.Named("NoOp")

// NoOpInstance is the value produced by the placeholder constructor.
type NoOpInstance struct{}

var noop = NewConstructor(NoOpType, Public, nil, func([]any) (any, error) {
	return NoOpInstance{}, nil
})

// NoOp returns the universally available no-argument placeholder constructor.
func NoOp() Member { return noop }

// IsNoOp reports whether m is the placeholder constructor.
func IsNoOp(m Member) bool { return m != nil && m.Owner().Equal(NoOpType) }
