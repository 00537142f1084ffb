package adapt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"arena/internal/member"
	"arena/internal/signature"
)

var (
	// ErrNoMember means no candidate exists for a required signature.
	ErrNoMember = errors.New("no member found")
	// ErrInaccessible means every candidate for a required signature is hidden.
	ErrInaccessible = errors.New("member inaccessible")
)

// AdaptedImplementation binds every required constructor and method of a
// specification to a candidate of one class. Each index keeps its primary
// candidate followed by alternates; resolutions are cached once per index.
type AdaptedImplementation struct {
	ID    string
	Class *member.Class
	Spec  *signature.InterfaceSpecification

	constructors [][]*Candidate
	methods      [][]*Candidate

	logger           *slog.Logger
	allowPlaceholder bool

	mu              sync.Mutex
	resolvedCtors   map[int]*Candidate
	resolvedMethods map[int]*Candidate
}

type Option func(*AdaptedImplementation)

func WithLogger(l *slog.Logger) Option {
	return func(a *AdaptedImplementation) { a.logger = l }
}

// WithoutPlaceholder makes unresolvable constructors fatal instead of
// substituting the no-op placeholder.
func WithoutPlaceholder() Option {
	return func(a *AdaptedImplementation) { a.allowPlaceholder = false }
}

func newAdapted(id string, class *member.Class, spec *signature.InterfaceSpecification, ctors, methods [][]*Candidate, opts ...Option) *AdaptedImplementation {
	a := &AdaptedImplementation{
		ID:               id,
		Class:            class,
		Spec:             spec,
		constructors:     ctors,
		methods:          methods,
		logger:           slog.Default(),
		allowPlaceholder: true,
		resolvedCtors:    make(map[int]*Candidate),
		resolvedMethods:  make(map[int]*Candidate),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Candidates returns the primary and alternate candidates of a method index.
func (a *AdaptedImplementation) Candidates(index int) []*Candidate {
	if index < 0 || index >= len(a.methods) {
		return nil
	}
	return a.methods[index]
}

// ConstructorCandidates returns the candidates of a constructor index.
func (a *AdaptedImplementation) ConstructorCandidates(index int) []*Candidate {
	if index < 0 || index >= len(a.constructors) {
		return nil
	}
	return a.constructors[index]
}

// Initializer resolves the constructor at index. Order: first visible
// candidate, producers (factory method, static instance) for zero-argument
// contracts, the class default constructor, then a placeholder.
func (a *AdaptedImplementation) Initializer(index int) (*Candidate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.resolvedCtors[index]; ok {
		return c, nil
	}
	if index < 0 || index >= len(a.Spec.Constructors) {
		return nil, fmt.Errorf("%w: constructor index %d", ErrNoMember, index)
	}

	sig := a.Spec.Constructors[index]
	c := a.firstVisible(sig, a.constructors[index])
	if c == nil && len(sig.Params) == 0 {
		c = a.firstVisible(sig, append(FactoryMethods(a.Class), StaticInstances(a.Class)...))
	}
	if c == nil {
		if m, ok := a.Class.DefaultConstructor(); ok {
			c = &Candidate{Member: m, Positions: []int{}, Strategy: NewDirect()}
		}
	}
	if c == nil {
		if !a.allowPlaceholder {
			return nil, fmt.Errorf("%w: %s on %s", ErrNoMember, sig, a.Class.Name)
		}
		c = a.placeholder()
		a.logger.Warn("no initializer resolved, using placeholder",
			"class", a.Class.Name, "signature", sig.String(), "producer", string(c.Producer))
	}

	a.resolvedCtors[index] = c
	return c, nil
}

// Method resolves the method at index. Inaccessible methods without a visible
// alternate are fatal.
func (a *AdaptedImplementation) Method(index int) (*Candidate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.resolvedMethods[index]; ok {
		return c, nil
	}
	if index < 0 || index >= len(a.Spec.Methods) {
		return nil, fmt.Errorf("%w: method index %d", ErrNoMember, index)
	}

	sig := a.Spec.Methods[index]
	candidates := a.methods[index]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoMember, sig, a.Class.Name)
	}
	c := a.firstVisible(sig, candidates)
	if c == nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrInaccessible, sig, a.Class.Name)
	}

	a.resolvedMethods[index] = c
	return c, nil
}

// ReceiverInitializer resolves an initializer usable without arguments, for
// synthesizing a receiver the sequence never constructed.
func (a *AdaptedImplementation) ReceiverInitializer() (*Candidate, error) {
	for i, sig := range a.Spec.Constructors {
		if len(sig.Params) == 0 {
			return a.Initializer(i)
		}
	}
	if m, ok := a.Class.DefaultConstructor(); ok {
		return &Candidate{Member: m, Positions: []int{}, Strategy: NewDirect()}, nil
	}
	if !a.allowPlaceholder {
		return nil, fmt.Errorf("%w: no zero-argument initializer on %s", ErrNoMember, a.Class.Name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.placeholder(), nil
}

// StaticMismatch reports whether the method at index is required to be static
// but resolved to an instance member.
func (a *AdaptedImplementation) StaticMismatch(index int) bool {
	c, err := a.Method(index)
	if err != nil {
		return false
	}
	return a.Spec.Methods[index].Static && !member.IsStatic(c.Member)
}

func (a *AdaptedImplementation) firstVisible(sig signature.Signature, candidates []*Candidate) *Candidate {
	for i, c := range candidates {
		if c.Member.Modifiers().Has(member.Public) {
			return c
		}
		a.logger.Warn("inaccessible member",
			"class", a.Class.Name,
			"signature", sig.String(),
			"member", member.Describe(c.Member),
			"alternates", len(candidates)-i-1)
	}
	return nil
}

func (a *AdaptedImplementation) placeholder() *Candidate {
	allStatic := len(a.Spec.Methods) > 0
	for i := range a.Spec.Methods {
		c := a.primary(i)
		if c == nil || !member.IsStatic(c.Member) {
			allStatic = false
			break
		}
	}
	if allStatic {
		return placeholder(ProducerStaticInit)
	}
	return placeholder(ProducerPlaceholder)
}

func (a *AdaptedImplementation) primary(index int) *Candidate {
	if c, ok := a.resolvedMethods[index]; ok {
		return c
	}
	for _, c := range a.methods[index] {
		if c.Member.Modifiers().Has(member.Public) {
			return c
		}
	}
	return nil
}
