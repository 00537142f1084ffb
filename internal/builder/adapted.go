package builder

import (
	"fmt"

	"arena/internal/adapt"
	"arena/internal/member"
	"arena/internal/sequence"
	"arena/internal/statement"
	"arena/internal/typesys"
)

func (s *state) emitAdaptedConstructor(c *statement.ConstructorCall) error {
	idx := s.impl.Spec.ConstructorIndex(c.Signature)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnresolvedSignature, c.Signature)
	}
	cand, err := s.impl.Initializer(idx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNoInitializer, c.Signature, err)
	}
	args, err := s.inputs(c.Args)
	if err != nil {
		return err
	}
	v, op, err := s.emitCandidate(cand, args, c.Signature.Return, -1)
	if err != nil {
		return err
	}
	s.bind(c, v, op)
	if s.receiver < 0 && !cand.IsPlaceholder() {
		s.receiver = v
	}
	return nil
}

func (s *state) emitAdaptedMethod(c *statement.MethodCall) error {
	idx := s.impl.Spec.MethodIndex(c.Signature)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnresolvedSignature, c.Signature)
	}
	cand, err := s.impl.Method(idx)
	if err != nil {
		return err
	}
	args, err := s.inputs(c.Args)
	if err != nil {
		return err
	}
	if s.impl.StaticMismatch(idx) {
		s.logger.Warn("static contract bound to instance member, synthesizing receiver",
			"implementation", s.impl.ID, "signature", c.Signature.String(), "member", member.Describe(cand.Member))
	}
	recv := -1
	if !member.IsStatic(cand.Member) {
		if recv, err = s.receiverFor(c, cand.Member.Owner()); err != nil {
			return err
		}
	}
	v, op, err := s.emitCandidate(cand, args, c.Signature.Return, recv)
	if err != nil {
		return err
	}
	s.bind(c, v, op)
	return nil
}

// receiverFor finds an instance of owner for an instance member: the
// statement's own receiver, the first instance built so far, or a freshly
// synthesized one.
func (s *state) receiverFor(c *statement.MethodCall, owner typesys.Type) (int, error) {
	if c.Receiver != nil {
		r, err := s.input(c.Receiver)
		if err != nil {
			return 0, err
		}
		if typesys.AssignableTo(s.typeOf(r), owner) {
			return r, nil
		}
	}
	if s.receiver >= 0 && typesys.AssignableTo(s.typeOf(s.receiver), owner) {
		return s.receiver, nil
	}

	rc, err := s.impl.ReceiverInitializer()
	if err != nil {
		return 0, fmt.Errorf("%w: receiver for %s: %w", ErrNoInitializer, c.Signature, err)
	}
	v, _, err := s.emitCandidate(rc, nil, owner, -1)
	if err != nil {
		return 0, err
	}
	if !rc.IsPlaceholder() {
		s.receiver = v
	}
	return v, nil
}

// emitCandidate emits the call of c with args given in required order. It
// returns the variable carrying the logical result and the variable of the
// call itself.
func (s *state) emitCandidate(c *adapt.Candidate, args []int, ret typesys.Type, recv int) (int, int, error) {
	switch c.Producer {
	case adapt.ProducerPlaceholder, adapt.ProducerStaticInit:
		v := s.append(sequence.Op{Kind: sequence.OpNoOp, Type: member.NoOpType, Member: c.Member, Candidate: c})
		return v, v, nil
	case adapt.ProducerFactoryMethod, adapt.ProducerStaticField:
		v := s.append(sequence.Op{Kind: sequence.OpCall, Type: c.Member.Return(), Member: c.Member, Candidate: c})
		return v, v, nil
	}

	m := c.Member
	margs := make([]int, len(c.Positions))
	for j, p := range c.Positions {
		if p < 0 || p >= len(args) {
			return 0, 0, fmt.Errorf("%w: position %d of %s", ErrUnbuiltInput, p, member.Describe(m))
		}
		margs[j] = args[p]
	}

	isCtor := m.Kind() == member.KindConstructor
	conv, converting := c.Strategy.(adapt.Converting)
	if converting {
		params := m.Params()
		for j := range margs {
			if j >= len(params) {
				break
			}
			from := s.typeOf(margs[j])
			if typesys.AssignableTo(from, params[j]) {
				continue
			}
			v, err := s.emitConversion(conv, margs[j], from, params[j])
			if err != nil {
				return 0, 0, err
			}
			margs[j] = v
		}
	}

	_, direct := c.Strategy.(*adapt.Direct)
	op := sequence.Op{Member: m, Candidate: c, Type: m.Return(), Inputs: margs}
	switch {
	case c.Strategy == nil || direct || converting:
		op.Kind = sequence.OpCall
		if isCtor {
			op.Kind = sequence.OpConstruct
		}
	default:
		op.Kind = sequence.OpAdaptedCall
		if !isCtor {
			op.Type = ret
		}
	}
	if recv >= 0 && !member.IsStatic(m) {
		op.Receiver = true
		op.Inputs = append([]int{recv}, margs...)
	}
	call := s.append(op)

	if converting && !isCtor && !ret.IsZero() && !ret.IsVoid() && !typesys.AssignableTo(m.Return(), ret) {
		v, err := s.emitConversion(conv, call, m.Return(), ret)
		if err != nil {
			return 0, 0, err
		}
		return v, call, nil
	}
	return call, call, nil
}

// emitConversion inserts converter construction, invocation and a cast.
func (s *state) emitConversion(conv adapt.Converting, v int, from, to typesys.Type) (int, error) {
	cv, ok := conv.Converter(from, to)
	if !ok {
		return 0, fmt.Errorf("%w: %s to %s", ErrMissingConverter, from, to)
	}
	k := s.append(sequence.Op{Kind: sequence.OpConverterNew, Type: typesys.Object, Converter: cv})
	out := s.append(sequence.Op{Kind: sequence.OpConverterInvoke, Type: typesys.Object, Converter: cv, From: from, To: to, Inputs: []int{k, v}})
	return s.append(sequence.Op{Kind: sequence.OpCast, Type: to, Inputs: []int{out}}), nil
}
