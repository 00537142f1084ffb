package typesys

var widening = map[string][]string{
	"byte":  {"short", "int", "long", "float", "double"},
	"short": {"int", "long", "float", "double"},
	"char":  {"int", "long", "float", "double"},
	"int":   {"long", "float", "double"},
	"long":  {"float", "double"},
	"float": {"double"},
}

// AssignableTo reports whether a value of type from can be passed where to is
// expected. Wrappers are unboxed first, primitives widen, object types follow
// their supertypes and reference arrays are covariant.
func AssignableTo(from, to Type) bool {
	if from.Equal(to) {
		return true
	}
	if from.IsVoid() || to.IsVoid() {
		return false
	}

	from, to = Unbox(from), Unbox(to)
	if from.Equal(to) {
		return true
	}

	switch {
	case from.Kind == KindPrimitive && to.Kind == KindPrimitive:
		return widens(from.Name, to.Name)
	case from.Kind == KindPrimitive:
		// boxed into a reference
		return to.Equal(Object)
	case to.Kind == KindPrimitive:
		return false
	}

	if to.Equal(Object) {
		return true
	}
	if from.Kind == KindArray && to.Kind == KindArray {
		fe, te := *from.Elem, *to.Elem
		if fe.Kind == KindPrimitive || te.Kind == KindPrimitive {
			return fe.Equal(te)
		}
		return AssignableTo(fe, te)
	}
	if to.Kind == KindList {
		return IsListLike(from)
	}
	for _, s := range from.Supers {
		if s == to.Name {
			return true
		}
	}
	return false
}

// AllAssignable checks AssignableTo pairwise. Lengths must match.
func AllAssignable(from, to []Type) bool {
	if len(from) != len(to) {
		return false
	}
	for i := range from {
		if !AssignableTo(from[i], to[i]) {
			return false
		}
	}
	return true
}

// ReturnAssignable reports whether a member returning from can satisfy a
// contract returning to. A void contract discards any result; a void member
// never satisfies a contract that expects a value.
func ReturnAssignable(from, to Type) bool {
	if to.IsVoid() {
		return true
	}
	return AssignableTo(from, to)
}

func widens(from, to string) bool {
	for _, w := range widening[from] {
		if w == to {
			return true
		}
	}
	return false
}
