package sheet

import (
	"errors"
	"fmt"
	"os"

	"arena/internal/graph"
	"arena/internal/member"
	"arena/internal/signature"
	"arena/internal/statement"
	"arena/internal/typesys"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSheet marks sheets that fail schema or structural validation.
var ErrInvalidSheet = errors.New("invalid sequence sheet")

// Sheet is a required interface together with the sequences exercising it.
type Sheet struct {
	Interface *signature.InterfaceSpecification
	Sequences []*statement.SequenceSpecification
}

type sheetDoc struct {
	Interface interfaceDoc  `yaml:"interface"`
	Sequences []sequenceDoc `yaml:"sequences"`
}

type interfaceDoc struct {
	Class        string           `yaml:"class"`
	Constructors []constructorDoc `yaml:"constructors"`
	Methods      []methodDoc      `yaml:"methods"`
}

type constructorDoc struct {
	Params []string `yaml:"params"`
}

type methodDoc struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params"`
	Returns string   `yaml:"returns"`
	Static  bool     `yaml:"static"`
}

type sequenceDoc struct {
	Name       string         `yaml:"name"`
	Statements []statementDoc `yaml:"statements"`
	Oracle     []expectedDoc  `yaml:"oracle"`
}

type statementDoc struct {
	Pos      *int     `yaml:"pos"`
	Kind     string   `yaml:"kind"`
	Type     string   `yaml:"type"`
	Value    any      `yaml:"value"`
	Null     bool     `yaml:"null"`
	Code     string   `yaml:"code"`
	Alias    *int     `yaml:"alias"`
	CUT      bool     `yaml:"cut"`
	Class    string   `yaml:"class"`
	Name     string   `yaml:"name"`
	Params   []string `yaml:"params"`
	Returns  string   `yaml:"returns"`
	Static   bool     `yaml:"static"`
	Receiver *int     `yaml:"receiver"`
	Args     []int    `yaml:"args"`
	Array    *int     `yaml:"array"`
	Index    int      `yaml:"index"`
	Element  *int     `yaml:"element"`
}

type expectedDoc struct {
	Pos   int    `yaml:"pos"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
	Null  bool   `yaml:"null"`
	Code  string `yaml:"code"`
}

// Load reads and parses the sheet at path.
func Load(path string, registry *member.Registry) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", path, err)
	}
	s, err := Parse(data, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet %s: %w", path, err)
	}
	return s, nil
}

// Parse validates data against the sheet schema and builds the interface and
// sequences. Calls outside the class under test are resolved in registry.
func Parse(data []byte, registry *member.Registry) (*Sheet, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var doc sheetDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}

	spec := buildInterface(doc.Interface)
	out := &Sheet{Interface: spec}
	for _, sd := range doc.Sequences {
		seq, err := buildSequence(sd, spec, registry)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", sd.Name, err)
		}
		if err := graph.FromSpec(seq).Validate(); err != nil {
			return nil, fmt.Errorf("%w: sequence %s: %v", ErrInvalidSheet, sd.Name, err)
		}
		out.Sequences = append(out.Sequences, seq)
	}
	return out, nil
}

func buildInterface(d interfaceDoc) *signature.InterfaceSpecification {
	owner := typesys.Named(d.Class)
	spec := &signature.InterfaceSpecification{ClassName: d.Class}
	for _, c := range d.Constructors {
		spec.Constructors = append(spec.Constructors, signature.NewConstructor(owner, parseTypes(c.Params)...))
	}
	for _, m := range d.Methods {
		sig := signature.New(m.Name, returnType(m.Returns), parseTypes(m.Params)...)
		sig.Static = m.Static
		spec.Methods = append(spec.Methods, sig)
	}
	return spec
}

func parseTypes(names []string) []typesys.Type {
	out := make([]typesys.Type, len(names))
	for i, n := range names {
		out[i] = typesys.Parse(n)
	}
	return out
}

func returnType(name string) typesys.Type {
	if name == "" {
		return typesys.Void
	}
	return typesys.Parse(name)
}

// buildSequence creates every statement first and links inputs afterwards, so
// references to later positions reach graph validation instead of failing here.
func buildSequence(d sequenceDoc, spec *signature.InterfaceSpecification, registry *member.Registry) (*statement.SequenceSpecification, error) {
	byPos := make(map[int]statement.Statement, len(d.Statements))
	seq := &statement.SequenceSpecification{Name: d.Name}

	for i, sd := range d.Statements {
		pos := i
		if sd.Pos != nil {
			pos = *sd.Pos
		}
		if _, dup := byPos[pos]; dup {
			return nil, fmt.Errorf("%w: duplicate position %d", ErrInvalidSheet, pos)
		}
		st, err := newStatement(pos, sd, spec, registry)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", pos, err)
		}
		byPos[pos] = st
		seq.Statements = append(seq.Statements, st)
	}

	ref := func(pos int) (statement.Statement, error) {
		st, ok := byPos[pos]
		if !ok {
			return nil, fmt.Errorf("%w: reference to unknown position %d", ErrInvalidSheet, pos)
		}
		return st, nil
	}
	refs := func(list []int) ([]statement.Statement, error) {
		out := make([]statement.Statement, len(list))
		for i, p := range list {
			st, err := ref(p)
			if err != nil {
				return nil, err
			}
			out[i] = st
		}
		return out, nil
	}

	for i, sd := range d.Statements {
		var err error
		switch st := seq.Statements[i].(type) {
		case *statement.Value:
			if sd.Alias != nil {
				st.AliasOf, err = ref(*sd.Alias)
			}
		case *statement.ConstructorCall:
			st.Args, err = refs(sd.Args)
		case *statement.MethodCall:
			if sd.Receiver != nil {
				if st.Receiver, err = ref(*sd.Receiver); err != nil {
					break
				}
			}
			st.Args, err = refs(sd.Args)
		case *statement.ArraySet:
			if st.Array, err = ref(*sd.Array); err != nil {
				break
			}
			st.Value, err = ref(*sd.Element)
		}
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", seq.Statements[i].Position(), err)
		}
	}

	if len(d.Oracle) > 0 {
		seq.Oracle = statement.NewOracle()
		for _, e := range d.Oracle {
			v, err := newValue(e.Pos, e.Type, e.Value, e.Null, e.Code)
			if err != nil {
				return nil, fmt.Errorf("oracle %d: %w", e.Pos, err)
			}
			seq.Oracle.Expect(e.Pos, v)
		}
	}
	return seq, nil
}

func newStatement(pos int, d statementDoc, spec *signature.InterfaceSpecification, registry *member.Registry) (statement.Statement, error) {
	switch d.Kind {
	case "value":
		return newValue(pos, d.Type, d.Value, d.Null, d.Code)
	case "construct":
		return newConstructor(pos, d, spec, registry)
	case "call":
		return newMethod(pos, d, registry)
	case "array_set":
		return &statement.ArraySet{Pos: pos, Index: d.Index}, nil
	}
	return nil, fmt.Errorf("%w: unknown statement kind %q", ErrInvalidSheet, d.Kind)
}

func newValue(pos int, typ string, value any, null bool, code string) (*statement.Value, error) {
	t := typesys.Parse(typ)
	v := &statement.Value{Pos: pos, Type: t, Null: null, Code: code}
	if null {
		return v, nil
	}
	if value == nil && code != "" {
		parsed, err := ParseCode(code)
		if err != nil {
			return nil, err
		}
		value = parsed
	}
	v.Value = value
	if t.Kind == typesys.KindArray {
		v.Array = true
		if value != nil {
			if _, ok := value.([]any); !ok {
				return nil, fmt.Errorf("%w: %s value must be a list", ErrInvalidSheet, t.Name)
			}
		}
	}
	return v, nil
}

func newConstructor(pos int, d statementDoc, spec *signature.InterfaceSpecification, registry *member.Registry) (*statement.ConstructorCall, error) {
	params := parseTypes(d.Params)
	if d.CUT {
		return &statement.ConstructorCall{
			Pos:            pos,
			Signature:      signature.NewConstructor(typesys.Named(spec.ClassName), params...),
			ClassUnderTest: true,
		}, nil
	}

	class, err := lookupClass(registry, d.Class)
	if err != nil {
		return nil, err
	}
	sig := signature.NewConstructor(class.Type, params...)
	for _, c := range class.Constructors {
		if sameTypes(c.Params(), params) {
			return &statement.ConstructorCall{Pos: pos, Signature: sig, Member: c}, nil
		}
	}
	return nil, fmt.Errorf("%w: no constructor %s on %s", ErrInvalidSheet, sig, class.Name)
}

func newMethod(pos int, d statementDoc, registry *member.Registry) (*statement.MethodCall, error) {
	params := parseTypes(d.Params)
	sig := signature.New(d.Name, returnType(d.Returns), params...)
	sig.Static = d.Static
	if d.CUT {
		return &statement.MethodCall{Pos: pos, Signature: sig, ClassUnderTest: true}, nil
	}

	class, err := lookupClass(registry, d.Class)
	if err != nil {
		return nil, err
	}
	for _, m := range class.Methods {
		if m.Name() == d.Name && sameTypes(m.Params(), params) {
			sig.Return = m.Return()
			sig.Static = member.IsStatic(m)
			return &statement.MethodCall{Pos: pos, Signature: sig, Member: m}, nil
		}
	}
	if len(params) == 0 {
		if f, ok := class.Field(d.Name); ok {
			sig.Return = f.Return()
			sig.Static = true
			return &statement.MethodCall{Pos: pos, Signature: sig, Member: f}, nil
		}
	}
	return nil, fmt.Errorf("%w: no method %s on %s", ErrInvalidSheet, sig, class.Name)
}

func lookupClass(registry *member.Registry, name string) (*member.Class, error) {
	if registry == nil || name == "" {
		return nil, fmt.Errorf("%w: calls outside the class under test need a registered class", ErrInvalidSheet)
	}
	class, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown class %q", ErrInvalidSheet, name)
	}
	return class, nil
}

func sameTypes(a, b []typesys.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
