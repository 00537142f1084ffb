package adapt

import (
	"encoding/json"
	"errors"
	"testing"

	"arena/internal/member"
	"arena/internal/signature"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stored mimics bindings read back from the cell store.
func stored(t *testing.T, bindings []Binding) []Binding {
	t.Helper()
	data, err := json.Marshal(bindings)
	require.NoError(t, err)
	var out []Binding
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestReplay_Conversion(t *testing.T) {
	class := stringCodec()
	spec := &signature.InterfaceSpecification{
		ClassName:    "Codec",
		Constructors: []signature.Signature{signature.NewConstructor(typesys.Named("Codec"))},
		Methods:      []signature.Signature{signature.New("encode", charsT, charsT)},
	}
	e := newEngine()
	bindings := stored(t, Describe(e.Adapt(spec, class)))

	impl, err := e.Replay(spec, class, "StringCodec#0", bindings)
	require.NoError(t, err)
	assert.Equal(t, "StringCodec#0", impl.ID)

	ctor, err := impl.Initializer(0)
	require.NoError(t, err)
	assert.Equal(t, member.KindConstructor, ctor.Member.Kind())

	m, err := impl.Method(0)
	require.NoError(t, err)
	assert.Equal(t, "conversion", m.StrategyName())
	assert.Equal(t, []int{0}, m.Positions)

	out, _, err := Invoke(m, &codec{}, []any{[]rune("a")})
	require.NoError(t, err)
	assert.Equal(t, []rune("YQ=="), out)
}

func TestReplay_DefaultsAndStaticInit(t *testing.T) {
	class := padder()
	spec := &signature.InterfaceSpecification{
		ClassName: "Padder",
		Methods:   []signature.Signature{signature.New("pad", typesys.String, typesys.String)},
	}
	e := newEngine()
	orig, err := e.Adapt(spec, class).Method(0)
	require.NoError(t, err)
	require.Equal(t, "defaults", orig.StrategyName())

	impl, err := e.Replay(spec, class, "Padder#0", stored(t, Describe(e.Adapt(spec, class))))
	require.NoError(t, err)

	ctor, err := impl.Initializer(0)
	require.NoError(t, err)
	assert.True(t, ctor.IsPlaceholder())
	assert.Equal(t, ProducerStaticInit, ctor.Producer)

	m, err := impl.Method(0)
	require.NoError(t, err)
	require.Len(t, m.OverfitFields(), 1)
	assert.Equal(t, orig.OverfitFields()[0].Name(), m.OverfitFields()[0].Name())

	want, _, err := Invoke(orig, nil, []any{"a"})
	require.NoError(t, err)
	out, _, err := Invoke(m, nil, []any{"a"})
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestReplay_StaleBindings(t *testing.T) {
	class := stringCodec()
	spec := &signature.InterfaceSpecification{
		ClassName: "Codec",
		Methods:   []signature.Signature{signature.New("encode", typesys.String, typesys.String)},
	}
	e := newEngine()
	fresh := func() []Binding { return stored(t, Describe(e.Adapt(spec, class))) }

	renamed := fresh()
	renamed[len(renamed)-1].Signature = "decode(String):String"
	_, err := e.Replay(spec, class, "x", renamed)
	assert.True(t, errors.Is(err, ErrStaleBinding))

	gone := fresh()
	gone[len(gone)-1].Member = "StringCodec.decode(String):String"
	_, err = e.Replay(spec, class, "x", gone)
	assert.True(t, errors.Is(err, ErrStaleBinding))
}
