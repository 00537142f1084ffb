package samples

import (
	"testing"

	"arena/internal/adapt"
	"arena/internal/convert"
	"arena/internal/signature"
	"arena/internal/typesys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := Registry()
	assert.Len(t, reg.All(), 9)
	_, ok := reg.Get("StringCodec")
	assert.True(t, ok)
}

func TestClock_FactoryInitializer(t *testing.T) {
	spec := &signature.InterfaceSpecification{
		ClassName: "Timer",
		Methods:   []signature.Signature{signature.New("tick", typesys.Long, typesys.Long)},
	}
	engine := adapt.NewDefaultEngine(convert.NewDefaultCatalogue(), adapt.DefaultMaxOverfit)
	impl := engine.Adapt(spec, Clock())

	c, err := impl.Initializer(0)
	require.NoError(t, err)
	assert.Equal(t, adapt.ProducerFactoryMethod, c.Producer)
	assert.Equal(t, "now", c.Member.Name())
}
