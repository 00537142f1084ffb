package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_Scalars(t *testing.T) {
	v, err := Coerce(3, Long)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = Coerce("a", Char)
	require.NoError(t, err)
	assert.Equal(t, 'a', v)

	v, err = Coerce(1.5, Float)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v)

	_, err = Coerce(nil, Int)
	assert.Error(t, err)

	v, err = Coerce(nil, IntWrapper)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Coerce("ab", Char)
	assert.Error(t, err)
}

func TestCoerce_Arrays(t *testing.T) {
	v, err := Coerce([]any{1, 2, 3}, ArrayOf(Int))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, v)

	v, err = Coerce("ab", ArrayOf(Char))
	require.NoError(t, err)
	assert.Equal(t, []rune{'a', 'b'}, v)

	v, err = Coerce([]any{[]any{1}, []any{2, 3}}, ArrayOf(ArrayOf(Short)))
	require.NoError(t, err)
	assert.Equal(t, [][]int16{{1}, {2, 3}}, v)

	v, err = Coerce([]any{1, nil}, ArrayOf(IntWrapper))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), nil}, v)

	_, err = Coerce([]any{1, nil}, ArrayOf(Int))
	assert.Error(t, err)
}

func TestSetElement(t *testing.T) {
	arr := []int64{0, 0}
	require.NoError(t, SetElement(arr, 1, int32(7)))
	assert.Equal(t, []int64{0, 7}, arr)

	assert.Error(t, SetElement(arr, 2, int32(1)))
	assert.Error(t, SetElement(arr, 0, "x"))
}

func TestZero(t *testing.T) {
	assert.Equal(t, int32(0), Zero(Int))
	assert.Equal(t, false, Zero(Boolean))
	assert.Nil(t, Zero(String))
}
