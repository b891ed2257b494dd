package aqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPM25KnownValues(t *testing.T) {
	v, err := FromPM25(0.0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v.Get())

	v, err = FromPM25(55.549)
	require.NoError(t, err)
	assert.Equal(t, uint16(151), v.Get())

	v, err = FromPM25(500.4)
	require.NoError(t, err)
	assert.Equal(t, uint16(500), v.Get())

	v, err = FromPM25(55.56)
	require.NoError(t, err)
	assert.Equal(t, int32(151052), v.GetAsDEBS())
}

func TestPM10KnownValues(t *testing.T) {
	v, err := FromPM10(155.049)
	require.NoError(t, err)
	assert.Equal(t, uint16(101), v.Get())

	v, err = FromPM10(604.49)
	require.NoError(t, err)
	assert.Equal(t, uint16(500), v.Get())
}

func TestPM25RoundTripOnGrid(t *testing.T) {
	for i := 0; i <= 5004; i++ {
		c := float32(i) / 10.0
		v, err := FromPM25(c)
		require.NoErrorf(t, err, "pm25 %v should be in scale", c)
		assert.LessOrEqual(t, v.Get(), uint16(500))
	}
}

func TestPM10RoundTripOnGrid(t *testing.T) {
	for i := 0; i <= 6040; i++ {
		c := float32(i) / 10.0
		v, err := FromPM10(c)
		require.NoErrorf(t, err, "pm10 %v should be in scale", c)
		assert.LessOrEqual(t, v.Get(), uint16(500))
	}
}

func TestOutOfScale(t *testing.T) {
	_, err := FromPM25(500.5)
	require.Error(t, err)
	var outOfScale *ErrOutOfScale
	assert.ErrorAs(t, err, &outOfScale)

	_, err = FromPM10(604.51)
	require.Error(t, err)
}
