package na_test

import (
	"math"
	"testing"

	"github.com/paveg/csvread/internal/na"
	"github.com/stretchr/testify/assert"
)

func TestSentinels(t *testing.T) {
	assert.True(t, na.IsInt32(math.MinInt32))
	assert.False(t, na.IsInt32(0))
	assert.True(t, na.IsInt64(math.MinInt64))
	assert.False(t, na.IsInt64(math.MaxInt64))

	f := na.Float64()
	assert.True(t, na.IsFloat64(f))
	assert.True(t, na.IsFloat64Marker(f))
	assert.True(t, na.IsFloat64(math.NaN()))
	assert.False(t, na.IsFloat64Marker(math.NaN()))
	assert.False(t, na.IsFloat64(1.5))
}
