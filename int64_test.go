package csvread_test

import (
	"math"
	"testing"

	"github.com/paveg/csvread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatInt64(t *testing.T) {
	v, ok := csvread.ParseInt64("7fffffffffffffff", 16)
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), v)

	_, ok = csvread.ParseInt64("-9223372036854775808", 10)
	assert.False(t, ok, "the NA marker never parses")

	s, err := csvread.FormatInt64(255, 2)
	require.NoError(t, err)
	assert.Equal(t, "11111111", s)

	_, err = csvread.FormatInt64(-1, 16)
	require.Error(t, err)
}

func TestInt64VectorHelpers(t *testing.T) {
	a, err := csvread.CharToInt64([]string{"1", "NA", "zz", "9223372036854775807"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, false}, csvread.IsNAInt64(a))

	b := csvread.Int32ToInt64([]int32{1, 2, 3, 1})
	sum, err := csvread.AddInt64(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "NA", "NA", "NA"}, csvread.Int64ToChar(sum), "overflow is NA")

	diff, err := csvread.SubInt64(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "NA", "NA", "9223372036854775806"}, csvread.Int64ToChar(diff))

	sum32, err := csvread.AddInt64Int32(b, []int32{10, 20, 30, math.MinInt32})
	require.NoError(t, err)
	assert.Equal(t, []string{"11", "22", "33", "NA"}, csvread.Int64ToChar(sum32))

	_, err = csvread.AddInt64(a, b[:2])
	require.Error(t, err)

	hex, err := csvread.Int64ToHex(csvread.Int32ToInt64([]int32{255, math.MinInt32}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ff", "NA"}, hex)

	_, err = csvread.Int64ToHex(csvread.Int32ToInt64([]int32{1, -1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 2")

	f := csvread.Int64ToFloat64(csvread.Float64ToInt64([]float64{2.9, math.NaN(), -1e300}))
	assert.InDelta(t, 2.0, f[0], 0)
	assert.True(t, math.IsNaN(f[1]))
	assert.True(t, math.IsNaN(f[2]))

	wide, err := csvread.CharToInt64([]string{"7", "99999999999"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int32{7, math.MinInt32}, csvread.Int64ToInt32(wide))

	_, err = csvread.CharToInt64([]string{"1"}, 17)
	require.Error(t, err)
}
