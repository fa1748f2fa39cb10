package csvread

import (
	"fmt"

	"github.com/paveg/csvread/internal/int64codec"
	"github.com/paveg/csvread/internal/na"
	"github.com/paveg/csvread/internal/series"
)

// NAInt64 is the value that marks a missing 64-bit integer.
const NAInt64 = na.Int64

// Int64 vectors are exchanged in their float64 slot form: each element
// carries the bits of an int64 and must not be used as a number. The
// helpers below convert, combine and render such vectors. A missing operand
// yields a missing result, and so does an overflow.

// ParseInt64 parses text in base (2 to 16). ok is false for text that is
// empty, malformed, out of range, or equal to NAInt64.
func ParseInt64(text string, base int) (v int64, ok bool) {
	return int64codec.ParseString(text, base)
}

// FormatInt64 renders x in base. Negative numbers can only be rendered in
// base 10.
func FormatInt64(x int64, base int) (string, error) {
	return int64codec.Format(x, base)
}

// CharToInt64 parses texts in base into slots; "NA" and unparsable texts
// become missing.
func CharToInt64(texts []string, base int) ([]float64, error) {
	return int64codec.CharToInt64(texts, base)
}

// Int64ToChar renders slots in base 10, missing as "NA".
func Int64ToChar(x []float64) []string {
	return int64codec.Int64ToChar(x)
}

// Int64ToHex renders slots in base 16, missing as "NA". A negative element
// is an error naming its 1-based position.
func Int64ToHex(x []float64) ([]string, error) {
	return int64codec.Int64ToHex(x)
}

// AddInt64 returns a + b elementwise. The lengths must match.
func AddInt64(a, b []float64) ([]float64, error) {
	return int64codec.AddInt64Int64(a, b)
}

// AddInt64Int32 returns a + b elementwise for a 32-bit right operand.
func AddInt64Int32(a []float64, b []int32) ([]float64, error) {
	return int64codec.AddInt64Int32(a, b)
}

// SubInt64 returns a - b elementwise. The lengths must match.
func SubInt64(a, b []float64) ([]float64, error) {
	return int64codec.SubInt64Int64(a, b)
}

// Int32ToInt64 widens a 32-bit column into slots.
func Int32ToInt64(xs []int32) []float64 {
	return int64codec.Int32ToInt64(xs)
}

// Float64ToInt64 truncates doubles into slots; NaN and out-of-range values
// become missing.
func Float64ToInt64(xs []float64) []float64 {
	return int64codec.Float64ToInt64(xs)
}

// Int64ToFloat64 converts slots to doubles.
func Int64ToFloat64(x []float64) []float64 {
	return int64codec.Int64ToFloat64(x)
}

// Int64ToInt32 narrows slots; values outside the int32 range become missing.
func Int64ToInt32(x []float64) []int32 {
	return int64codec.Int64ToInt32(x)
}

// IsNAInt64 reports which slots are missing.
func IsNAInt64(x []float64) []bool {
	return int64codec.IsNA(x)
}

// Int64Slots copies the int64 column name of df into slots.
func (d *DataFrame) Int64Slots(name string) ([]float64, error) {
	col, ok := d.df.Column(name)
	if !ok {
		return nil, fmt.Errorf("no column %s", name)
	}
	s, ok := col.(*series.Series)
	if !ok {
		return nil, fmt.Errorf("column %s is not an Arrow series", name)
	}
	values, err := series.Values[int64](s)
	if err != nil {
		return nil, err
	}
	return int64codec.FromIntegers(values, na.IsInt64), nil
}
