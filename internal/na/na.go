// Package na defines the missing-value sentinels used by every column kind.
//
// Each storage kind reserves one value that legitimate data can never
// produce. Int64 values travel inside float64 slots, so their sentinel is
// defined as an int64 and converted with a bit cast, never numerically.
package na

import "math"

const (
	// Int32 marks a missing 32-bit integer.
	Int32 int32 = math.MinInt32

	// Int64 marks a missing 64-bit integer. Parsers never return it as data.
	Int64 int64 = math.MinInt64

	// float64Bits is a NaN with payload 1954, distinguishable from NaNs
	// produced by arithmetic.
	float64Bits uint64 = 0x7FF00000000007A2

	// Text is the rendering of a missing value in text output.
	Text = "NA"
)

// Float64 returns the missing float64 marker.
func Float64() float64 {
	return math.Float64frombits(float64Bits)
}

// IsInt32 reports whether v is the missing 32-bit integer.
func IsInt32(v int32) bool {
	return v == Int32
}

// IsInt64 reports whether v is the missing 64-bit integer.
func IsInt64(v int64) bool {
	return v == Int64
}

// IsFloat64 reports whether v is missing. Any NaN counts as missing.
func IsFloat64(v float64) bool {
	return math.IsNaN(v)
}

// IsFloat64Marker reports whether v carries exactly the missing marker bits.
func IsFloat64Marker(v float64) bool {
	return math.Float64bits(v) == float64Bits
}
