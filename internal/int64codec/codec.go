// Package int64codec stores 64-bit integers inside float64 slots and converts
// them to and from text in bases 2 through 16.
//
// The float64 slot is only a carrier: values are moved with a bit cast
// (ToStorage/FromStorage) and must never be used numerically. The slot
// holding na.Int64 is the missing marker.
package int64codec

import (
	"math"

	"github.com/paveg/csvread/internal/errors"
	"github.com/paveg/csvread/internal/na"
)

const (
	// MinBase is the smallest supported numeric base.
	MinBase = 2
	// MaxBase is the largest supported numeric base.
	MaxBase = 16

	digits = "0123456789abcdef"
)

// ToStorage reinterprets the bits of x as a float64 slot.
func ToStorage(x int64) float64 {
	return math.Float64frombits(uint64(x))
}

// FromStorage recovers the int64 stored in a float64 slot.
func FromStorage(f float64) int64 {
	return int64(math.Float64bits(f))
}

// StorageNA returns the float64 slot holding the missing int64.
func StorageNA() float64 {
	return ToStorage(na.Int64)
}

// IsStorageNA reports whether a float64 slot holds the missing int64.
func IsStorageNA(f float64) bool {
	return FromStorage(f) == na.Int64
}

// ValidBase reports whether base is supported.
func ValidBase(base int) bool {
	return base >= MinBase && base <= MaxBase
}

// Parse decodes text as a signed integer in base. Surrounding spaces and tabs
// are ignored; a "0x"/"0X" prefix is accepted in base 16. The whole text must
// be consumed. ok is false for empty text, syntax errors, overflow and for the
// value reserved as the missing marker.
func Parse(text []byte, base int) (v int64, ok bool) {
	if !ValidBase(base) {
		return na.Int64, false
	}
	text = trimSpace(text)
	if len(text) == 0 {
		return na.Int64, false
	}

	neg := false
	switch text[0] {
	case '-':
		neg = true
		text = text[1:]
	case '+':
		text = text[1:]
	}
	if base == 16 && len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		text = text[2:]
	}
	if len(text) == 0 {
		return na.Int64, false
	}

	// Accumulate the magnitude in uint64 so math.MinInt64 does not overflow
	// before the sign is applied.
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}
	b := uint64(base)
	var acc uint64
	for _, c := range text {
		d := digitValue(c)
		if d >= b {
			return na.Int64, false
		}
		if acc > (limit-d)/b {
			return na.Int64, false
		}
		acc = acc*b + d
	}

	if neg {
		v = -int64(acc) //nolint:gosec // acc <= 1<<63 checked above
	} else {
		v = int64(acc) //nolint:gosec // acc <= MaxInt64 checked above
	}
	if na.IsInt64(v) {
		return na.Int64, false
	}
	return v, true
}

// ParseString is Parse for a string argument.
func ParseString(s string, base int) (int64, bool) {
	return Parse([]byte(s), base)
}

// Format renders x in base using lowercase digits. Negative values can only
// be rendered in base 10.
func Format(x int64, base int) (string, error) {
	var buf [65]byte
	b, err := AppendFormat(buf[:0], x, base)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendFormat appends the text of x in base to dst.
func AppendFormat(dst []byte, x int64, base int) ([]byte, error) {
	if !ValidBase(base) {
		return dst, errors.WithOp(errors.ErrInvalidBase, "FormatInt64")
	}
	if x < 0 && base != 10 {
		return dst, errors.WithOp(errors.ErrNegativeBase, "FormatInt64")
	}
	if x == 0 {
		return append(dst, '0'), nil
	}

	var buf [64]byte
	i := len(buf)
	mag := uint64(x) //nolint:gosec // two's complement magnitude handled below
	if x < 0 {
		mag = -mag
	}
	b := uint64(base)
	for mag > 0 {
		i--
		buf[i] = digits[mag%b]
		mag /= b
	}
	if x < 0 {
		dst = append(dst, '-')
	}
	return append(dst, buf[i:]...), nil
}

func digitValue(c byte) uint64 {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0')
	case c >= 'a' && c <= 'f':
		return uint64(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return uint64(c-'A') + 10
	default:
		return math.MaxUint64
	}
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
