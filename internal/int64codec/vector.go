package int64codec

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/paveg/csvread/internal/errors"
	"github.com/paveg/csvread/internal/na"
	"github.com/paveg/csvread/internal/validation"
)

// Vector operations work on int64 columns in their float64 slot form. Any NA
// operand yields NA; an arithmetic overflow yields NA as well.

// CharToInt64 parses texts in base. Texts equal to na.Text or failing to
// parse become NA.
func CharToInt64(texts []string, base int) ([]float64, error) {
	if !ValidBase(base) {
		return nil, errors.WithOp(errors.ErrInvalidBase, "CharToInt64")
	}
	out := make([]float64, len(texts))
	for i, s := range texts {
		if s == na.Text {
			out[i] = StorageNA()
			continue
		}
		v, _ := ParseString(s, base)
		out[i] = ToStorage(v)
	}
	return out, nil
}

// Int64ToChar renders every slot in base 10; NA renders as na.Text.
func Int64ToChar(x []float64) []string {
	out := make([]string, len(x))
	for i, f := range x {
		v := FromStorage(f)
		if na.IsInt64(v) {
			out[i] = na.Text
			continue
		}
		// base 10 accepts every non-NA value
		out[i], _ = Format(v, 10)
	}
	return out
}

// Int64ToHex renders every slot in base 16. A negative item is an error that
// names its 1-based position.
func Int64ToHex(x []float64) ([]string, error) {
	return Int64ToBase(x, 16)
}

// Int64ToBase renders every slot in base; NA renders as na.Text.
func Int64ToBase(x []float64, base int) ([]string, error) {
	out := make([]string, len(x))
	for i, f := range x {
		v := FromStorage(f)
		if na.IsInt64(v) {
			out[i] = na.Text
			continue
		}
		s, err := Format(v, base)
		if err != nil {
			return nil, &errors.LoadError{
				Op:      "Int64ToBase",
				Message: fmt.Sprintf("can't convert negative number %d to base %d, item %d", v, base, i+1),
				Cause:   err,
			}
		}
		out[i] = s
	}
	return out, nil
}

// AddInt64Int64 returns a + b elementwise.
func AddInt64Int64(a, b []float64) ([]float64, error) {
	if err := validation.ValidateLength(len(a), len(b), "AddInt64Int64", "operands"); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = ToStorage(add(FromStorage(a[i]), FromStorage(b[i])))
	}
	return out, nil
}

// AddInt64Int32 returns a + b elementwise where b is a 32-bit integer column.
func AddInt64Int32(a []float64, b []int32) ([]float64, error) {
	if err := validation.ValidateLength(len(a), len(b), "AddInt64Int32", "operands"); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		rhs := int64(b[i])
		if na.IsInt32(b[i]) {
			rhs = na.Int64
		}
		out[i] = ToStorage(add(FromStorage(a[i]), rhs))
	}
	return out, nil
}

// SubInt64Int64 returns a - b elementwise.
func SubInt64Int64(a, b []float64) ([]float64, error) {
	if err := validation.ValidateLength(len(a), len(b), "SubInt64Int64", "operands"); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = ToStorage(sub(FromStorage(a[i]), FromStorage(b[i])))
	}
	return out, nil
}

// FromIntegers widens any integer column to int64 slots. isNA identifies the
// source's missing marker and may be nil.
func FromIntegers[T constraints.Integer](xs []T, isNA func(T) bool) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if isNA != nil && isNA(x) {
			out[i] = StorageNA()
			continue
		}
		v := int64(x) //nolint:gosec // uint64 inputs above MaxInt64 wrap
		out[i] = ToStorage(v)
	}
	return out
}

// Int32ToInt64 widens a 32-bit integer column.
func Int32ToInt64(xs []int32) []float64 {
	return FromIntegers(xs, na.IsInt32)
}

// Float64ToInt64 truncates doubles toward zero. NaN and values outside the
// int64 range become NA.
func Float64ToInt64(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) || x >= math.MaxInt64 || x <= math.MinInt64 {
			out[i] = StorageNA()
			continue
		}
		out[i] = ToStorage(int64(x))
	}
	return out
}

// Int64ToFloat64 converts slots to ordinary doubles; NA becomes the float NA.
func Int64ToFloat64(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, f := range x {
		v := FromStorage(f)
		if na.IsInt64(v) {
			out[i] = na.Float64()
			continue
		}
		out[i] = float64(v)
	}
	return out
}

// Int64ToInt32 narrows slots to 32-bit integers; NA and out-of-range values
// become the int32 NA.
func Int64ToInt32(x []float64) []int32 {
	out := make([]int32, len(x))
	for i, f := range x {
		v := FromStorage(f)
		if na.IsInt64(v) || v <= math.MinInt32 || v > math.MaxInt32 {
			out[i] = na.Int32
			continue
		}
		out[i] = int32(v)
	}
	return out
}

// IsNA reports which slots hold the missing int64.
func IsNA(x []float64) []bool {
	out := make([]bool, len(x))
	for i, f := range x {
		out[i] = IsStorageNA(f)
	}
	return out
}

func add(a, b int64) int64 {
	if na.IsInt64(a) || na.IsInt64(b) {
		return na.Int64
	}
	r := a + b
	if (a^r)&(b^r) < 0 {
		return na.Int64
	}
	return r
}

func sub(a, b int64) int64 {
	if na.IsInt64(a) || na.IsInt64(b) {
		return na.Int64
	}
	r := a - b
	if (a^b)&(a^r) < 0 {
		return na.Int64
	}
	return r
}
