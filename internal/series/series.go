// Package series provides named, Arrow-backed columns.
//
// A Series built from loaded column storage shares its buffers: no values
// are copied. Int64 columns are exposed as Arrow int64 arrays over the same
// bytes and carry field metadata naming the class and the text base, so a
// consumer can render them the way they were read.
package series

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/column"
	"github.com/paveg/csvread/internal/int64codec"
	"github.com/paveg/csvread/internal/na"
)

// Field metadata keys set on int64 columns.
const (
	MetaClass = "csvread.class"
	MetaBase  = "csvread.base"

	classInt64 = "int64"
)

// Value lists the Go types a Series can be built from.
type Value interface {
	int32 | int64 | float64 | string | bool
}

// Series represents a named data column with an Apache Arrow backend.
type Series struct {
	field arrow.Field
	array arrow.Array
}

// Int64Metadata returns the field metadata of an int64 column written in base.
func Int64Metadata(base int) arrow.Metadata {
	return arrow.NewMetadata(
		[]string{MetaClass, MetaBase},
		[]string{classInt64, strconv.Itoa(base)},
	)
}

// New creates a Series from a slice of values. When valid is non-nil,
// valid[i] == false makes element i null.
func New[T Value](name string, values []T, valid []bool, mem memory.Allocator) *Series {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	var arr arrow.Array
	switch v := any(values).(type) {
	case []int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(v, valid)
		arr = b.NewArray()
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(v, valid)
		arr = b.NewArray()
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(v, valid)
		arr = b.NewArray()
	case []string:
		b := array.NewLargeStringBuilder(mem)
		defer b.Release()
		b.AppendValues(v, valid)
		arr = b.NewArray()
	case []bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(v, valid)
		arr = b.NewArray()
	}

	return &Series{
		field: arrow.Field{Name: name, Type: arr.DataType(), Nullable: true},
		array: arr,
	}
}

// NewInt64 creates an int64 Series tagged with base. Elements equal to the
// int64 NA marker become null.
func NewInt64(name string, values []int64, base int, mem memory.Allocator) *Series {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !na.IsInt64(v)
	}
	s := New(name, values, valid, mem)
	s.field.Metadata = Int64Metadata(base)
	return s
}

// FromArray wraps arr. The Series takes over the caller's reference.
func FromArray(field arrow.Field, arr arrow.Array) *Series {
	field.Type = arr.DataType()
	return &Series{field: field, array: arr}
}

// FromStorage exposes the first length slots of s as a Series without
// copying. The Series holds its own references to the storage buffers, so s
// may be released independently.
func FromStorage(name string, t column.Type, s *column.Storage, length int) *Series {
	data := s.NewArrayData(length)
	defer data.Release()

	field := arrow.Field{Name: name, Type: data.DataType(), Nullable: true}
	if t.Kind == column.KindInt64 {
		base := t.Base
		if base == 0 {
			base = 10
		}
		field.Metadata = Int64Metadata(base)
	}
	return &Series{field: field, array: array.MakeFromData(data)}
}

// Name returns the column name.
func (s *Series) Name() string {
	return s.field.Name
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return s.array.Len()
}

// DataType returns the Arrow data type.
func (s *Series) DataType() arrow.DataType {
	return s.array.DataType()
}

// Field returns the Arrow field, including metadata.
func (s *Series) Field() arrow.Field {
	return s.field
}

// IsNull checks if the value at index is null.
func (s *Series) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// NullN returns the number of nulls.
func (s *Series) NullN() int {
	return s.array.NullN()
}

// IsInt64 reports whether the column was loaded as a 64-bit integer.
func (s *Series) IsInt64() bool {
	v, ok := s.field.Metadata.GetValue(MetaClass)
	return ok && v == classInt64
}

// Base returns the text base of an int64 column, or 10.
func (s *Series) Base() int {
	if v, ok := s.field.Metadata.GetValue(MetaBase); ok {
		if b, err := strconv.Atoi(v); err == nil && int64codec.ValidBase(b) {
			return b
		}
	}
	return 10
}

// String returns a short description of the series.
func (s *Series) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.DataType(), s.Name(), s.Len())
}

// Array returns the underlying Arrow array (retains a reference).
func (s *Series) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Release releases the underlying Arrow memory.
func (s *Series) Release() {
	if s.array != nil {
		s.array.Release()
		s.array = nil
	}
}

// Slice returns rows [start, end) sharing the same buffers.
func (s *Series) Slice(start, end int) *Series {
	return &Series{field: s.field, array: array.NewSlice(s.array, int64(start), int64(end))}
}

// GetAsString renders the value at index. Nulls render as naText; int64
// values render in the column's base. It fails only for a negative int64
// in a non-decimal base.
func (s *Series) GetAsString(index int, naText string) (string, error) {
	if index < 0 || index >= s.Len() || s.array.IsNull(index) {
		return naText, nil
	}
	switch arr := s.array.(type) {
	case *array.Int32:
		return strconv.FormatInt(int64(arr.Value(index)), 10), nil
	case *array.Int64:
		v := arr.Value(index)
		if na.IsInt64(v) {
			return naText, nil
		}
		return int64codec.Format(v, s.Base())
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64), nil
	case *array.LargeString:
		return arr.Value(index), nil
	case *array.String:
		return arr.Value(index), nil
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index)), nil
	default:
		return arr.ValueStr(index), nil
	}
}

// Values copies the column into a Go slice with nulls set to the matching NA
// marker: na.Int32, na.Int64, na.Float64() or the empty string. It fails when
// T does not match the column type.
func Values[T Value](s *Series) ([]T, error) {
	out := make([]T, s.Len())
	switch arr := s.array.(type) {
	case *array.Int32:
		v, ok := any(out).([]int32)
		if !ok {
			break
		}
		for i := range v {
			v[i] = na.Int32
			if arr.IsValid(i) {
				v[i] = arr.Value(i)
			}
		}
		return out, nil
	case *array.Int64:
		v, ok := any(out).([]int64)
		if !ok {
			break
		}
		for i := range v {
			v[i] = na.Int64
			if arr.IsValid(i) {
				v[i] = arr.Value(i)
			}
		}
		return out, nil
	case *array.Float64:
		v, ok := any(out).([]float64)
		if !ok {
			break
		}
		for i := range v {
			v[i] = na.Float64()
			if arr.IsValid(i) {
				v[i] = arr.Value(i)
			}
		}
		return out, nil
	case *array.LargeString:
		v, ok := any(out).([]string)
		if !ok {
			break
		}
		for i := range v {
			if arr.IsValid(i) {
				v[i] = arr.Value(i)
			}
		}
		return out, nil
	case *array.Boolean:
		v, ok := any(out).([]bool)
		if !ok {
			break
		}
		for i := range v {
			v[i] = arr.IsValid(i) && arr.Value(i)
		}
		return out, nil
	}
	return nil, fmt.Errorf("series %s of type %s cannot be read as %T", s.Name(), s.DataType(), out)
}
