package column

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/na"
)

// Storage is fixed-capacity memory for one column, laid out the way Arrow
// lays out the matching array: a validity bitmap plus a values buffer, and
// for strings an offsets buffer plus a growable data buffer.
//
// Int64 columns keep each value as the bits of a float64 slot. Reading the
// values buffer as []int64 gives the integers back without conversion.
type Storage struct {
	refCount int64
	kind     Kind
	capacity int

	validity *memory.Buffer
	values   *memory.Buffer // slots, or int64 offsets for strings
	data     *memory.Buffer // string bytes

	valid []byte
	i32   []int32
	f64   []float64
	offs  []int64
}

// NewStorage allocates storage for capacity values of kind from mem. A nil
// mem uses memory.DefaultAllocator.
func NewStorage(mem memory.Allocator, kind Kind, capacity int) *Storage {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if capacity < 0 {
		capacity = 0
	}

	s := &Storage{refCount: 1, kind: kind, capacity: capacity}
	s.validity = memory.NewResizableBuffer(mem)
	s.validity.Resize(int(bitutil.BytesForBits(int64(capacity))))
	s.valid = s.validity.Bytes()
	clear(s.valid)

	s.values = memory.NewResizableBuffer(mem)
	switch kind {
	case KindInt:
		s.values.Resize(capacity * arrow.Int32SizeBytes)
		s.i32 = arrow.Int32Traits.CastFromBytes(s.values.Bytes())
	case KindDouble, KindInt64:
		s.values.Resize(capacity * arrow.Float64SizeBytes)
		s.f64 = arrow.Float64Traits.CastFromBytes(s.values.Bytes())
	case KindString:
		s.values.Resize((capacity + 1) * arrow.Int64SizeBytes)
		s.offs = arrow.Int64Traits.CastFromBytes(s.values.Bytes())
		s.offs[0] = 0
		s.data = memory.NewResizableBuffer(mem)
	}
	return s
}

// Kind returns the storage kind.
func (s *Storage) Kind() Kind { return s.kind }

// Cap returns the number of values the storage can hold.
func (s *Storage) Cap() int { return s.capacity }

// Retain increases the reference count by 1.
func (s *Storage) Retain() {
	atomic.AddInt64(&s.refCount, 1)
}

// Release decreases the reference count by 1 and frees the buffers when it
// reaches zero. Arrays built with NewArrayData hold their own references.
func (s *Storage) Release() {
	if atomic.AddInt64(&s.refCount, -1) != 0 {
		return
	}
	s.validity.Release()
	s.values.Release()
	if s.data != nil {
		s.data.Release()
	}
	s.valid, s.i32, s.f64, s.offs = nil, nil, nil, nil
}

// IsValid reports whether slot i holds a value rather than NA.
func (s *Storage) IsValid(i int) bool {
	return bitutil.BitIsSet(s.valid, i)
}

// Int32 returns slot i of an int column.
func (s *Storage) Int32(i int) int32 { return s.i32[i] }

// Float64 returns slot i of a double or int64 column. For int64 columns it
// is the raw carrier slot.
func (s *Storage) Float64(i int) float64 { return s.f64[i] }

// Int64 returns slot i of an int64 column reinterpreted as an integer.
func (s *Storage) Int64(i int) int64 {
	return arrow.Int64Traits.CastFromBytes(s.values.Bytes())[i]
}

// String returns slot i of a string column.
func (s *Storage) String(i int) string {
	return string(s.data.Bytes()[s.offs[i]:s.offs[i+1]])
}

// Int32s returns the int slots. The slice aliases the storage.
func (s *Storage) Int32s() []int32 { return s.i32 }

// Float64s returns the float64 slots of a double or int64 column. The slice
// aliases the storage.
func (s *Storage) Float64s() []float64 { return s.f64 }

// Int64s returns the slots of an int64 column as integers. The slice aliases
// the storage.
func (s *Storage) Int64s() []int64 {
	if s.kind != KindInt64 {
		return nil
	}
	return arrow.Int64Traits.CastFromBytes(s.values.Bytes())
}

// NullN counts NA slots among the first length slots.
func (s *Storage) NullN(length int) int {
	length = min(length, s.capacity)
	return length - bitutil.CountSetBits(s.valid, 0, length)
}

// NewArrayData exposes the first length slots as Arrow array data without
// copying. The result holds references to the buffers and must be released.
func (s *Storage) NewArrayData(length int) arrow.ArrayData {
	length = max(0, min(length, s.capacity))
	buffers := []*memory.Buffer{s.validity, s.values}
	if s.kind == KindString {
		buffers = append(buffers, s.data)
	}
	return array.NewData(s.kind.ArrowType(), length, buffers, nil, s.NullN(length), 0)
}

func (s *Storage) setInt32(i int, v int32, valid bool) {
	s.i32[i] = v
	bitutil.SetBitTo(s.valid, i, valid)
}

func (s *Storage) setFloat64(i int, v float64, valid bool) {
	s.f64[i] = v
	bitutil.SetBitTo(s.valid, i, valid)
}

// setString stores v in slot i. Slots must be filled in order.
func (s *Storage) setString(i int, v []byte, valid bool) {
	start := s.offs[i]
	end := start
	if valid && len(v) > 0 {
		end += int64(len(v))
		s.growData(int(end))
		copy(s.data.Bytes()[start:end], v)
	}
	s.offs[i+1] = end
	bitutil.SetBitTo(s.valid, i, valid)
}

func (s *Storage) setNA(i int) {
	switch s.kind {
	case KindInt:
		s.setInt32(i, na.Int32, false)
	case KindDouble:
		s.setFloat64(i, na.Float64(), false)
	case KindInt64:
		s.setFloat64(i, int64StorageNA, false)
	case KindString:
		s.setString(i, nil, false)
	}
}

// growData resizes the string data buffer to n bytes, doubling its capacity
// when it runs out so a column of many small strings grows in O(log n) steps.
func (s *Storage) growData(n int) {
	if n > s.data.Cap() {
		s.data.Reserve(max(n, 2*s.data.Cap(), 256))
	}
	s.data.Resize(n)
}

// truncateStrings drops string bytes past slot n.
func (s *Storage) truncateStrings(n int) {
	if s.kind == KindString && s.data.Len() > int(s.offs[n]) {
		s.data.Resize(int(s.offs[n]))
	}
}
