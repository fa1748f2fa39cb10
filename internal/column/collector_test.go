package column

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/int64codec"
	"github.com/paveg/csvread/internal/na"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollector(t *testing.T, mem memory.Allocator, typeName string, capacity int, opts ...CollectorOption) *Collector {
	t.Helper()
	typ, err := ParseType(typeName)
	require.NoError(t, err)
	c := NewCollector(typ, opts...)
	s := NewStorage(mem, typ.Kind, capacity)
	t.Cleanup(s.Release)
	require.NoError(t, c.Attach(s))
	return c
}

func TestIntCollector(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	// Registered first so it runs after the storage cleanup.
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	nas := NewNASet([]string{"NA"})
	c := newCollector(t, mem, TypeInteger, 8)

	tests := []struct {
		field string
		ok    bool
		want  int32
	}{
		{"42", true, 42},
		{" -7 ", true, -7},
		{"", false, na.Int32},
		{"NA", false, na.Int32},
		{"12abc", false, na.Int32},
		{"2147483648", false, na.Int32},
		{"-2147483648", false, na.Int32},
		{"2147483647", true, math.MaxInt32},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.ok, c.Append([]byte(tt.field), nas), "field %q", tt.field)
		assert.Equal(t, tt.want, c.Storage().Int32(i), "field %q", tt.field)
		assert.Equal(t, tt.ok, c.Storage().IsValid(i), "field %q", tt.field)
	}
	assert.Equal(t, 8, c.Size())
	assert.Equal(t, Stats{NA: 5, Failed: 3}, c.Stats())
}

func TestDoubleCollector(t *testing.T) {
	nas := NewNASet([]string{"NA"})
	c := newCollector(t, memory.NewGoAllocator(), TypeDouble, 5)

	assert.True(t, c.Append([]byte("3.25"), nas))
	assert.True(t, c.Append([]byte("-1e3"), nas))
	assert.False(t, c.Append([]byte("1e400"), nas))
	assert.False(t, c.Append([]byte("x"), nas))
	assert.False(t, c.Append(nil, nas))

	s := c.Storage()
	assert.Equal(t, 3.25, s.Float64(0))
	assert.Equal(t, -1000.0, s.Float64(1))
	for i := 2; i < 5; i++ {
		assert.True(t, na.IsFloat64Marker(s.Float64(i)))
		assert.False(t, s.IsValid(i))
	}
	assert.Equal(t, 3, s.NullN(5))
}

func TestStringCollector(t *testing.T) {
	nas := NewNASet([]string{"NA"})

	t.Run("na-set policy", func(t *testing.T) {
		c := newCollector(t, memory.NewGoAllocator(), TypeString, 4)
		assert.True(t, c.Append([]byte("hello"), nas))
		assert.False(t, c.Append([]byte("NA"), nas))
		assert.True(t, c.Append([]byte("NULL"), nas))
		assert.True(t, c.Append([]byte(""), nas))

		s := c.Storage()
		assert.Equal(t, "hello", s.String(0))
		assert.False(t, s.IsValid(1))
		assert.Equal(t, "NULL", s.String(2))
		assert.True(t, s.IsValid(3))
		assert.Equal(t, "", s.String(3))
		assert.Equal(t, Stats{NA: 1}, c.Stats())
	})

	t.Run("legacy null policy", func(t *testing.T) {
		c := newCollector(t, memory.NewGoAllocator(), TypeString, 2, WithStringNAPolicy(LegacyNullPolicy))
		assert.False(t, c.Append([]byte("NULL"), nas))
		assert.False(t, c.Append([]byte("NA"), nas))
		assert.Equal(t, 2, c.Storage().NullN(2))
	})

	t.Run("copies field bytes", func(t *testing.T) {
		c := newCollector(t, memory.NewGoAllocator(), TypeString, 1)
		field := []byte("abc")
		c.Append(field, nas)
		field[0] = 'X'
		assert.Equal(t, "abc", c.Storage().String(0))
	})

	t.Run("many strings grow data", func(t *testing.T) {
		c := newCollector(t, memory.NewGoAllocator(), TypeString, 1000)
		for range 1000 {
			require.True(t, c.Append([]byte("0123456789"), nas))
		}
		assert.Equal(t, "0123456789", c.Storage().String(999))
	})
}

func TestInt64Collector(t *testing.T) {
	nas := NewNASet([]string{"NA"})

	t.Run("decimal", func(t *testing.T) {
		c := newCollector(t, memory.NewGoAllocator(), TypeLong, 4)
		assert.True(t, c.Append([]byte("123456789012345"), nas))
		assert.True(t, c.Append([]byte("-9223372036854775807"), nas))
		assert.False(t, c.Append([]byte("9223372036854775808"), nas))
		assert.False(t, c.Append([]byte("NA"), nas))

		s := c.Storage()
		assert.Equal(t, int64(123456789012345), s.Int64(0))
		assert.Equal(t, int64(-math.MaxInt64), int64codec.FromStorage(s.Float64(1)))
		assert.Equal(t, na.Int64, s.Int64(2))
		assert.True(t, int64codec.IsStorageNA(s.Float64(3)))
		assert.Equal(t, Stats{NA: 2, Failed: 1}, c.Stats())
	})

	t.Run("hex", func(t *testing.T) {
		c := newCollector(t, memory.NewGoAllocator(), TypeLongHex, 3)
		assert.Equal(t, 16, c.Base())
		assert.True(t, c.Append([]byte("ff"), nas))
		assert.True(t, c.Append([]byte("0x7FFFFFFFFFFFFFFF"), nas))
		assert.False(t, c.Append([]byte("fg"), nas))
		assert.Equal(t, []int64{255, math.MaxInt64, na.Int64}, c.Storage().Int64s())
	})
}

func TestEmptyStringNA(t *testing.T) {
	nas := NewNASet([]string{""})
	for _, name := range TypeNames() {
		t.Run(name, func(t *testing.T) {
			c := newCollector(t, memory.NewGoAllocator(), name, 1)
			assert.False(t, c.Append(nil, nas))
			assert.False(t, c.Storage().IsValid(0))
		})
	}
}

func TestCollectorCapacity(t *testing.T) {
	nas := NewNASet(nil)
	c := newCollector(t, memory.NewGoAllocator(), TypeInteger, 2)

	assert.True(t, c.Append([]byte("1"), nas))
	assert.True(t, c.Append([]byte("2"), nas))
	assert.False(t, c.Append([]byte("3"), nas))
	assert.False(t, c.AppendNA())

	assert.Equal(t, 2, c.Size())
	assert.Equal(t, 2, c.Capacity())
	assert.Equal(t, []int32{1, 2}, c.Storage().Int32s())
	assert.Equal(t, 2, c.Stats().Dropped)
}

func TestCollectorResize(t *testing.T) {
	nas := NewNASet(nil)
	c := newCollector(t, memory.NewGoAllocator(), TypeString, 4)
	c.Append([]byte("aa"), nas)
	c.Append([]byte("bb"), nas)

	c.Resize(10)
	assert.Equal(t, 4, c.Size())
	c.Resize(1)
	assert.Equal(t, 1, c.Size())
	c.Resize(-3)
	assert.Equal(t, 0, c.Size())
}

func TestAttach(t *testing.T) {
	typ, err := ParseType(TypeInteger)
	require.NoError(t, err)
	c := NewCollector(typ)

	assert.Error(t, c.Attach(nil))

	s := NewStorage(nil, KindDouble, 1)
	defer s.Release()
	assert.Error(t, c.Attach(s))

	assert.False(t, c.Append([]byte("1"), nil))
	assert.Equal(t, 0, c.Capacity())
}

func TestNewArrayData(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	nas := NewNASet([]string{"NA"})

	typ, err := ParseType(TypeString)
	require.NoError(t, err)
	s := NewStorage(mem, typ.Kind, 3)
	c := NewCollector(typ)
	require.NoError(t, c.Attach(s))
	c.Append([]byte("x"), nas)
	c.Append([]byte("NA"), nas)
	c.Append([]byte("yz"), nas)

	data := s.NewArrayData(c.Size())
	arr := array.MakeFromData(data)
	data.Release()
	s.Release()

	strs := arr.(*array.LargeString)
	assert.Equal(t, 3, strs.Len())
	assert.Equal(t, 1, strs.NullN())
	assert.Equal(t, "x", strs.Value(0))
	assert.True(t, strs.IsNull(1))
	assert.Equal(t, "yz", strs.Value(2))
	arr.Release()
}

func TestParseStringNAPolicy(t *testing.T) {
	p, err := ParseStringNAPolicy("")
	require.NoError(t, err)
	assert.Equal(t, NASetPolicy, p)

	p, err = ParseStringNAPolicy("legacy-null")
	require.NoError(t, err)
	assert.Equal(t, "legacy-null", p.String())

	_, err = ParseStringNAPolicy("strict")
	assert.Error(t, err)
}

func BenchmarkAppendInt64(b *testing.B) {
	typ, _ := ParseType(TypeLong)
	nas := NewNASet([]string{"NA", ""})
	field := []byte("123456789012345")
	c := NewCollector(typ)
	s := NewStorage(nil, typ.Kind, 1<<16)
	defer s.Release()
	_ = c.Attach(s)
	for b.Loop() {
		if c.Size() == c.Capacity() {
			c.Resize(0)
		}
		c.Append(field, nas)
	}
}
