// Package column holds typed, fixed-capacity column storage and the
// collectors that parse field text into it.
//
// Storage is allocated once from an arrow memory.Allocator with room for the
// predicted row count and is append-only afterwards. A Collector is bound to
// one Storage and converts each field to the column's kind, writing the
// kind's missing marker and clearing the validity bit when a field is NA or
// cannot be parsed.
package column

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/csvread/internal/errors"
)

// Kind is the physical storage kind of a column.
type Kind uint8

const (
	// KindInt stores 32-bit signed integers.
	KindInt Kind = iota
	// KindDouble stores float64 values.
	KindDouble
	// KindString stores text.
	KindString
	// KindInt64 stores 64-bit signed integers as the bits of float64 slots.
	KindInt64
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	default:
		return "unknown"
	}
}

// ArrowType returns the Arrow type a column of this kind is exposed as.
// Int64 slots are exposed as int64, reinterpreting the same bytes.
func (k Kind) ArrowType() arrow.DataType {
	switch k {
	case KindInt:
		return arrow.PrimitiveTypes.Int32
	case KindDouble:
		return arrow.PrimitiveTypes.Float64
	case KindString:
		return arrow.BinaryTypes.LargeString
	case KindInt64:
		return arrow.PrimitiveTypes.Int64
	default:
		return arrow.Null
	}
}

// Column type names accepted in a schema.
const (
	TypeInteger = "integer"
	TypeDouble  = "double"
	TypeLong    = "long"
	TypeLongHex = "longhex"
	TypeString  = "string"
)

// Type is a declared column type: its schema name, storage kind and, for
// 64-bit integers, the base the text is written in.
type Type struct {
	Name string
	Kind Kind
	Base int
}

// ParseType resolves a schema type name. Names are case-sensitive.
func ParseType(name string) (Type, error) {
	switch name {
	case TypeInteger:
		return Type{Name: name, Kind: KindInt, Base: 10}, nil
	case TypeDouble:
		return Type{Name: name, Kind: KindDouble}, nil
	case TypeLong:
		return Type{Name: name, Kind: KindInt64, Base: 10}, nil
	case TypeLongHex:
		return Type{Name: name, Kind: KindInt64, Base: 16}, nil
	case TypeString:
		return Type{Name: name, Kind: KindString}, nil
	default:
		return Type{}, errors.NewUnsupportedTypeError("ParseType", name)
	}
}

// ParseTypes resolves every name in order, failing on the first unknown one.
func ParseTypes(names []string) ([]Type, error) {
	types := make([]Type, len(names))
	for i, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

// TypeNames lists the accepted type names.
func TypeNames() []string {
	return []string{TypeInteger, TypeDouble, TypeLong, TypeLongHex, TypeString}
}

// String returns the schema name of the type.
func (t Type) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}
