package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// ISeries provides a type-erased interface for a named Arrow column.
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	Field() arrow.Field
	IsNull(index int) bool
	NullN() int
	String() string
	Array() arrow.Array
	Release()
	GetAsString(index int, naText string) (string, error)
}
