package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/array"
	gojson "github.com/goccy/go-json"
	"github.com/paveg/csvread/internal/dataframe"
	"github.com/paveg/csvread/internal/int64codec"
	"github.com/paveg/csvread/internal/series"
)

// JSONWriter writes one JSON object per row, keys in column order. Missing
// values are null and non-finite doubles are strings. Int64 columns in a
// base other than 10 are written as strings in that base.
type JSONWriter struct {
	writer io.Writer
}

// NewJSONWriter creates a JSON Lines writer.
func NewJSONWriter(writer io.Writer) *JSONWriter {
	return &JSONWriter{writer: writer}
}

// Write writes the DataFrame as JSON Lines.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	bw := bufio.NewWriter(w.writer)

	names := df.Columns()
	keys := make([][]byte, len(names))
	for i, name := range names {
		key, err := gojson.Marshal(name)
		if err != nil {
			return fmt.Errorf("marshaling column name %s: %w", name, err)
		}
		keys[i] = key
	}

	for row := range df.Len() {
		_ = bw.WriteByte('{')
		for i := range names {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			_, _ = bw.Write(keys[i])
			_ = bw.WriteByte(':')

			col, _ := df.ColumnAt(i)
			value, err := jsonValue(col, row)
			if err != nil {
				return fmt.Errorf("writing column %s row %d: %w", names[i], row+1, err)
			}
			data, err := gojson.Marshal(value)
			if err != nil {
				return fmt.Errorf("marshaling column %s row %d: %w", names[i], row+1, err)
			}
			_, _ = bw.Write(data)
		}
		_, _ = bw.WriteString("}\n")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing json output: %w", err)
	}
	return nil
}

// jsonValue gets the value of s at index as a JSON-marshalable value.
func jsonValue(s dataframe.ISeries, index int) (any, error) {
	if s.IsNull(index) {
		return nil, nil
	}

	arr := s.Array()
	defer arr.Release()

	switch typed := arr.(type) {
	case *array.Int32:
		return typed.Value(index), nil
	case *array.Int64:
		base := 10
		if sr, ok := s.(*series.Series); ok {
			base = sr.Base()
		}
		if base == 10 {
			return typed.Value(index), nil
		}
		return int64codec.Format(typed.Value(index), base)
	case *array.Float64:
		v := typed.Value(index)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		}
		return v, nil
	case *array.LargeString:
		return typed.Value(index), nil
	case *array.String:
		return typed.Value(index), nil
	case *array.Boolean:
		return typed.Value(index), nil
	default:
		return s.GetAsString(index, "")
	}
}
