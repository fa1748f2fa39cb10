package loader

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/paveg/csvread/internal/column"
	"github.com/paveg/csvread/internal/errors"
	"github.com/paveg/csvread/internal/validation"
	"gopkg.in/yaml.v3"
)

// Schema describes a file to load. The field names follow the descriptor
// keys accepted in schema files.
type Schema struct {
	// Filename is the path of the delimited file. Required.
	Filename string `json:"filename" yaml:"filename"`
	// ColTypes lists one type per column: integer, double, long, longhex or
	// string. Required and non-empty.
	ColTypes []string `json:"coltypes" yaml:"coltypes"`
	// NRows fixes the row count. Zero means count the lines of the file.
	NRows int `json:"nrows,omitempty" yaml:"nrows,omitempty"`
	// Header reports whether the first line holds column names. Nil means
	// true.
	Header *bool `json:"header,omitempty" yaml:"header,omitempty"`
	// ColNames overrides names from the front; it may be shorter than
	// ColTypes.
	ColNames []string `json:"colnames,omitempty" yaml:"colnames,omitempty"`
	// Verbose raises progress logging from Debug to Info.
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	// Delimiter is a single byte. Empty means ",".
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	// NAStrings lists the texts that mean missing. It must be present; an
	// explicitly empty list means no text is NA.
	NAStrings []string `json:"na.strings" yaml:"na.strings"`
	// StringNAPolicy is "na-set" (default) or "legacy-null".
	StringNAPolicy string `json:"string_na_policy,omitempty" yaml:"string_na_policy,omitempty"`
	// StripQuotes removes enclosing double quotes from fields.
	StripQuotes bool `json:"strip_quotes,omitempty" yaml:"strip_quotes,omitempty"`
}

// HasHeader reports whether the first line is a header.
func (s Schema) HasHeader() bool {
	return s.Header == nil || *s.Header
}

// DelimiterByte returns the field separator.
func (s Schema) DelimiterByte() byte {
	if s.Delimiter == "" {
		return ','
	}
	return s.Delimiter[0]
}

// Validate checks the descriptor before any file is touched.
func (s Schema) Validate() error {
	const op = "Load"
	validators := []validation.Validator{
		validation.NewRequiredValidator(s.Filename != "", errors.ErrMissingFilename, op),
		validation.NewRequiredValidator(len(s.ColTypes) > 0, errors.ErrMissingColumnTypes, op),
		validation.NewRequiredValidator(s.NAStrings != nil, errors.ErrMissingNAStrings, op),
		validation.NewRangeValidator("nrows", s.NRows, 0, math.MaxInt32, op),
	}
	if s.Delimiter != "" {
		validators = append(validators, validation.NewDelimiterValidator(s.Delimiter, op))
	}
	return validation.NewCompoundValidator(validators...).Validate()
}

// Types resolves ColTypes.
func (s Schema) Types() ([]column.Type, error) {
	return column.ParseTypes(s.ColTypes)
}

// LoadSchemaFile reads a schema descriptor from a .json, .yaml or .yml file.
func LoadSchemaFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("reading schema file %s: %w", path, err)
	}

	var s Schema
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = gojson.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return Schema{}, fmt.Errorf("unsupported schema file format: %s", ext)
	}
	if err != nil {
		return Schema{}, fmt.Errorf("parsing schema file %s: %w", path, err)
	}
	return s, nil
}

// ResolveNames picks one name per column: explicit names first, then the
// header names in header order starting with the first, then COL<n> with n
// counting columns from 1.
func ResolveNames(explicit, header []string, ncols int) []string {
	names := make([]string, 0, ncols)
	for _, n := range explicit {
		if len(names) == ncols {
			return names
		}
		names = append(names, n)
	}
	for _, h := range header {
		if len(names) == ncols {
			return names
		}
		names = append(names, h)
	}
	for len(names) < ncols {
		names = append(names, fmt.Sprintf("COL%d", len(names)+1))
	}
	return names
}
