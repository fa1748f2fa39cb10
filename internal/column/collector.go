package column

import (
	"fmt"
	"math"
	"strconv"
	"unsafe"

	"github.com/paveg/csvread/internal/errors"
	"github.com/paveg/csvread/internal/int64codec"
	"github.com/paveg/csvread/internal/na"
)

var int64StorageNA = int64codec.StorageNA()

// StringNAPolicy selects which string fields are treated as missing.
type StringNAPolicy int

const (
	// NASetPolicy treats exactly the NA set entries as missing.
	NASetPolicy StringNAPolicy = iota
	// LegacyNullPolicy also treats the literal text NULL as missing.
	LegacyNullPolicy
)

// String returns the configuration name of the policy.
func (p StringNAPolicy) String() string {
	if p == LegacyNullPolicy {
		return "legacy-null"
	}
	return "na-set"
}

// ParseStringNAPolicy resolves a policy name. The empty name selects
// NASetPolicy.
func ParseStringNAPolicy(name string) (StringNAPolicy, error) {
	switch name {
	case "", "na-set":
		return NASetPolicy, nil
	case "legacy-null":
		return LegacyNullPolicy, nil
	default:
		return NASetPolicy, errors.NewInvalidInputError("ParseStringNAPolicy",
			fmt.Sprintf("unknown string NA policy '%s'", name))
	}
}

// Stats counts how the fields appended to a collector were resolved.
type Stats struct {
	// NA counts fields stored as missing for any reason.
	NA int `json:"na" yaml:"na"`
	// Failed counts non-empty fields that were not in the NA set but could
	// not be parsed. They are included in NA.
	Failed int `json:"failed" yaml:"failed"`
	// Dropped counts appends refused because the storage was full.
	Dropped int `json:"dropped" yaml:"dropped"`
}

// Collector parses field text and appends it to an attached Storage.
//
// A Collector is a tagged variant over the four storage kinds; Append
// switches on the kind.
type Collector struct {
	typ     Type
	policy  StringNAPolicy
	storage *Storage
	count   int
	stats   Stats
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithStringNAPolicy sets how a string collector detects missing values.
func WithStringNAPolicy(p StringNAPolicy) CollectorOption {
	return func(c *Collector) {
		c.policy = p
	}
}

// NewCollector creates an unattached collector for t.
func NewCollector(t Type, opts ...CollectorOption) *Collector {
	c := &Collector{typ: t}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the declared column type.
func (c *Collector) Type() Type { return c.typ }

// Base returns the numeric base of an int64 column, or 10.
func (c *Collector) Base() int {
	if c.typ.Kind == KindInt64 && c.typ.Base != 0 {
		return c.typ.Base
	}
	return 10
}

// Attach binds the collector to s and resets its count and stats.
func (c *Collector) Attach(s *Storage) error {
	if s == nil {
		return errors.NewInvalidInputError("Attach", "storage is nil")
	}
	if s.Kind() != c.typ.Kind {
		return errors.NewValidationError("Attach", c.typ.String(),
			fmt.Sprintf("storage kind %s does not match column kind %s", s.Kind(), c.typ.Kind))
	}
	if c.typ.Kind == KindInt64 && !int64codec.ValidBase(c.Base()) {
		return errors.WithOp(errors.ErrInvalidBase, "Attach")
	}
	c.storage = s
	c.count = 0
	c.stats = Stats{}
	return nil
}

// Storage returns the attached storage.
func (c *Collector) Storage() *Storage { return c.storage }

// Size returns the number of values appended.
func (c *Collector) Size() int { return c.count }

// Capacity returns the capacity of the attached storage.
func (c *Collector) Capacity() int {
	if c.storage == nil {
		return 0
	}
	return c.storage.Cap()
}

// Stats returns the per-field outcome counts.
func (c *Collector) Stats() Stats { return c.stats }

// Resize sets the logical length to min(n, Capacity()). It is used to
// correct the length when the predicted row count was wrong. Growing past
// the appended count exposes slots that were never written, so callers only
// shrink in practice.
func (c *Collector) Resize(n int) {
	c.count = max(0, min(n, c.Capacity()))
	if c.storage != nil {
		c.storage.truncateStrings(c.count)
	}
}

// Append parses field and stores the value, or the kind's NA marker when
// field is empty, in nas, or unparseable. It returns true only when a
// genuine value was stored. When the storage is full nothing is changed and
// false is returned.
func (c *Collector) Append(field []byte, nas *NASet) bool {
	if c.storage == nil || c.count >= c.storage.Cap() {
		c.stats.Dropped++
		return false
	}
	i := c.count
	c.count++

	if nas.Contains(field) {
		c.storage.setNA(i)
		c.stats.NA++
		return false
	}

	var ok bool
	switch c.typ.Kind {
	case KindInt:
		var v int32
		if v, ok = parseInt32(field); ok {
			c.storage.setInt32(i, v, true)
		}
	case KindDouble:
		var v float64
		if v, ok = parseFloat64(field); ok {
			c.storage.setFloat64(i, v, true)
		}
	case KindInt64:
		var v int64
		if v, ok = int64codec.Parse(field, c.Base()); ok {
			c.storage.setFloat64(i, int64codec.ToStorage(v), true)
		}
	case KindString:
		if c.policy == LegacyNullPolicy && string(field) == "NULL" {
			break
		}
		c.storage.setString(i, field, true)
		ok = true
	}

	if !ok {
		c.storage.setNA(i)
		c.stats.NA++
		if len(trimSpace(field)) > 0 && c.typ.Kind != KindString {
			c.stats.Failed++
		}
	}
	return ok
}

// AppendNA stores the NA marker. It returns false when the storage is full.
func (c *Collector) AppendNA() bool {
	if c.storage == nil || c.count >= c.storage.Cap() {
		c.stats.Dropped++
		return false
	}
	c.storage.setNA(c.count)
	c.count++
	c.stats.NA++
	return true
}

// parseInt32 parses a base-10 int32. The whole field, less surrounding
// blanks, must be a number.
func parseInt32(field []byte) (int32, bool) {
	field = trimSpace(field)
	if len(field) == 0 {
		return na.Int32, false
	}
	v, err := strconv.ParseInt(unsafeString(field), 10, 32)
	if err != nil || v == math.MinInt32 {
		return na.Int32, false
	}
	return int32(v), true
}

func parseFloat64(field []byte) (float64, bool) {
	field = trimSpace(field)
	if len(field) == 0 {
		return na.Float64(), false
	}
	v, err := strconv.ParseFloat(unsafeString(field), 64)
	if err != nil {
		return na.Float64(), false
	}
	return v, true
}

// unsafeString views b as a string without copying. The result must not
// outlive b or be retained by the callee.
func unsafeString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
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
