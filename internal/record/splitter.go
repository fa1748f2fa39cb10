// Package record splits delimited lines into fields.
//
// A Splitter records field boundaries as offsets into the line it was given
// and returns fields as sub-slices of that line, so splitting allocates
// nothing once the offset storage has grown to the widest line seen.
//
// Double quotes toggle delimiter recognition: a delimiter between an odd and
// an even quote belongs to the field. There is no escaping and quotes are
// kept in the field text unless WithStripQuotes is set. A quoted field cannot
// span lines.
package record

// DefaultDelimiter is the field separator used when none is configured.
const DefaultDelimiter = ','

const quote = '"'

// Splitter splits one line at a time. It is not safe for concurrent use.
type Splitter struct {
	delim       byte
	stripQuotes bool

	line   []byte
	starts []int
	ends   []int

	owned []byte // backing store for SplitString
}

// Option configures a Splitter
type Option func(*Splitter)

// WithDelimiter sets the field separator.
func WithDelimiter(d byte) Option {
	return func(s *Splitter) {
		s.delim = d
	}
}

// WithStripQuotes removes one pair of enclosing double quotes from fields
// that start and end with a quote.
func WithStripQuotes(strip bool) Option {
	return func(s *Splitter) {
		s.stripQuotes = strip
	}
}

// NewSplitter creates a Splitter.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{delim: DefaultDelimiter}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delimiter returns the configured field separator.
func (s *Splitter) Delimiter() byte {
	return s.delim
}

// Split records the field boundaries of line and returns the number of
// fields, which is at least one. Fields remain valid as long as line does.
func (s *Splitter) Split(line []byte) int {
	s.line = line
	s.starts = s.starts[:0]
	s.ends = s.ends[:0]

	inQuotes := false
	start := 0
	for i, c := range line {
		switch {
		case c == quote:
			inQuotes = !inQuotes
		case c == s.delim && !inQuotes:
			s.add(start, i)
			start = i + 1
		}
	}
	s.add(start, len(line))
	return len(s.starts)
}

// SplitString copies text into storage owned by the Splitter and splits the
// copy. It is meant for lines that must outlive the reader buffer, such as a
// header.
func (s *Splitter) SplitString(text string) int {
	s.owned = append(s.owned[:0], text...)
	return s.Split(s.owned)
}

func (s *Splitter) add(start, end int) {
	if s.stripQuotes && end-start >= 2 && s.line[start] == quote && s.line[end-1] == quote {
		start++
		end--
	}
	s.starts = append(s.starts, start)
	s.ends = append(s.ends, end)
}

// NumFields returns the field count of the last split.
func (s *Splitter) NumFields() int {
	return len(s.starts)
}

// Field returns the i-th field, or an empty slice when i is out of range.
func (s *Splitter) Field(i int) []byte {
	if i < 0 || i >= len(s.starts) {
		return nil
	}
	return s.line[s.starts[i]:s.ends[i]:s.ends[i]]
}

// Len returns the length of the i-th field, or -1 when there is no such field.
func (s *Splitter) Len(i int) int {
	if i < 0 || i >= len(s.starts) {
		return -1
	}
	return s.ends[i] - s.starts[i]
}

// Offset returns where the i-th field starts in the split line, or -1 when
// there is no such field.
func (s *Splitter) Offset(i int) int {
	if i < 0 || i >= len(s.starts) {
		return -1
	}
	return s.starts[i]
}

// Strings returns copies of all fields of the last split.
func (s *Splitter) Strings() []string {
	out := make([]string, len(s.starts))
	for i := range s.starts {
		out[i] = string(s.Field(i))
	}
	return out
}
