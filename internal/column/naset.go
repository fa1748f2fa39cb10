package column

import "github.com/cespare/xxhash/v2"

// NASet is the set of literal field texts that mean "missing". Matching is
// case-sensitive and exact: a field matches only an entry of the same length
// and bytes.
type NASet struct {
	entries []string
	buckets map[uint64][]string
	lengths uint64 // bit n set when some entry has length n (n < 64)
	long    bool   // some entry is 64 bytes or longer
}

// NewNASet builds a set from entries. Duplicates are ignored.
func NewNASet(entries []string) *NASet {
	s := &NASet{buckets: make(map[uint64][]string, len(entries))}
	for _, e := range entries {
		h := xxhash.Sum64String(e)
		if containsString(s.buckets[h], e) {
			continue
		}
		s.buckets[h] = append(s.buckets[h], e)
		s.entries = append(s.entries, e)
		if len(e) < 64 {
			s.lengths |= 1 << uint(len(e))
		} else {
			s.long = true
		}
	}
	return s
}

// Contains reports whether field is one of the NA texts. A nil set contains
// nothing.
func (s *NASet) Contains(field []byte) bool {
	if s == nil || len(s.entries) == 0 {
		return false
	}
	if n := len(field); n < 64 {
		if s.lengths&(1<<uint(n)) == 0 {
			return false
		}
	} else if !s.long {
		return false
	}
	for _, e := range s.buckets[xxhash.Sum64(field)] {
		if len(e) == len(field) && string(field) == e {
			return true
		}
	}
	return false
}

// ContainsString is Contains for a string argument.
func (s *NASet) ContainsString(field string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.buckets[xxhash.Sum64String(field)] {
		if e == field {
			return true
		}
	}
	return false
}

// HasEmpty reports whether the empty text is NA.
func (s *NASet) HasEmpty() bool {
	return s != nil && s.lengths&1 != 0
}

// Len returns the number of distinct entries.
func (s *NASet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the entries in the order they were first given.
func (s *NASet) Entries() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.entries...)
}

// First returns the first entry, used as the text of NA on output, or ""
// for an empty set.
func (s *NASet) First() string {
	if s == nil || len(s.entries) == 0 {
		return ""
	}
	return s.entries[0]
}

func containsString(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
