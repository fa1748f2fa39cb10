// Package linereader provides a chunked line reader tuned for bulk loading.
//
// The reader pulls large chunks from the underlying stream and hands out
// lines as slices of its own storage. A returned line is only valid until
// the next call to Next; callers that need to keep bytes must copy them.
// Lines that span chunk boundaries are assembled in a separate growable
// buffer, so the common case costs no copy at all.
package linereader

import (
	"bytes"
	"errors"
	"io"
)

// DefaultChunkSize is the number of bytes read from the stream at a time.
const DefaultChunkSize = 1 << 20

// Reader returns successive lines of a byte stream with the newline removed.
type Reader struct {
	src    io.Reader
	closer io.Closer

	chunk []byte // read buffer, fixed size
	start int    // offset of the next unread byte in chunk
	end   int    // number of valid bytes in chunk

	line    []byte // accumulates a line spanning chunks
	pending bool   // line holds the head of the current line

	stripCR bool
	lastLen int
	eof     bool // src is exhausted
	done    bool // end of lines has been reported
	err     error
}

// Option configures a Reader
type Option func(*Reader)

// WithChunkSize sets the read chunk size. Values below 1 are ignored.
func WithChunkSize(size int) Option {
	return func(r *Reader) {
		if size > 0 {
			r.chunk = make([]byte, size)
		}
	}
}

// WithStripCR controls whether a trailing '\r' is removed from each line.
// It is enabled by default.
func WithStripCR(strip bool) Option {
	return func(r *Reader) {
		r.stripCR = strip
	}
}

// New attaches a Reader to src. If src implements io.Closer it is closed
// when the end of input is reached or Close is called.
func New(src io.Reader, opts ...Option) *Reader {
	r := &Reader{src: src, stripCR: true}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.chunk == nil {
		r.chunk = make([]byte, DefaultChunkSize)
	}
	return r
}

// Open attaches a Reader to the file at path, decompressing it when the
// extension names a supported codec. Failure to open is reported here and
// never by Next.
func Open(path string, opts ...Option) (*Reader, error) {
	src, closer, err := openSource(path)
	if err != nil {
		return nil, err
	}
	r := New(src, opts...)
	r.closer = closer
	return r, nil
}

// Next returns the next line and true, or nil and false at the end of input.
// The end is reported once; the stream is released at that point.
func (r *Reader) Next() ([]byte, bool) {
	if r.done {
		return nil, false
	}

	for {
		if r.start < r.end {
			rest := r.chunk[r.start:r.end]
			if k := bytes.IndexByte(rest, '\n'); k >= 0 {
				r.start += k + 1
				return r.emit(rest[:k]), true
			}
			// No newline in what is left of the chunk: carry it over.
			r.line = append(r.line[:r.carried()], rest...)
			r.pending = true
			r.start = r.end
		}

		if r.eof {
			if r.pending {
				return r.emit(nil), true
			}
			r.finish()
			return nil, false
		}
		r.fill()
	}
}

// Len returns the length of the most recently returned line.
func (r *Reader) Len() int {
	return r.lastLen
}

// Err returns the first non-EOF error encountered while reading.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying stream. It is safe to call more than once.
func (r *Reader) Close() error {
	r.done = true
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// emit finishes the current line with tail and returns it.
func (r *Reader) emit(tail []byte) []byte {
	var out []byte
	if r.pending {
		r.line = append(r.line, tail...)
		r.pending = false
		out = r.line
		r.line = r.line[:0]
	} else {
		out = tail
	}
	if r.stripCR && len(out) > 0 && out[len(out)-1] == '\r' {
		out = out[:len(out)-1]
	}
	r.lastLen = len(out)
	return out
}

// carried is the number of bytes already accumulated for a pending line.
func (r *Reader) carried() int {
	if r.pending {
		return len(r.line)
	}
	return 0
}

func (r *Reader) fill() {
	n, err := io.ReadFull(r.src, r.chunk)
	r.start, r.end = 0, n
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		r.eof = true
	default:
		r.err = err
		r.eof = true
	}
}

func (r *Reader) finish() {
	r.lastLen = 0
	if err := r.Close(); err != nil && r.err == nil {
		r.err = err
	}
}
