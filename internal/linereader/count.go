package linereader

import (
	"bytes"
	"errors"
	"io"
)

// CountNewlines scans src in chunks of chunkSize bytes and returns the number
// of lines: one per '\n', plus one when the data does not end with a newline.
// It never splits lines, which makes it much cheaper than a Reader pass.
func CountNewlines(src io.Reader, chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	n := 0
	var last byte
	seen := false
	for {
		got, err := io.ReadFull(src, buf)
		if got > 0 {
			n += bytes.Count(buf[:got], []byte{'\n'})
			last = buf[got-1]
			seen = true
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, err
		}
	}
	if seen && last != '\n' {
		n++
	}
	return n, nil
}

// CountFileLines opens path (decompressing if needed) and counts its lines
// with CountNewlines.
func CountFileLines(path string, chunkSize int) (int, error) {
	src, closer, err := openSource(path)
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	return CountNewlines(src, chunkSize)
}

// CountLines counts the lines of path by reading them one at a time. It
// agrees with CountFileLines and exists to cross-check the fast path.
func CountLines(path string, opts ...Option) (int, error) {
	r, err := Open(path, opts...)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for _, ok := r.Next(); ok; _, ok = r.Next() {
		n++
	}
	return n, r.Err()
}
