// Package testutil provides common testing utilities shared by the csvread
// packages:
// - checked memory allocators that fail the test on leaks
// - temporary CSV fixtures, plain or compressed
// - DataFrame assertions
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// TestMemoryContext provides a checked allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	cleanup   func()
}

// Release asserts that every allocation has been freed.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
		tmc.cleanup = nil
	}
}

// SetupMemoryTest creates a checked allocator. Release fails the test if any
// buffer allocated from it is still live.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())

	return &TestMemoryContext{
		Allocator: allocator,
		cleanup: func() {
			allocator.AssertSize(tb, 0)
		},
	}
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the path. A .gz or .zst name is compressed accordingly.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)

	data := []byte(content)
	switch filepath.Ext(name) {
	case ".gz":
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(tb, err)
		require.NoError(tb, w.Close())
		data = buf.Bytes()
	case ".zst":
		enc, err := zstd.NewWriter(nil)
		require.NoError(tb, err)
		data = enc.EncodeAll(data, nil)
		require.NoError(tb, enc.Close())
	case ".xz":
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		require.NoError(tb, err)
		_, err = w.Write(data)
		require.NoError(tb, err)
		require.NoError(tb, w.Close())
		data = buf.Bytes()
	}

	require.NoError(tb, os.WriteFile(path, data, 0o600))
	return path
}

// WriteCSV is WriteFile with the name data.csv.
func WriteCSV(tb testing.TB, content string) string {
	tb.Helper()
	return WriteFile(tb, "data.csv", content)
}

// Bool returns a pointer to b, for optional schema flags.
func Bool(b bool) *bool {
	return &b
}

// Frame is the part of a DataFrame the assertions need.
type Frame interface {
	Columns() []string
	Len() int
}

// TextColumn is a column that renders its values as text.
type TextColumn interface {
	Name() string
	Len() int
	GetAsString(index int, naText string) (string, error)
}

// AssertFrameShape checks the column names and row count of a frame.
func AssertFrameShape(tb testing.TB, df Frame, names []string, rows int) {
	tb.Helper()
	require.Equal(tb, names, df.Columns(), "column names")
	require.Equal(tb, rows, df.Len(), "row count")
}

// AssertColumnText checks every value of a column rendered with naText for
// nulls.
func AssertColumnText(tb testing.TB, col TextColumn, naText string, want ...string) {
	tb.Helper()
	got := make([]string, col.Len())
	for i := range got {
		text, err := col.GetAsString(i, naText)
		require.NoError(tb, err, "column %s row %d", col.Name(), i)
		got[i] = text
	}
	require.Equal(tb, want, got, "column %s", col.Name())
}
