package column

import "github.com/apache/arrow-go/v18/arrow/memory"

// Provider hands out storage for a column that is about to be filled. The
// loader asks for one Storage per column, sized to the predicted row count,
// and attaches a Collector to it.
type Provider interface {
	Allocate(name string, t Type, rows int) (*Storage, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(name string, t Type, rows int) (*Storage, error)

// Allocate calls f.
func (f ProviderFunc) Allocate(name string, t Type, rows int) (*Storage, error) {
	return f(name, t, rows)
}

// ArrowProvider allocates every column from mem.
func ArrowProvider(mem memory.Allocator) Provider {
	return ProviderFunc(func(_ string, t Type, rows int) (*Storage, error) {
		return NewStorage(mem, t.Kind, rows), nil
	})
}
