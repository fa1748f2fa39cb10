package csvread

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Releasable represents any resource that can be released to free memory.
//
// DataFrames, Series and Arrow records hold reference-counted buffers.
// Always call Release() when done with a resource:
//
//	df, _, err := csvread.Load(schema)
//	if err != nil {
//		return err
//	}
//	defer df.Release()
type Releasable interface {
	Release()
}

// MemoryManager owns an allocator and the resources loaded from it, and
// releases them together.
//
// The MemoryManager is safe for concurrent use from multiple goroutines.
//
// Example:
//
//	err := csvread.WithMemoryManager(nil, func(m *csvread.MemoryManager) error {
//		for _, s := range schemas {
//			df, _, err := m.Load(s)
//			if err != nil {
//				return err
//			}
//			process(df) // released when the function returns
//		}
//		return nil
//	})
type MemoryManager struct {
	allocator memory.Allocator
	resources []Releasable
	mu        sync.Mutex
}

// NewMemoryManager creates a memory manager with the given allocator. A nil
// allocator means a fresh Go allocator.
func NewMemoryManager(allocator memory.Allocator) *MemoryManager {
	if allocator == nil {
		allocator = memory.NewGoAllocator()
	}
	return &MemoryManager{allocator: allocator}
}

// Allocator returns the manager's allocator.
func (m *MemoryManager) Allocator() memory.Allocator {
	return m.allocator
}

// Load loads schema with the manager's allocator and tracks the frame.
func (m *MemoryManager) Load(schema Schema, opts ...Option) (*DataFrame, *Report, error) {
	opts = append([]Option{WithAllocator(m.allocator)}, opts...)
	df, report, err := Load(schema, opts...)
	if err != nil {
		return nil, nil, err
	}
	m.Track(df)
	return df, report, nil
}

// Track adds a resource to be managed and automatically released
func (m *MemoryManager) Track(resource Releasable) {
	if resource == nil {
		return
	}
	m.mu.Lock()
	m.resources = append(m.resources, resource)
	m.mu.Unlock()
}

// Count returns the number of tracked resources
func (m *MemoryManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

// BytesAllocated reports the bytes currently held by the allocator, or -1
// when the allocator does not track them.
func (m *MemoryManager) BytesAllocated() int {
	if a, ok := m.allocator.(interface{ CurrentAlloc() int }); ok {
		return a.CurrentAlloc()
	}
	return -1
}

// ReleaseAll releases tracked resources in reverse order and clears the list.
func (m *MemoryManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.resources) - 1; i >= 0; i-- {
		m.resources[i].Release()
	}
	m.resources = m.resources[:0]
}

// WithDataFrame runs fn on the frame built by factory and releases it
// afterwards. A factory error is returned as is.
func WithDataFrame(factory func() (*DataFrame, error), fn func(*DataFrame) error) error {
	df, err := factory()
	if err != nil {
		return err
	}
	defer df.Release()
	return fn(df)
}

// WithMemoryManager creates a memory manager, executes a function with it, and releases all tracked resources
func WithMemoryManager(allocator memory.Allocator, fn func(*MemoryManager) error) error {
	manager := NewMemoryManager(allocator)
	defer manager.ReleaseAll()
	return fn(manager)
}
