package csvread

import (
	"errors"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/csvread/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResource struct {
	released *int
}

func (c countingResource) Release() { *c.released++ }

func TestMemoryManager(t *testing.T) {
	t.Run("track and release multiple resources", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)
		manager := NewMemoryManager(mem)

		s1 := NewSeries("a", []int32{1, 2, 3}, nil, mem)
		s2 := NewSeries("b", []string{"x", "y", "z"}, nil, mem)
		manager.Track(NewDataFrame(s1, s2))
		manager.Track(nil)

		assert.Equal(t, 1, manager.Count())
		assert.Positive(t, manager.BytesAllocated())

		manager.ReleaseAll()
		assert.Equal(t, 0, manager.Count())
		assert.Equal(t, 0, manager.BytesAllocated())
	})

	t.Run("release all is idempotent", func(t *testing.T) {
		released := 0
		manager := NewMemoryManager(nil)
		manager.Track(countingResource{&released})

		manager.ReleaseAll()
		manager.ReleaseAll()
		assert.Equal(t, 1, released)
	})

	t.Run("untracked allocator size", func(t *testing.T) {
		manager := NewMemoryManager(memory.NewGoAllocator())
		assert.Equal(t, -1, manager.BytesAllocated())
	})

	t.Run("concurrent access", func(t *testing.T) {
		released := 0
		manager := NewMemoryManager(nil)

		var wg sync.WaitGroup
		const numGoroutines = 10
		const resourcesPerGoroutine = 5

		for range numGoroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range resourcesPerGoroutine {
					manager.Track(countingResource{&released})
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, numGoroutines*resourcesPerGoroutine, manager.Count())
		manager.ReleaseAll()
		assert.Equal(t, numGoroutines*resourcesPerGoroutine, released)
	})
}

func TestMemoryManagerLoad(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	path := testutil.WriteCSV(t, "a,b\n1,x\n2,y\n")
	err := WithMemoryManager(mem, func(m *MemoryManager) error {
		df, report, err := m.Load(Schema{
			Filename:  path,
			ColTypes:  []string{TypeInteger, TypeString},
			NAStrings: []string{"NA"},
		})
		if err != nil {
			return err
		}
		assert.Equal(t, 2, df.Len())
		assert.Equal(t, 2, report.Rows)
		assert.Equal(t, 1, m.Count())
		assert.Positive(t, m.BytesAllocated())
		return nil
	})
	require.NoError(t, err)
}

func TestWithDataFrame(t *testing.T) {
	t.Run("releases after fn", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		err := WithDataFrame(func() (*DataFrame, error) {
			return NewDataFrame(NewSeries("n", []float64{1.5}, nil, mem)), nil
		}, func(df *DataFrame) error {
			assert.Equal(t, 1, df.Len())
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("factory error", func(t *testing.T) {
		boom := errors.New("boom")
		called := false
		err := WithDataFrame(func() (*DataFrame, error) {
			return nil, boom
		}, func(*DataFrame) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.False(t, called)
	})
}
