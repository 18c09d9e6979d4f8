package snowflake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(0)
	assert.NoError(t, err)

	_, err = NewGenerator(maxWorkerID)
	assert.NoError(t, err)

	_, err = NewGenerator(maxWorkerID + 1)
	assert.ErrorIs(t, err, ErrInvalidWorkerID)

	_, err = NewGenerator(-1)
	assert.ErrorIs(t, err, ErrInvalidWorkerID)
}

func TestNextIDMonotonic(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	var prev int64
	for i := 0; i < 10000; i++ {
		id, err := g.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestNextIDUniqueUnderConcurrency(t *testing.T) {
	g, err := NewGenerator(3)
	require.NoError(t, err)

	const goroutines = 8
	const perGoroutine = 2000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, goroutines*perGoroutine)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id, err := g.NextID()
				assert.NoError(t, err)
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestEmbeddedFields(t *testing.T) {
	g, err := NewGenerator(7)
	require.NoError(t, err)

	id, err := g.NextID()
	require.NoError(t, err)

	assert.EqualValues(t, 7, WorkerID(id))
	assert.Greater(t, Timestamp(id), epoch)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12345", Format(12345))
}
