package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerSerializesSameKey(t *testing.T) {
	m := NewManager(16)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("server-1")
			counter++
			m.Unlock("server-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestManagerRoundsStripesToPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 3, 17, 1000} {
		m := NewManager(n)
		size := len(m.stripes)
		assert.GreaterOrEqual(t, size, n)
		assert.Zero(t, size&(size-1), "stripe count %d is not a power of two", size)
	}
}

func TestManagerStripeIsStable(t *testing.T) {
	m := NewManager(64)
	assert.Same(t, m.stripe("server-42"), m.stripe("server-42"))
}
