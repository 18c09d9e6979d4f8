package bloom

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterBasics(t *testing.T) {
	f := NewWithEstimates(1000, 0.01)

	assert.False(t, f.MayContain("a1b2c3d4e5f6a7b8"))

	f.Add("a1b2c3d4e5f6a7b8")
	assert.True(t, f.MayContain("a1b2c3d4e5f6a7b8"))
}

func TestFilterFalsePositiveRate(t *testing.T) {
	f := NewWithEstimates(10000, 0.01)
	for i := 0; i < 10000; i++ {
		f.Add(fmt.Sprintf("member:%d", i))
	}

	falsePositives := 0
	const probes = 10000
	for i := 0; i < probes; i++ {
		if f.MayContain(fmt.Sprintf("absent:%d", i)) {
			falsePositives++
		}
	}
	// Sized for 1%; 5% leaves generous slack against hash variance.
	assert.Less(t, falsePositives, probes/20)
}

func TestFilterConcurrentAccess(t *testing.T) {
	f := NewWithEstimates(10000, 0.01)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("w%d:%d", w, i)
				f.Add(key)
				assert.True(t, f.MayContain(key))
			}
		}(w)
	}
	wg.Wait()
}

func TestDegenerateParameters(t *testing.T) {
	f := New(0, 0)
	f.Add("x")
	assert.True(t, f.MayContain("x"))

	f = NewWithEstimates(0, 2.0)
	f.Add("y")
	assert.True(t, f.MayContain("y"))
}
