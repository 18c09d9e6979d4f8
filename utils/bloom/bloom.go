// Package bloom implements a small concurrency-safe bloom filter used as a
// negative cache for issued invite codes: a code the filter has never seen is
// guaranteed unused, so the uniqueness check can skip the database.
package bloom

import (
	"math"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/twmb/murmur3"
)

// Filter is a standard double-hashing bloom filter over strings.
type Filter struct {
	mu   sync.RWMutex
	bits *bitset.BitSet
	m    uint64
	k    uint64
}

// New creates a filter with m bits and k hash functions.
func New(m, k uint) *Filter {
	if m == 0 {
		m = 1
	}
	if k == 0 {
		k = 1
	}
	return &Filter{
		bits: bitset.New(m),
		m:    uint64(m),
		k:    uint64(k),
	}
}

// NewWithEstimates creates a filter sized for n expected entries at the given
// false-positive rate.
func NewWithEstimates(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	m := uint(math.Ceil(-1 * float64(n) * math.Log(fpRate) / (math.Ln2 * math.Ln2)))
	k := uint(math.Round(float64(m) / float64(n) * math.Ln2))
	if k == 0 {
		k = 1
	}
	return New(m, k)
}

// indexes derives k bit positions via Kirsch-Mitzenmacher double hashing.
func (f *Filter) indexes(s string) []uint {
	h1 := murmur3.StringSum64(s)
	h2 := murmur3.SeedStringSum64(0x9747b28c, s)
	out := make([]uint, f.k)
	for i := uint64(0); i < f.k; i++ {
		out[i] = uint((h1 + i*h2) % f.m)
	}
	return out
}

// Add records s in the filter.
func (f *Filter) Add(s string) {
	idx := f.indexes(s)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range idx {
		f.bits.Set(i)
	}
}

// MayContain reports whether s might have been added. A false result is
// definitive: s was never added.
func (f *Filter) MayContain(s string) bool {
	idx := f.indexes(s)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, i := range idx {
		if !f.bits.Test(i) {
			return false
		}
	}
	return true
}
