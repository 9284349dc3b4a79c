package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "small size gets minimum", input: 1, expected: 1024},
		{name: "exactly 1024", input: 1024, expected: 1024},
		{name: "just over 1024", input: 1025, expected: 2048},
		{name: "exact multiple", input: 4096, expected: 4096},
		{name: "proto plane", input: 160 * 160, expected: 25600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizeClass(tt.input))
		})
	}
}

func TestSlicePool_GetReturnsRequestedLength(t *testing.T) {
	buf := Float32.Get(3 * 640 * 640)
	require.Len(t, buf, 3*640*640)
	assert.GreaterOrEqual(t, cap(buf), 3*640*640)
	Float32.Put(buf)
}

func TestSlicePool_BoolBuffersAreCleared(t *testing.T) {
	buf := Bool.Get(100)
	for i := range buf {
		buf[i] = true
	}
	Bool.Put(buf)

	for range 10 {
		again := Bool.Get(100)
		for i, v := range again {
			require.False(t, v, "index %d not cleared", i)
		}
		Bool.Put(again)
	}
}

func TestSlicePool_PutNilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { Float32.Put(nil) })
}

func TestSlicePool_ZeroValueUsable(t *testing.T) {
	var p SlicePool[int]
	buf := p.Get(10)
	assert.Len(t, buf, 10)
	p.Put(buf)
}

func TestSlicePool_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for range 50 {
				b := Float32.Get(1000 + n*100)
				b[0] = float32(n)
				Float32.Put(b)
			}
		}(i)
	}
	wg.Wait()
}
