// Package mempool keeps size-classed slice buffers for hot inference paths
// (input tensors, per-detection mask planes).
package mempool

import "sync"

const sizeStep = 1024

// SlicePool hands out []T buffers bucketed by size class. The zero value is
// ready to use.
type SlicePool[T any] struct {
	classes sync.Map // size class (int) -> *sync.Pool
	zero    bool
}

var (
	// Float32 backs input tensors and mask logits. Buffers are not cleared.
	Float32 = &SlicePool[float32]{}
	// Bool backs binary masks. Buffers are cleared on Get.
	Bool = &SlicePool[bool]{zero: true}
)

// sizeClass rounds n up to the next multiple of 1024, with 1024 as the floor.
func sizeClass(n int) int {
	if n <= sizeStep {
		return sizeStep
	}
	return (n + sizeStep - 1) / sizeStep * sizeStep
}

func (sp *SlicePool[T]) pool(cls int) *sync.Pool {
	p, _ := sp.classes.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]T, cls)
		return &buf
	}})
	return p.(*sync.Pool)
}

// Get returns a buffer of length n. Its capacity may be larger.
func (sp *SlicePool[T]) Get(n int) []T {
	if n < 0 {
		n = 0
	}
	cls := sizeClass(n)
	bp, ok := sp.pool(cls).Get().(*[]T)
	if !ok || cap(*bp) < cls {
		buf := make([]T, cls)
		bp = &buf
	}
	buf := (*bp)[:n]
	if sp.zero {
		clear(buf)
	}
	return buf
}

// Put returns buf to its size class. Nil slices are ignored.
func (sp *SlicePool[T]) Put(buf []T) {
	if buf == nil {
		return
	}
	full := buf[:cap(buf)]
	sp.pool(sizeClass(cap(buf))).Put(&full)
}
