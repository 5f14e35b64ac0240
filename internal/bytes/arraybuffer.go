// Package bytes provides a reference-counted byte buffer, a growable
// BufferQueue built on top of it, and the hex/base64 encodings used to
// stringify buffer contents on the wire.
package bytes

import (
	"fmt"
	"sync"
)

// ArrayBuffer owns a heap byte allocation shared by any number of Buffer
// views. The allocation is freed (made eligible for GC) once no view
// references it any more; Go's garbage collector does this bookkeeping,
// so ArrayBuffer keeps no reference count of its own.
type ArrayBuffer struct {
	mu   sync.Mutex
	data []byte
}

// NewArrayBuffer allocates a zeroed ArrayBuffer of the given size.
func NewArrayBuffer(size int) *ArrayBuffer {
	if size < 0 {
		size = 0
	}
	return &ArrayBuffer{data: make([]byte, size)}
}

// ArrayBufferFrom wraps an existing byte slice without copying it. The
// caller must not mutate src after handing it to ArrayBufferFrom unless
// it intends that mutation to be visible through every Buffer view.
func ArrayBufferFrom(src []byte) *ArrayBuffer {
	return &ArrayBuffer{data: src}
}

// Size returns the number of bytes currently allocated.
func (a *ArrayBuffer) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.data)
}

// Data returns the live backing slice. Callers that need a stable
// snapshot should copy it first.
func (a *ArrayBuffer) Data() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data
}

// Slice returns a new ArrayBuffer aliasing the same underlying array
// between [start, end). It never copies bytes.
func (a *ArrayBuffer) Slice(start, end int) (*ArrayBuffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if end < 0 {
		end = len(a.data)
	}
	if start < 0 || end > len(a.data) || start > end {
		return nil, fmt.Errorf("bytes: slice [%d:%d] out of range for length %d", start, end, len(a.data))
	}
	return &ArrayBuffer{data: a.data[start:end:end]}, nil
}

// Resize reallocates the buffer to exactly n bytes, copying over
// whatever previously fit. Unlike Slice, this never aliases the old
// allocation: per spec.md's Buffer invariants, a view's write must
// never silently grow into memory another view still expects to be
// immutable.
func (a *ArrayBuffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next := make([]byte, n)
	copy(next, a.data)
	a.data = next
}
