package meshbuf

import (
	"fmt"

	"github.com/Faultbox/midgard-mesh/internal/engine/native"
)

// FacingBuffer is an append-only vertex buffer for one (pass, facing) pair.
//
// The backing block only ever grows. Reset rewinds the write cursor and keeps
// the allocation so the next section can reuse it.
type FacingBuffer struct {
	alloc  native.Allocator
	data   []byte // len is the write cursor, cap is the capacity
	stride int
}

func newFacingBuffer(alloc native.Allocator, stride, initial int) *FacingBuffer {
	if stride <= 0 {
		panic(fmt.Sprintf("meshbuf: invalid vertex stride %d", stride))
	}
	// Whole vertices only, and room for at least one quad.
	initial = max(initial/stride*stride, 4*stride)
	data, err := alloc.Alloc(initial)
	if err != nil {
		panic(err)
	}
	return &FacingBuffer{alloc: alloc, data: data, stride: stride}
}

// Append copies one vertex record into the buffer.
func (b *FacingBuffer) Append(vertex []byte) {
	if len(vertex) != b.stride {
		panic(fmt.Sprintf("meshbuf: vertex is %d bytes, stride is %d", len(vertex), b.stride))
	}
	copy(b.Next(), vertex)
}

// Next reserves the next vertex record and returns it for in-place encoding.
// The slot is only valid until the following Next, Append, Reset or Destroy.
func (b *FacingBuffer) Next() []byte {
	n := len(b.data)
	if n+b.stride > cap(b.data) {
		b.grow(n + b.stride)
	}
	b.data = b.data[:n+b.stride]
	return b.data[n:]
}

func (b *FacingBuffer) grow(need int) {
	if b.data == nil {
		panic("meshbuf: facing buffer used after Destroy")
	}
	size := max(cap(b.data), b.stride)
	for size < need {
		size *= 2
	}
	data, err := b.alloc.Grow(b.data, size)
	if err != nil {
		panic(err)
	}
	b.data = data
}

// IsEmpty reports whether nothing was written since the last Reset.
func (b *FacingBuffer) IsEmpty() bool {
	return len(b.data) == 0
}

// Count returns the number of vertex records written.
func (b *FacingBuffer) Count() int {
	return len(b.data) / b.stride
}

// Len returns the number of bytes written.
func (b *FacingBuffer) Len() int {
	return len(b.data)
}

// Cap returns the capacity of the backing block in bytes.
func (b *FacingBuffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the written bytes without copying. The view is valid until
// the next Reset or Destroy and must not be modified.
func (b *FacingBuffer) Bytes() []byte {
	return b.data
}

// Reset rewinds the write cursor. Capacity is kept.
func (b *FacingBuffer) Reset() {
	b.data = b.data[:0]
}

// Destroy releases the backing block. The buffer must not be used afterwards.
func (b *FacingBuffer) Destroy() {
	if b.data == nil {
		return
	}
	b.alloc.Free(b.data)
	b.data = nil
}
