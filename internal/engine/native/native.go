// Package native provides the raw memory blocks that back section build buffers.
//
// Blocks are plain byte slices whose capacity is the usable allocation size.
// An Allocator hands them out, grows them with a copy, and takes them back.
package native

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrOutOfMemory is wrapped by every allocation failure.
var ErrOutOfMemory = errors.New("native: out of memory")

// AllocError describes a failed allocation.
type AllocError struct {
	Op   string
	Size int
	Err  error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("native: %s %d bytes: %v", e.Op, e.Size, e.Err)
}

// Unwrap lets errors.Is match both ErrOutOfMemory and the underlying cause.
func (e *AllocError) Unwrap() []error {
	return []error{ErrOutOfMemory, e.Err}
}

// Allocator is the allocate / grow-copy / release primitive.
type Allocator interface {
	// Alloc returns a zero-length block with capacity of at least size bytes.
	Alloc(size int) ([]byte, error)
	// Grow returns a block with capacity of at least size bytes holding a copy
	// of buf's contents (len preserved). buf must not be used afterwards.
	Grow(buf []byte, size int) ([]byte, error)
	// Free releases a block obtained from Alloc or Grow.
	Free(buf []byte)
	// Stats reports live usage.
	Stats() Stats
}

// Stats is a snapshot of allocator usage.
type Stats struct {
	LiveBytes   int64
	LiveBlocks  int64
	TotalAllocs int64
}

// counters is shared by the allocator implementations. An allocator may be
// used by several workers at once, so updates are atomic.
type counters struct {
	liveBytes   atomic.Int64
	liveBlocks  atomic.Int64
	totalAllocs atomic.Int64
}

func (c *counters) add(size int) {
	c.liveBytes.Add(int64(size))
	c.liveBlocks.Add(1)
	c.totalAllocs.Add(1)
}

func (c *counters) remove(size int) {
	c.liveBytes.Add(-int64(size))
	c.liveBlocks.Add(-1)
}

func (c *counters) snapshot() Stats {
	return Stats{
		LiveBytes:   c.liveBytes.Load(),
		LiveBlocks:  c.liveBlocks.Load(),
		TotalAllocs: c.totalAllocs.Load(),
	}
}

// Kind names an allocator implementation in configuration.
const (
	KindMmap = "mmap"
	KindHeap = "heap"
)

// New returns the allocator registered under kind.
func New(kind string) (Allocator, error) {
	switch kind {
	case KindMmap:
		return NewMmap(), nil
	case KindHeap, "":
		return NewHeap(), nil
	default:
		return nil, fmt.Errorf("native: unknown allocator %q", kind)
	}
}

// Heap allocates blocks on the Go heap.
type Heap struct {
	counters
}

// NewHeap creates a heap allocator.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc implements Allocator.
func (h *Heap) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, &AllocError{Op: "alloc", Size: size, Err: errors.New("negative size")}
	}
	buf := make([]byte, 0, size)
	h.add(cap(buf))
	return buf, nil
}

// Grow implements Allocator.
func (h *Heap) Grow(buf []byte, size int) ([]byte, error) {
	if size <= cap(buf) {
		return buf, nil
	}
	next, err := h.Alloc(size)
	if err != nil {
		return nil, err
	}
	next = append(next, buf...)
	h.Free(buf)
	return next, nil
}

// Free implements Allocator.
func (h *Heap) Free(buf []byte) {
	if buf == nil {
		return
	}
	h.remove(cap(buf))
}

// Stats implements Allocator.
func (h *Heap) Stats() Stats {
	return h.snapshot()
}
