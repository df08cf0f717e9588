//go:build unix

package native

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Mmap allocates blocks as anonymous private mappings outside the Go heap.
// Capacities are rounded up to the page size.
type Mmap struct {
	counters
	pageSize int
}

// NewMmap creates an mmap-backed allocator.
func NewMmap() *Mmap {
	return &Mmap{pageSize: os.Getpagesize()}
}

func (m *Mmap) roundUp(size int) int {
	if size <= 0 {
		return m.pageSize
	}
	return (size + m.pageSize - 1) / m.pageSize * m.pageSize
}

// Alloc implements Allocator.
func (m *Mmap) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, &AllocError{Op: "mmap", Size: size, Err: errors.New("negative size")}
	}
	length := m.roundUp(size)
	mem, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, &AllocError{Op: "mmap", Size: length, Err: err}
	}
	m.add(length)
	return mem[:0], nil
}

// Grow implements Allocator.
func (m *Mmap) Grow(buf []byte, size int) ([]byte, error) {
	if size <= cap(buf) {
		return buf, nil
	}
	next, err := m.Alloc(size)
	if err != nil {
		return nil, err
	}
	next = append(next, buf...)
	m.Free(buf)
	return next, nil
}

// Free implements Allocator. The full mapping is recovered from cap(buf).
func (m *Mmap) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	length := cap(buf)
	// Munmap only fails for blocks it did not map, which is a caller bug.
	if err := unix.Munmap(buf[:length]); err != nil {
		panic(&AllocError{Op: "munmap", Size: length, Err: err})
	}
	m.remove(length)
}

// Stats implements Allocator.
func (m *Mmap) Stats() Stats {
	return m.snapshot()
}
