//go:build !unix

package native

// Mmap falls back to the Go heap on platforms without anonymous mappings.
type Mmap = Heap

// NewMmap creates the fallback allocator.
func NewMmap() *Mmap {
	return NewHeap()
}
