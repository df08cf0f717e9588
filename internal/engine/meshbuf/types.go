// Package meshbuf accumulates vertices emitted while meshing a section and
// bakes them into upload-ready buffers.
//
// Vertices are kept in one growable buffer per (render pass, facing) pair.
// Baking a pass concatenates its facing buffers in facing order into a single
// buffer and records where each facing landed, so the draw stage can skip
// facings that point away from the camera.
//
// A BuildBuffers value belongs to one worker goroutine. Nothing here locks.
package meshbuf

import "github.com/Faultbox/midgard-mesh/internal/engine/render"

// Material is anything that knows which pass its geometry belongs to.
type Material interface {
	RenderPass() render.Pass
}

// VertexFormat describes the encoded vertex records stored in the buffers.
type VertexFormat interface {
	// Stride is the size of one vertex record in bytes.
	Stride() int
	// DefaultBufferSize is the initial capacity of each facing buffer in bytes.
	DefaultBufferSize() int
}
