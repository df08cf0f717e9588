// Package vertex encodes terrain vertices into the fixed-stride records
// stored by the section build buffers.
package vertex

import (
	"encoding/binary"
	"math"
)

// Layout of one Compact record, little endian:
//
//	0  position x, y, z  3 x float32 (section-local block units)
//	12 color             RGBA8
//	16 texcoord u, v     2 x uint16 (unorm)
const (
	Stride = 20

	offsetPosition = 0
	offsetColor    = 12
	offsetTexCoord = 16
)

// QuadVertices is the number of vertices emitted per quad.
const QuadVertices = 4

// DefaultBufferSize is the initial capacity of each facing buffer. Most
// sections fit without growing.
const DefaultBufferSize = 32 * 1024

// Vertex is the decoded form of one record.
type Vertex struct {
	Position [3]float32
	Color    [4]uint8
	TexCoord [2]float32
}

// Compact is the vertex format used by the meshing pipeline.
type Compact struct{}

// Stride implements meshbuf.VertexFormat.
func (Compact) Stride() int { return Stride }

// DefaultBufferSize implements meshbuf.VertexFormat.
func (Compact) DefaultBufferSize() int { return DefaultBufferSize }

// Encode writes v into dst, which must be at least Stride bytes.
func Encode(dst []byte, v Vertex) {
	_ = dst[Stride-1]
	le := binary.LittleEndian
	le.PutUint32(dst[offsetPosition:], math.Float32bits(v.Position[0]))
	le.PutUint32(dst[offsetPosition+4:], math.Float32bits(v.Position[1]))
	le.PutUint32(dst[offsetPosition+8:], math.Float32bits(v.Position[2]))
	copy(dst[offsetColor:offsetColor+4], v.Color[:])
	le.PutUint16(dst[offsetTexCoord:], unorm16(v.TexCoord[0]))
	le.PutUint16(dst[offsetTexCoord+2:], unorm16(v.TexCoord[1]))
}

// Decode reads one record from src.
func Decode(src []byte) Vertex {
	_ = src[Stride-1]
	le := binary.LittleEndian
	var v Vertex
	v.Position[0] = math.Float32frombits(le.Uint32(src[offsetPosition:]))
	v.Position[1] = math.Float32frombits(le.Uint32(src[offsetPosition+4:]))
	v.Position[2] = math.Float32frombits(le.Uint32(src[offsetPosition+8:]))
	copy(v.Color[:], src[offsetColor:offsetColor+4])
	v.TexCoord[0] = float32(le.Uint16(src[offsetTexCoord:])) / math.MaxUint16
	v.TexCoord[1] = float32(le.Uint16(src[offsetTexCoord+2:])) / math.MaxUint16
	return v
}

func unorm16(f float32) uint16 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return math.MaxUint16
	default:
		return uint16(f*math.MaxUint16 + 0.5)
	}
}
