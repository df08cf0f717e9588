package vertex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	in := Vertex{
		Position: [3]float32{1.5, 16, -0.25},
		Color:    [4]uint8{10, 20, 30, 255},
		TexCoord: [2]float32{0, 1},
	}

	buf := make([]byte, Stride)
	Encode(buf, in)
	out := Decode(buf)

	assert.Equal(t, in.Position, out.Position)
	assert.Equal(t, in.Color, out.Color)
	assert.Equal(t, in.TexCoord, out.TexCoord)
}

func TestTexCoordClamped(t *testing.T) {
	buf := make([]byte, Stride)
	Encode(buf, Vertex{TexCoord: [2]float32{-3, 7}})

	out := Decode(buf)
	assert.Equal(t, [2]float32{0, 1}, out.TexCoord)
}

func TestEncodeShortBufferPanics(t *testing.T) {
	assert.Panics(t, func() { Encode(make([]byte, Stride-1), Vertex{}) })
}

func TestFormat(t *testing.T) {
	var f Compact
	assert.Equal(t, 20, f.Stride())
	assert.GreaterOrEqual(t, f.DefaultBufferSize(), 256*QuadVertices*f.Stride(), "default size should hold a typical section")
}
