package tortuga

import (
	"encoding/binary"
	"math"

	lin "github.com/xlab/linmath"
	vk "github.com/vulkan-go/vulkan"
)

// Vertex is one demo quad corner: position followed by color.
type Vertex struct {
	Pos   [3]float32
	Color [3]float32
}

const (
	vertexStride    = 24
	colorOffset     = 12
	dataAlignment   = 16
	quadIndexCount  = 6
	uniformsSize    = 16 + 64
	uint16IndexSize = 2
)

var quadVertices = []Vertex{
	{Pos: [3]float32{-0.5, -0.5, 0}, Color: [3]float32{1, 0, 0}},
	{Pos: [3]float32{-0.5, 0.5, 0}, Color: [3]float32{0, 1, 0}},
	{Pos: [3]float32{0.5, 0.5, 0}, Color: [3]float32{1, 1, 1}},
	{Pos: [3]float32{0.5, -0.5, 0}, Color: [3]float32{0, 1, 0}},
}

var quadIndices = []uint16{0, 1, 2, 2, 3, 0}

// Uniforms is the per-image uniform block. Color is a vec3 padded out to a
// vec4 as std140 requires.
type Uniforms struct {
	Color [4]float32
	MVP   lin.Mat4x4
}

// DefaultUniforms leaves vertex colors untouched.
func DefaultUniforms() Uniforms {
	return Uniforms{
		Color: [4]float32{1, 1, 1, 1},
		MVP:   DefaultMVP(),
	}
}

// Bytes is the std140 encoding of u.
func (u Uniforms) Bytes() []byte {
	out := make([]byte, 0, uniformsSize)
	out = appendFloats(out, u.Color[:]...)
	for _, col := range u.MVP {
		out = appendFloats(out, col[:]...)
	}
	return out
}

func vertexBytes(vertices []Vertex) []byte {
	out := make([]byte, 0, len(vertices)*vertexStride)
	for _, v := range vertices {
		out = appendFloats(out, v.Pos[:]...)
		out = appendFloats(out, v.Color[:]...)
	}
	return out
}

func indexBytes(indices []uint16) []byte {
	out := make([]byte, 0, len(indices)*uint16IndexSize)
	for _, i := range indices {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}

func appendFloats(out []byte, values ...float32) []byte {
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func vertexBindings() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    vertexStride,
		InputRate: vk.VertexInputRateVertex,
	}}
}

func vertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: colorOffset},
	}
}
