package tortuga

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/naga"
	vk "github.com/vulkan-go/vulkan"
)

const defaultEntryPoint = "main"

// ShaderSource holds the SPIR-V for the two pipeline stages. Entry points
// default to "main".
type ShaderSource struct {
	Vertex        []byte
	Fragment      []byte
	VertexEntry   string
	FragmentEntry string
}

// Validate checks both blobs are non-empty whole SPIR-V words.
func (s ShaderSource) Validate() error {
	for _, stage := range []struct {
		name string
		code []byte
	}{{"vertex", s.Vertex}, {"fragment", s.Fragment}} {
		switch {
		case len(stage.code) == 0:
			return failure(ErrShaderModule, "validate shader", "empty %s stage", stage.name)
		case len(stage.code)%4 != 0:
			return failure(ErrShaderModule, "validate shader", "%s stage is %d bytes, not a multiple of 4", stage.name, len(stage.code))
		}
	}
	return nil
}

func (s ShaderSource) vertexEntry() string {
	if s.VertexEntry == "" {
		return defaultEntryPoint
	}
	return s.VertexEntry
}

func (s ShaderSource) fragmentEntry() string {
	if s.FragmentEntry == "" {
		return defaultEntryPoint
	}
	return s.FragmentEntry
}

// CompileWGSL translates a vertex and a fragment WGSL module to SPIR-V.
// Each module must declare its stage function as "main".
func CompileWGSL(vertex, fragment string) (ShaderSource, error) {
	vert, err := naga.Compile(vertex)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("vertex shader: %w", err)
	}
	frag, err := naga.Compile(fragment)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("fragment shader: %w", err)
	}
	return ShaderSource{Vertex: vert, Fragment: frag}, nil
}

// createShaderModule wraps one SPIR-V blob. The length must already be a
// multiple of four.
func createShaderModule(fns DeviceFuncs, device vk.Device, code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return vk.NullShaderModule, failure(ErrShaderModule, "create shader module", "code size %d", len(code))
	}
	module, ret := fns.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	})
	if err := newError(ErrShaderModule, "create shader module", ret); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}

// sliceUint32 reinterprets SPIR-V bytes as the words the driver expects.
func sliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
