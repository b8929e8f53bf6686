package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineBuilder collects the fixed function state of the quad pipeline.
// The shader stages are the only part that changes between builds.
type PipelineBuilder struct {
	shaderStages         []vk.PipelineShaderStageCreateInfo
	vertexInputInfo      vk.PipelineVertexInputStateCreateInfo
	inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	rasterizer           vk.PipelineRasterizationStateCreateInfo
	colorBlendAttachment vk.PipelineColorBlendAttachmentState
	multisampling        vk.PipelineMultisampleStateCreateInfo
}

// NewPipelineBuilder prepares the state for a vertex and a fragment module.
func NewPipelineBuilder(vertex, fragment vk.ShaderModule, src ShaderSource) *PipelineBuilder {
	pb := PipelineBuilder{}

	pb.shaderStages = []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertex,
			PName:  safeString(src.vertexEntry()),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragment,
			PName:  safeString(src.fragmentEntry()),
		},
	}

	bindings := vertexBindings()
	attributes := vertexAttributes()
	pb.vertexInputInfo = vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	pb.inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pb.rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pb.multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		SampleShadingEnable:  vk.False,
		MinSampleShading:     1.0,
	}

	pb.colorBlendAttachment = vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}

	return &pb
}

// BuildPipeline creates the graphics pipeline for subpass 0 of pass with a
// fixed viewport and scissor covering extent.
func (p *PipelineBuilder) BuildPipeline(fns DeviceFuncs, device vk.Device, pass vk.RenderPass,
	layout vk.PipelineLayout, extent vk.Extent2D) (vk.Pipeline, error) {

	viewports := []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}}
	scissors := []vk.Rect2D{{Offset: vk.Offset2D{}, Extent: extent}}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: uint32(len(viewports)),
		PViewports:    viewports,
		ScissorCount:  uint32(len(scissors)),
		PScissors:     scissors,
	}

	attachments := []vk.PipelineColorBlendAttachmentState{p.colorBlendAttachment}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
	}

	pipeline, ret := fns.CreateGraphicsPipeline(device, &vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p.shaderStages)),
		PStages:             p.shaderStages,
		PVertexInputState:   &p.vertexInputInfo,
		PInputAssemblyState: &p.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p.rasterizer,
		PMultisampleState:   &p.multisampling,
		PColorBlendState:    &blendState,
		Layout:              layout,
		RenderPass:          pass,
		Subpass:             0,
	})
	if err := newError(ErrPipelineCreation, "create graphics pipeline", ret); err != nil {
		return vk.NullPipeline, err
	}
	return pipeline, nil
}

// createPipelineLayout exposes one descriptor set layout and no push
// constants.
func createPipelineLayout(fns DeviceFuncs, device vk.Device, setLayout vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	layouts := []vk.DescriptorSetLayout{setLayout}
	layout, ret := fns.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(layouts)),
		PSetLayouts:    layouts,
	})
	if err := newError(ErrPipelineCreation, "create pipeline layout", ret); err != nil {
		return vk.NullPipelineLayout, err
	}
	return layout, nil
}
