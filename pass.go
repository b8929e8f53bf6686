package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// Pass is the single render pass and pipeline drawing the demo quad into
// every swapchain image. Everything sized by the swapchain is rebuilt on
// recreation; the descriptor set layout, the quad data and the uniform
// arena survive until Destroy.
type Pass struct {
	device     *Device
	fns        DeviceFuncs
	handle     vk.Device
	clearColor [4]float32
	shaders    ShaderSource

	setLayout    vk.DescriptorSetLayout
	uniformArena *Arena
	vertices     Allocation
	indices      Allocation

	extent         vk.Extent2D
	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
	descriptorPool vk.DescriptorPool
	commandPool    vk.CommandPool

	views          []vk.ImageView
	framebuffers   []vk.Framebuffer
	uniforms       []Allocation
	sets           []vk.DescriptorSet
	commandBuffers []vk.CommandBuffer

	builds int
}

// NewPass uploads the quad, creates the uniform arena and builds the pass
// against the device's current swapchain.
func NewPass(d *Device, shaders ShaderSource, cfg Config) (p *Pass, err error) {
	if err = shaders.Validate(); err != nil {
		return nil, err
	}
	p = &Pass{
		device:     d,
		fns:        d.fns,
		handle:     d.handle,
		clearColor: cfg.ClearColor,
		shaders:    shaders,
	}

	var undo cleanupStack
	defer undo.run()
	undo.push(p.Destroy)

	if p.uniformArena, err = NewArena(d, UsageUniform, vk.DeviceSize(cfg.UniformArenaSize)); err != nil {
		return nil, err
	}

	vb := vertexBytes(quadVertices)
	if p.vertices, err = d.arena.Allocate(dataAlignment, UsageVertex, vk.DeviceSize(len(vb))); err != nil {
		return nil, err
	}
	if err = d.arena.Write(p.vertices, vb); err != nil {
		return nil, err
	}

	ib := indexBytes(quadIndices)
	if p.indices, err = d.arena.Allocate(dataAlignment, UsageIndex, vk.DeviceSize(len(ib))); err != nil {
		return nil, err
	}
	if err = d.arena.Write(p.indices, ib); err != nil {
		return nil, err
	}

	if err = p.Build(); err != nil {
		return nil, err
	}
	undo.release()
	return p, nil
}

// Build creates every swapchain sized object and records one command buffer
// per image. A failure leaves the pass torn down.
func (p *Pass) Build() (err error) {
	sc := p.device.swapchain
	if sc == nil || len(sc.images) == 0 {
		return failure(ErrNoSwapchainImages, "build pass", "no swapchain images")
	}
	if p.renderPass != vk.NullRenderPass {
		return failure(ErrRenderPassCreation, "build pass", "already built")
	}
	fns, device := p.fns, p.handle
	count := len(sc.images)

	var undo cleanupStack
	defer undo.run()
	undo.push(p.Teardown)

	if p.setLayout == vk.NullDescriptorSetLayout {
		if p.setLayout, err = createUniformSetLayout(fns, device); err != nil {
			return err
		}
	}
	if p.descriptorPool, err = createDescriptorPool(fns, device, count); err != nil {
		return err
	}
	if p.pipelineLayout, err = createPipelineLayout(fns, device, p.setLayout); err != nil {
		return err
	}
	if p.renderPass, err = createRenderPass(fns, device, sc.format.Format); err != nil {
		return err
	}
	if p.pipeline, err = p.createPipeline(sc.extent); err != nil {
		return err
	}

	p.views = make([]vk.ImageView, 0, count)
	p.framebuffers = make([]vk.Framebuffer, 0, count)
	for _, image := range sc.images {
		view, err := createImageView(fns, device, image, sc.format.Format)
		if err != nil {
			return err
		}
		p.views = append(p.views, view)

		framebuffer, err := createFramebuffer(fns, device, p.renderPass, view, sc.extent)
		if err != nil {
			return err
		}
		p.framebuffers = append(p.framebuffers, framebuffer)
	}

	if p.commandPool, err = createCommandPool(fns, device, p.device.families.Graphics); err != nil {
		return err
	}

	uniforms := DefaultUniforms().Bytes()
	p.uniforms = make([]Allocation, 0, count)
	p.sets = make([]vk.DescriptorSet, 0, count)
	for i := 0; i < count; i++ {
		alloc, err := p.uniformArena.Allocate(dataAlignment, UsageUniform, vk.DeviceSize(len(uniforms)))
		if err != nil {
			return err
		}
		p.uniforms = append(p.uniforms, alloc)
		if err := p.uniformArena.Write(alloc, uniforms); err != nil {
			return err
		}

		set, err := allocateUniformSet(fns, device, p.descriptorPool, p.setLayout, alloc)
		if err != nil {
			return err
		}
		p.sets = append(p.sets, set)
	}

	if p.commandBuffers, err = allocateCommandBuffers(fns, device, p.commandPool, count); err != nil {
		return err
	}
	for i := range p.commandBuffers {
		if err = p.record(i, sc.extent); err != nil {
			return err
		}
	}

	p.extent = sc.extent
	p.builds++
	Logger().Debug("vulkan: pass built",
		"images", count, "width", sc.extent.Width, "height", sc.extent.Height, "builds", p.builds)
	undo.release()
	return nil
}

// createPipeline compiles both shader modules, builds the pipeline and
// drops the modules again.
func (p *Pass) createPipeline(extent vk.Extent2D) (vk.Pipeline, error) {
	vert, err := createShaderModule(p.fns, p.handle, p.shaders.Vertex)
	if err != nil {
		return vk.NullPipeline, err
	}
	defer p.fns.DestroyShaderModule(p.handle, vert)

	frag, err := createShaderModule(p.fns, p.handle, p.shaders.Fragment)
	if err != nil {
		return vk.NullPipeline, err
	}
	defer p.fns.DestroyShaderModule(p.handle, frag)

	return NewPipelineBuilder(vert, frag, p.shaders).
		BuildPipeline(p.fns, p.handle, p.renderPass, p.pipelineLayout, extent)
}

func (p *Pass) record(i int, extent vk.Extent2D) error {
	fns := p.fns
	cmd := p.commandBuffers[i]

	ret := fns.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if err := newError(ErrCommandBuffer, "begin command buffer", ret); err != nil {
		return err
	}

	clearValues := []vk.ClearValue{
		vk.NewClearValue(p.clearColor[:]),
	}
	fns.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  p.renderPass,
		Framebuffer: p.framebuffers[i],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	fns.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, p.pipeline)
	fns.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, p.pipelineLayout, []vk.DescriptorSet{p.sets[i]})
	fns.CmdBindVertexBuffers(cmd, []vk.Buffer{p.vertices.Buffer}, []vk.DeviceSize{0})
	fns.CmdBindIndexBuffer(cmd, p.indices.Buffer, 0, vk.IndexTypeUint16)
	fns.CmdDrawIndexed(cmd, quadIndexCount, 1, 0, 0, 0)
	fns.CmdEndRenderPass(cmd)

	return newError(ErrCommandBuffer, "end command buffer", fns.EndCommandBuffer(cmd))
}

// Teardown destroys what Build created, newest first, and rewinds the
// uniform arena. Safe on a partially built pass.
func (p *Pass) Teardown() {
	fns, device := p.fns, p.handle

	if len(p.commandBuffers) > 0 && p.commandPool != vk.NullCommandPool {
		fns.FreeCommandBuffers(device, p.commandPool, p.commandBuffers)
	}
	p.commandBuffers = nil
	// sets go back with their pool
	p.sets = nil
	for i := len(p.uniforms) - 1; i >= 0; i-- {
		p.uniforms[i].Destroy()
	}
	p.uniforms = nil
	if p.uniformArena != nil {
		p.uniformArena.Reset()
	}
	if p.commandPool != vk.NullCommandPool {
		fns.DestroyCommandPool(device, p.commandPool)
		p.commandPool = vk.NullCommandPool
	}
	for i := len(p.framebuffers) - 1; i >= 0; i-- {
		fns.DestroyFramebuffer(device, p.framebuffers[i])
	}
	p.framebuffers = nil
	for i := len(p.views) - 1; i >= 0; i-- {
		fns.DestroyImageView(device, p.views[i])
	}
	p.views = nil
	if p.pipeline != vk.NullPipeline {
		fns.DestroyPipeline(device, p.pipeline)
		p.pipeline = vk.NullPipeline
	}
	if p.renderPass != vk.NullRenderPass {
		fns.DestroyRenderPass(device, p.renderPass)
		p.renderPass = vk.NullRenderPass
	}
	if p.pipelineLayout != vk.NullPipelineLayout {
		fns.DestroyPipelineLayout(device, p.pipelineLayout)
		p.pipelineLayout = vk.NullPipelineLayout
	}
	if p.descriptorPool != vk.NullDescriptorPool {
		fns.DestroyDescriptorPool(device, p.descriptorPool)
		p.descriptorPool = vk.NullDescriptorPool
	}
	p.extent = vk.Extent2D{}
}

// Rebuild tears the pass down and builds it against the current swapchain.
func (p *Pass) Rebuild() error {
	p.Teardown()
	return p.Build()
}

// SetShaders replaces the SPIR-V used by the next Build.
func (p *Pass) SetShaders(src ShaderSource) error {
	if err := src.Validate(); err != nil {
		return err
	}
	p.shaders = src
	return nil
}

// Destroy releases everything including the persistent state. The quad's
// bytes stay reserved in the device arena until it is reset.
func (p *Pass) Destroy() {
	if p == nil {
		return
	}
	p.Teardown()
	p.indices.Destroy()
	p.vertices.Destroy()
	if p.uniformArena != nil {
		p.uniformArena.Destroy()
		p.uniformArena = nil
	}
	if p.setLayout != vk.NullDescriptorSetLayout {
		p.fns.DestroyDescriptorSetLayout(p.handle, p.setLayout)
		p.setLayout = vk.NullDescriptorSetLayout
	}
}

func (p *Pass) Extent() vk.Extent2D                { return p.extent }
func (p *Pass) CommandBuffers() []vk.CommandBuffer { return p.commandBuffers }
func (p *Pass) Framebuffers() []vk.Framebuffer     { return p.framebuffers }
func (p *Pass) ImageViews() []vk.ImageView         { return p.views }
func (p *Pass) Pipeline() vk.Pipeline              { return p.pipeline }
func (p *Pass) RenderPass() vk.RenderPass          { return p.renderPass }
func (p *Pass) Builds() int                        { return p.builds }
func (p *Pass) Uniforms() []Allocation             { return p.uniforms }
func (p *Pass) UniformArena() *Arena               { return p.uniformArena }
func (p *Pass) SetLayout() vk.DescriptorSetLayout  { return p.setLayout }
