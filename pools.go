package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// createCommandPool creates a pool on family whose buffers can be reset
// one at a time.
func createCommandPool(fns DeviceFuncs, device vk.Device, family uint32) (vk.CommandPool, error) {
	pool, ret := fns.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	})
	if err := newError(ErrCommandBuffer, "create command pool", ret); err != nil {
		return vk.NullCommandPool, err
	}
	return pool, nil
}

func allocateCommandBuffers(fns DeviceFuncs, device vk.Device, pool vk.CommandPool, count int) ([]vk.CommandBuffer, error) {
	buffers, ret := fns.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	})
	if err := newError(ErrCommandBuffer, "allocate command buffers", ret); err != nil {
		return nil, err
	}
	if len(buffers) != count {
		if len(buffers) > 0 {
			fns.FreeCommandBuffers(device, pool, buffers)
		}
		return nil, failure(ErrCommandBuffer, "allocate command buffers", "got %d of %d", len(buffers), count)
	}
	return buffers, nil
}

// createUniformSetLayout declares one uniform buffer at binding 0 read by
// the vertex stage.
func createUniformSetLayout(fns DeviceFuncs, device vk.Device) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}}
	layout, ret := fns.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	})
	if err := newError(ErrDescriptorSet, "create descriptor set layout", ret); err != nil {
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

// createDescriptorPool sizes the pool for one uniform set per image.
func createDescriptorPool(fns DeviceFuncs, device vk.Device, sets int) (vk.DescriptorPool, error) {
	sizes := []vk.DescriptorPoolSize{{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: uint32(sets),
	}}
	pool, ret := fns.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(sets),
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	})
	if err := newError(ErrDescriptorSet, "create descriptor pool", ret); err != nil {
		return vk.NullDescriptorPool, err
	}
	return pool, nil
}

// allocateUniformSet allocates one set from pool and points it at alloc.
// Sets are returned to the driver with their pool.
func allocateUniformSet(fns DeviceFuncs, device vk.Device, pool vk.DescriptorPool,
	layout vk.DescriptorSetLayout, alloc Allocation) (vk.DescriptorSet, error) {

	set, ret := fns.AllocateDescriptorSet(device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	})
	if err := newError(ErrDescriptorSet, "allocate descriptor set", ret); err != nil {
		return vk.NullDescriptorSet, err
	}

	fns.UpdateDescriptorSets(device, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: alloc.Buffer,
			Offset: 0,
			Range:  alloc.Size,
		}},
	}})
	return set, nil
}
