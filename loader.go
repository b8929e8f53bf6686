package tortuga

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Loader opens the driver and hands out function tables. Tables are plain
// values owned by whoever requested them; nothing is stored globally by the
// renderer, so several instances or devices can run side by side in tests.
type Loader interface {
	// Load opens the driver library and resolves vkGetInstanceProcAddr.
	Load() error
	// LoadPreInstanceFunctions resolves the entry points callable before an
	// instance exists.
	LoadPreInstanceFunctions() (PreInstanceFuncs, error)
	// LoadInstanceFunctions resolves the instance level table for instance.
	LoadInstanceFunctions(instance vk.Instance) (InstanceFuncs, error)
	// LoadDeviceFunctions resolves the device level table for device.
	LoadDeviceFunctions(device vk.Device) (DeviceFuncs, error)
	// Unload releases the driver library.
	Unload()
}

// PreInstanceFuncs are resolved against a null instance.
type PreInstanceFuncs interface {
	EnumerateInstanceExtensions() ([]string, vk.Result)
	EnumerateInstanceLayers() ([]string, vk.Result)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result)
	// DestroyInstance releases an instance whose full table never loaded.
	DestroyInstance(instance vk.Instance)
}

// InstanceFuncs operate on an instance, its surface and its physical devices.
type InstanceFuncs interface {
	DestroyInstance(instance vk.Instance)

	CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, vk.Result)
	DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback)

	CreateWindowSurface(instance vk.Instance, window Window) (vk.Surface, error)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result)
	EnumerateDeviceExtensions(gpu vk.PhysicalDevice) ([]string, vk.Result)
	GetPhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties
	GetPhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	GetPhysicalDeviceQueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties
	GetPhysicalDeviceSurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result)
	GetPhysicalDeviceSurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result)
	GetPhysicalDeviceSurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result)
	GetPhysicalDeviceSurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result)

	CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result)
	DestroyDevice(device vk.Device)
}

// DeviceFuncs operate on a logical device and the objects created from it.
type DeviceFuncs interface {
	DeviceWaitIdle(device vk.Device) vk.Result
	GetDeviceQueue(device vk.Device, family, index uint32) vk.Queue

	CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	GetSwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result)

	CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result)
	DestroyBuffer(device vk.Device, buffer vk.Buffer)
	GetBufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements
	AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result)
	FreeMemory(device vk.Device, memory vk.DeviceMemory)
	BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result
	MapMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, vk.Result)
	UnmapMemory(device vk.Device, memory vk.DeviceMemory)
	FlushMappedMemoryRanges(device vk.Device, ranges []vk.MappedMemoryRange) vk.Result
	InvalidateMappedMemoryRanges(device vk.Device, ranges []vk.MappedMemoryRange) vk.Result

	CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result)
	DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout)
	CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result)
	DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool)
	AllocateDescriptorSet(device vk.Device, info *vk.DescriptorSetAllocateInfo) (vk.DescriptorSet, vk.Result)
	UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet)

	CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)
	CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result)
	DestroyRenderPass(device vk.Device, pass vk.RenderPass)
	CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, vk.Result)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
	CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)

	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result)
	DestroyImageView(device vk.Device, view vk.ImageView)
	CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result)
	DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer)

	CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result)
	FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
	BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result
	EndCommandBuffer(cmd vk.CommandBuffer) vk.Result

	CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents)
	CmdEndRenderPass(cmd vk.CommandBuffer)
	CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline)
	CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, sets []vk.DescriptorSet)
	CmdBindVertexBuffers(cmd vk.CommandBuffer, buffers []vk.Buffer, offsets []vk.DeviceSize)
	CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType)
	CmdDrawIndexed(cmd vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)

	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, vk.Result)
	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo) vk.Result
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result
	QueueWaitIdle(queue vk.Queue) vk.Result
}

// Symbol lists verified by the vulkan-go loader. They mirror the tables above.
var (
	preInstanceSymbols = []string{
		"vkCreateInstance",
		"vkEnumerateInstanceExtensionProperties",
		"vkEnumerateInstanceLayerProperties",
	}

	instanceSymbols = []string{
		"vkDestroyInstance",
		"vkDestroySurfaceKHR",
		"vkEnumeratePhysicalDevices",
		"vkEnumerateDeviceExtensionProperties",
		"vkGetPhysicalDeviceProperties",
		"vkGetPhysicalDeviceMemoryProperties",
		"vkGetPhysicalDeviceQueueFamilyProperties",
		"vkGetPhysicalDeviceSurfaceSupportKHR",
		"vkGetPhysicalDeviceSurfaceCapabilitiesKHR",
		"vkGetPhysicalDeviceSurfaceFormatsKHR",
		"vkGetPhysicalDeviceSurfacePresentModesKHR",
		"vkCreateDevice",
		"vkDestroyDevice",
		"vkGetDeviceProcAddr",
	}

	deviceSymbols = []string{
		"vkDeviceWaitIdle",
		"vkGetDeviceQueue",
		"vkCreateSemaphore",
		"vkDestroySemaphore",
		"vkCreateSwapchainKHR",
		"vkDestroySwapchainKHR",
		"vkGetSwapchainImagesKHR",
		"vkAcquireNextImageKHR",
		"vkQueuePresentKHR",
		"vkCreateBuffer",
		"vkDestroyBuffer",
		"vkGetBufferMemoryRequirements",
		"vkAllocateMemory",
		"vkFreeMemory",
		"vkBindBufferMemory",
		"vkMapMemory",
		"vkUnmapMemory",
		"vkFlushMappedMemoryRanges",
		"vkInvalidateMappedMemoryRanges",
		"vkCreateDescriptorSetLayout",
		"vkDestroyDescriptorSetLayout",
		"vkCreateDescriptorPool",
		"vkDestroyDescriptorPool",
		"vkAllocateDescriptorSets",
		"vkUpdateDescriptorSets",
		"vkCreatePipelineLayout",
		"vkDestroyPipelineLayout",
		"vkCreateRenderPass",
		"vkDestroyRenderPass",
		"vkCreateShaderModule",
		"vkDestroyShaderModule",
		"vkCreateGraphicsPipelines",
		"vkDestroyPipeline",
		"vkCreateImageView",
		"vkDestroyImageView",
		"vkCreateFramebuffer",
		"vkDestroyFramebuffer",
		"vkCreateCommandPool",
		"vkDestroyCommandPool",
		"vkAllocateCommandBuffers",
		"vkFreeCommandBuffers",
		"vkBeginCommandBuffer",
		"vkEndCommandBuffer",
		"vkCmdBeginRenderPass",
		"vkCmdEndRenderPass",
		"vkCmdBindPipeline",
		"vkCmdBindDescriptorSets",
		"vkCmdBindVertexBuffers",
		"vkCmdBindIndexBuffer",
		"vkCmdDrawIndexed",
		"vkQueueSubmit",
		"vkQueueWaitIdle",
	}
)

// missingSymbol returns the first name for which resolve reports false.
func missingSymbol(names []string, resolve func(name string) bool) (string, bool) {
	for _, name := range names {
		if !resolve(name) {
			return name, true
		}
	}
	return "", false
}
