package tortuga

import (
	"context"
	"log/slog"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

/*
#cgo linux LDFLAGS: -ldl

#include <stdlib.h>

#if defined(__unix__) && !defined(__ANDROID__)
#include <dlfcn.h>
#endif

typedef void (*tortugaVoidFunction)(void);
typedef tortugaVoidFunction (*tortugaGetProcAddr)(void*, const char*);

static void* tortugaProc(void* getProcAddr, void* handle, const char* name) {
	return (void*)((tortugaGetProcAddr)getProcAddr)(handle, name);
}

static void* tortugaDefaultProcAddr(void) {
#if defined(__unix__) && !defined(__ANDROID__)
	void* lib = dlopen("libvulkan.so.1", RTLD_NOW | RTLD_LOCAL);
	if (lib == NULL) {
		lib = dlopen("libvulkan.so", RTLD_NOW | RTLD_LOCAL);
	}
	if (lib == NULL) {
		return NULL;
	}
	return dlsym(lib, "vkGetInstanceProcAddr");
#else
	return NULL;
#endif
}
*/
import "C"

// vulkanLoader resolves function tables through vulkan-go. vulkan-go keeps a
// single process wide dispatch table internally; the tables handed out here
// are bound to one instance or device and are the only path the renderer
// uses to reach it.
type vulkanLoader struct {
	procAddr unsafe.Pointer
	// resolver is the vkGetInstanceProcAddr used to verify symbols. It is
	// nil when the default library could not be opened a second time, in
	// which case vulkan-go's own init results stand.
	resolver unsafe.Pointer
	instance vk.Instance
	loaded   bool
}

// NewVulkanLoader returns a Loader backed by the system Vulkan driver.
// procAddr is an optional vkGetInstanceProcAddr, usually
// glfw.GetVulkanGetInstanceProcAddress(); nil loads the platform default
// library.
func NewVulkanLoader(procAddr unsafe.Pointer) Loader {
	return &vulkanLoader{procAddr: procAddr}
}

func (l *vulkanLoader) Load() error {
	if l.procAddr != nil {
		vk.SetGetInstanceProcAddr(l.procAddr)
		l.resolver = l.procAddr
	} else {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return failure(ErrLoad, "load", "%v", err)
		}
		l.resolver = C.tortugaDefaultProcAddr()
	}
	if err := vk.Init(); err != nil {
		return failure(ErrLoad, "load", "%v", err)
	}
	l.loaded = true
	return nil
}

// lookup calls getProcAddr(handle, name).
func lookup(getProcAddr, handle unsafe.Pointer, name string) unsafe.Pointer {
	if getProcAddr == nil {
		return nil
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.tortugaProc(getProcAddr, handle, cname)
}

// verify reports the first name getProcAddr cannot resolve on handle.
// Without a resolver nothing can be checked and every name passes.
func verify(getProcAddr, handle unsafe.Pointer, names []string) (string, bool) {
	if getProcAddr == nil {
		return "", false
	}
	return missingSymbol(names, func(name string) bool {
		return lookup(getProcAddr, handle, name) != nil
	})
}

func (l *vulkanLoader) LoadPreInstanceFunctions() (PreInstanceFuncs, error) {
	if !l.loaded {
		return nil, failure(ErrLoad, "load pre-instance functions", "driver not loaded")
	}
	if name, missing := verify(l.resolver, nil, preInstanceSymbols); missing {
		return nil, failure(ErrFunctionLoad, "load pre-instance functions", "%s", name)
	}
	return vkPreInstanceFuncs{}, nil
}

func (l *vulkanLoader) LoadInstanceFunctions(instance vk.Instance) (InstanceFuncs, error) {
	if !l.loaded {
		return nil, failure(ErrLoad, "load instance functions", "driver not loaded")
	}
	if err := vk.InitInstance(instance); err != nil {
		return nil, failure(ErrFunctionLoad, "load instance functions", "%v", err)
	}
	if name, missing := verify(l.resolver, unsafe.Pointer(instance), instanceSymbols); missing {
		return nil, failure(ErrFunctionLoad, "load instance functions", "%s", name)
	}
	l.instance = instance
	return vkInstanceFuncs{}, nil
}

func (l *vulkanLoader) LoadDeviceFunctions(device vk.Device) (DeviceFuncs, error) {
	if !l.loaded {
		return nil, failure(ErrLoad, "load device functions", "driver not loaded")
	}
	if l.resolver != nil {
		if l.instance == nil {
			return nil, failure(ErrFunctionLoad, "load device functions", "no instance functions loaded")
		}
		getDeviceProcAddr := lookup(l.resolver, unsafe.Pointer(l.instance), "vkGetDeviceProcAddr")
		if getDeviceProcAddr == nil {
			return nil, failure(ErrFunctionLoad, "load device functions", "vkGetDeviceProcAddr")
		}
		if name, missing := verify(getDeviceProcAddr, unsafe.Pointer(device), deviceSymbols); missing {
			return nil, failure(ErrFunctionLoad, "load device functions", "%s", name)
		}
	}
	return vkDeviceFuncs{}, nil
}

func (l *vulkanLoader) Unload() {
	l.loaded = false
	l.instance = nil
}

type vkPreInstanceFuncs struct{}

func (vkPreInstanceFuncs) EnumerateInstanceExtensions() ([]string, vk.Result) {
	var count uint32
	if ret := vk.EnumerateInstanceExtensionProperties("", &count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]vk.ExtensionProperties, count)
	if ret := vk.EnumerateInstanceExtensionProperties("", &count, list); isError(ret) {
		return nil, ret
	}
	names := make([]string, 0, count)
	for _, ext := range list[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, vk.Success
}

func (vkPreInstanceFuncs) EnumerateInstanceLayers() ([]string, vk.Result) {
	var count uint32
	if ret := vk.EnumerateInstanceLayerProperties(&count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]vk.LayerProperties, count)
	if ret := vk.EnumerateInstanceLayerProperties(&count, list); isError(ret) {
		return nil, ret
	}
	names := make([]string, 0, count)
	for _, layer := range list[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, vk.Success
}

func (vkPreInstanceFuncs) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	var instance vk.Instance
	ret := vk.CreateInstance(info, nil, &instance)
	return instance, ret
}

func (vkPreInstanceFuncs) DestroyInstance(instance vk.Instance) {
	if err := vk.InitInstance(instance); err != nil {
		return
	}
	vk.DestroyInstance(instance, nil)
}

type vkInstanceFuncs struct{}

func (vkInstanceFuncs) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (vkInstanceFuncs) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, vk.Result) {
	var callback vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}, nil, &callback)
	return callback, ret
}

func (vkInstanceFuncs) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
}

func (vkInstanceFuncs) CreateWindowSurface(instance vk.Instance, window Window) (vk.Surface, error) {
	ptr, err := window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (vkInstanceFuncs) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (vkInstanceFuncs) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result) {
	var count uint32
	if ret := vk.EnumeratePhysicalDevices(instance, &count, nil); isError(ret) {
		return nil, ret
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret := vk.EnumeratePhysicalDevices(instance, &count, gpus)
	return gpus[:count], ret
}

func (vkInstanceFuncs) EnumerateDeviceExtensions(gpu vk.PhysicalDevice) ([]string, vk.Result) {
	var count uint32
	if ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]vk.ExtensionProperties, count)
	if ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list); isError(ret) {
		return nil, ret
	}
	names := make([]string, 0, count)
	for _, ext := range list[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, vk.Success
}

func (vkInstanceFuncs) GetPhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()
	return props
}

func (vkInstanceFuncs) GetPhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &props)
	props.Deref()
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
	}
	for i := uint32(0); i < props.MemoryHeapCount; i++ {
		props.MemoryHeaps[i].Deref()
	}
	return props
}

func (vkInstanceFuncs) GetPhysicalDeviceQueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return props
}

func (vkInstanceFuncs) GetPhysicalDeviceSurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, family, surface, &supported)
	return supported.B(), ret
}

func (vkInstanceFuncs) GetPhysicalDeviceSurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, ret
}

func (vkInstanceFuncs) GetPhysicalDeviceSurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	var count uint32
	if ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil); isError(ret) {
		return nil, ret
	}
	formats := make([]vk.SurfaceFormat, count)
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
	}
	return formats[:count], ret
}

func (vkInstanceFuncs) GetPhysicalDeviceSurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result) {
	var count uint32
	if ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil); isError(ret) {
		return nil, ret
	}
	modes := make([]vk.PresentMode, count)
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	return modes[:count], ret
}

func (vkInstanceFuncs) CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	var device vk.Device
	ret := vk.CreateDevice(gpu, info, nil, &device)
	return device, ret
}

func (vkInstanceFuncs) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

type vkDeviceFuncs struct{}

func (vkDeviceFuncs) DeviceWaitIdle(device vk.Device) vk.Result {
	return vk.DeviceWaitIdle(device)
}

func (vkDeviceFuncs) GetDeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (vkDeviceFuncs) CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	return semaphore, ret
}

func (vkDeviceFuncs) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (vkDeviceFuncs) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(device, info, nil, &swapchain)
	return swapchain, ret
}

func (vkDeviceFuncs) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (vkDeviceFuncs) GetSwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	var count uint32
	if ret := vk.GetSwapchainImages(device, swapchain, &count, nil); isError(ret) {
		return nil, ret
	}
	images := make([]vk.Image, count)
	ret := vk.GetSwapchainImages(device, swapchain, &count, images)
	return images[:count], ret
}

func (vkDeviceFuncs) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(device, info, nil, &buffer)
	return buffer, ret
}

func (vkDeviceFuncs) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	vk.DestroyBuffer(device, buffer, nil)
}

func (vkDeviceFuncs) GetBufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &reqs)
	reqs.Deref()
	return reqs
}

func (vkDeviceFuncs) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result) {
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(device, info, nil, &memory)
	return memory, ret
}

func (vkDeviceFuncs) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.FreeMemory(device, memory, nil)
}

func (vkDeviceFuncs) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result {
	return vk.BindBufferMemory(device, buffer, memory, offset)
}

func (vkDeviceFuncs) MapMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, vk.Result) {
	var data unsafe.Pointer
	ret := vk.MapMemory(device, memory, offset, size, 0, &data)
	return data, ret
}

func (vkDeviceFuncs) UnmapMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.UnmapMemory(device, memory)
}

func (vkDeviceFuncs) FlushMappedMemoryRanges(device vk.Device, ranges []vk.MappedMemoryRange) vk.Result {
	return vk.FlushMappedMemoryRanges(device, uint32(len(ranges)), ranges)
}

func (vkDeviceFuncs) InvalidateMappedMemoryRanges(device vk.Device, ranges []vk.MappedMemoryRange) vk.Result {
	return vk.InvalidateMappedMemoryRanges(device, uint32(len(ranges)), ranges)
}

func (vkDeviceFuncs) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result) {
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(device, info, nil, &layout)
	return layout, ret
}

func (vkDeviceFuncs) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	vk.DestroyDescriptorSetLayout(device, layout, nil)
}

func (vkDeviceFuncs) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result) {
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(device, info, nil, &pool)
	return pool, ret
}

func (vkDeviceFuncs) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	vk.DestroyDescriptorPool(device, pool, nil)
}

func (vkDeviceFuncs) AllocateDescriptorSet(device vk.Device, info *vk.DescriptorSetAllocateInfo) (vk.DescriptorSet, vk.Result) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(device, info, &set)
	return set, ret
}

func (vkDeviceFuncs) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
}

func (vkDeviceFuncs) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device, info, nil, &layout)
	return layout, ret
}

func (vkDeviceFuncs) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (vkDeviceFuncs) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(device, info, nil, &pass)
	return pass, ret
}

func (vkDeviceFuncs) DestroyRenderPass(device vk.Device, pass vk.RenderPass) {
	vk.DestroyRenderPass(device, pass, nil)
}

func (vkDeviceFuncs) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, vk.Result) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, info, nil, &module)
	return module, ret
}

func (vkDeviceFuncs) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (vkDeviceFuncs) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret := vk.CreateGraphicsPipelines(device, nil, 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	return pipelines[0], ret
}

func (vkDeviceFuncs) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}

func (vkDeviceFuncs) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, info, nil, &view)
	return view, ret
}

func (vkDeviceFuncs) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (vkDeviceFuncs) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	var framebuffer vk.Framebuffer
	ret := vk.CreateFramebuffer(device, info, nil, &framebuffer)
	return framebuffer, ret
}

func (vkDeviceFuncs) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(device, framebuffer, nil)
}

func (vkDeviceFuncs) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, info, nil, &pool)
	return pool, ret
}

func (vkDeviceFuncs) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (vkDeviceFuncs) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	ret := vk.AllocateCommandBuffers(device, info, buffers)
	return buffers, ret
}

func (vkDeviceFuncs) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}

func (vkDeviceFuncs) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	return vk.BeginCommandBuffer(cmd, info)
}

func (vkDeviceFuncs) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.EndCommandBuffer(cmd)
}

func (vkDeviceFuncs) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	vk.CmdBeginRenderPass(cmd, info, contents)
}

func (vkDeviceFuncs) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

func (vkDeviceFuncs) CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cmd, bindPoint, pipeline)
}

func (vkDeviceFuncs) CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, sets []vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(cmd, bindPoint, layout, 0, uint32(len(sets)), sets, 0, nil)
}

func (vkDeviceFuncs) CmdBindVertexBuffers(cmd vk.CommandBuffer, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	vk.CmdBindVertexBuffers(cmd, 0, uint32(len(buffers)), buffers, offsets)
}

func (vkDeviceFuncs) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(cmd, buffer, offset, indexType)
}

func (vkDeviceFuncs) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(cmd, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (vkDeviceFuncs) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(device, swapchain, timeout, semaphore, vk.NullFence, &index)
	return index, ret
}

func (vkDeviceFuncs) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo) vk.Result {
	return vk.QueueSubmit(queue, uint32(len(submits)), submits, vk.NullFence)
}

func (vkDeviceFuncs) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(queue, info)
}

func (vkDeviceFuncs) QueueWaitIdle(queue vk.Queue) vk.Result {
	return vk.QueueWaitIdle(queue)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	level := slog.LevelInfo
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		level = slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		level = slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		level = slog.LevelDebug
	}
	Logger().Log(context.Background(), level, "validation",
		"layer", pLayerPrefix, "code", messageCode, "msg", pMessage)
	return vk.Bool32(vk.False)
}
