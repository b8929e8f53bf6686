package tortuga

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/sys/unix"
)

// fakeObject is what the fake driver knows about a handle.
type fakeObject struct {
	kind string
	id   int
}

// Handle types point at incomplete C structs. The runtime and reflect
// reject such pointers into the Go heap, so fake handles are addresses in
// an anonymous mapping that is never touched or unmapped. Addresses are
// never reused.
var handleSpace struct {
	sync.Mutex
	page []byte
	next int
}

const (
	handlePageSize = 1 << 20
	handleStride   = 8
)

func nextHandle() unsafe.Pointer {
	handleSpace.Lock()
	defer handleSpace.Unlock()
	if handleSpace.page == nil || handleSpace.next >= len(handleSpace.page) {
		page, err := unix.Mmap(-1, 0, handlePageSize, unix.PROT_READ, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			panic(fmt.Sprintf("fake driver: map handle space: %v", err))
		}
		handleSpace.page, handleSpace.next = page, 0
	}
	p := unsafe.Pointer(&handleSpace.page[handleSpace.next])
	handleSpace.next += handleStride
	return p
}

func handleOf[T any](p unsafe.Pointer) T {
	return *(*T)(unsafe.Pointer(&p))
}

func ptrOf[T any](h T) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&h))
}

// addrs lists handle addresses. Distinct handles point at zero sized C
// types and compare deeply equal, so identity checks go through addresses.
func addrs[T any](hs ...T) []uintptr {
	out := make([]uintptr, len(hs))
	for i, h := range hs {
		out[i] = uintptr(ptrOf(h))
	}
	return out
}

type injected struct {
	ret  vk.Result
	skip int
}

// fakeDriver implements Loader and all three function tables in memory.
// Every object it creates is tracked until destroyed so tests can check for
// leaks and use of dead handles.
type fakeDriver struct {
	nextID  int
	live    map[unsafe.Pointer]*fakeObject
	parent  map[unsafe.Pointer]unsafe.Pointer
	misuse  []string
	calls   map[string]int
	fail    map[string]injected
	results map[string][]vk.Result

	loadErr error
	missing string
	loaded  bool
	unloads int

	instanceExtensions []string
	layers             []string
	deviceExtensions   []string
	gpuCount           int
	gpus               []vk.PhysicalDevice
	families           []vk.QueueFamilyProperties
	presentFamilies    map[uint32]bool

	caps          vk.SurfaceCapabilities
	formats       []vk.SurfaceFormat
	presentModes  []vk.PresentMode
	swapImages    map[unsafe.Pointer][]vk.Image
	imageOverride int

	limits         vk.PhysicalDeviceLimits
	memProps       vk.PhysicalDeviceMemoryProperties
	memory         map[unsafe.Pointer][]byte
	mapped         map[unsafe.Pointer]bool
	bufferSize     map[unsafe.Pointer]vk.DeviceSize
	bufferAlign    vk.DeviceSize
	memoryTypeBits uint32
	flushed        []vk.MappedMemoryRange
	invalidated    []vk.MappedMemoryRange

	queues       map[uint32]vk.Queue
	nextImage    uint32
	recordings   map[unsafe.Pointer]int
	commands     map[unsafe.Pointer][]string
	submitted    []vk.CommandBuffer
	presented    []uint32
	descriptors  []vk.WriteDescriptorSet
	clears       []vk.ClearValue
	renderAreas  []vk.Rect2D
	instanceInfo *vk.InstanceCreateInfo
	deviceInfo   *vk.DeviceCreateInfo
	swapInfos    []vk.SwapchainCreateInfo
	pipelineInfo *vk.GraphicsPipelineCreateInfo
	renderInfo   *vk.RenderPassCreateInfo
}

func newFakeDriver() *fakeDriver {
	d := &fakeDriver{
		live:    make(map[unsafe.Pointer]*fakeObject),
		parent:  make(map[unsafe.Pointer]unsafe.Pointer),
		calls:   make(map[string]int),
		fail:    make(map[string]injected),
		results: make(map[string][]vk.Result),

		instanceExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtension},
		layers:             []string{"VK_LAYER_KHRONOS_validation"},
		deviceExtensions:   []string{swapchainExtension},
		gpuCount:           1,
		families: []vk.QueueFamilyProperties{{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
			QueueCount: 1,
		}},
		presentFamilies: map[uint32]bool{0: true},

		caps: vk.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
			MaxImageArrayLayers:     1,
			SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		formats: []vk.SurfaceFormat{{
			Format:     vk.FormatB8g8r8a8Srgb,
			ColorSpace: vk.ColorSpaceSrgbNonlinear,
		}},
		presentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		swapImages:   make(map[unsafe.Pointer][]vk.Image),

		limits: vk.PhysicalDeviceLimits{
			NonCoherentAtomSize:             64,
			MinUniformBufferOffsetAlignment: 256,
			MinStorageBufferOffsetAlignment: 64,
		},
		memory:         make(map[unsafe.Pointer][]byte),
		mapped:         make(map[unsafe.Pointer]bool),
		bufferSize:     make(map[unsafe.Pointer]vk.DeviceSize),
		bufferAlign:    16,
		memoryTypeBits: 0x3,

		queues:     make(map[uint32]vk.Queue),
		recordings: make(map[unsafe.Pointer]int),
		commands:   make(map[unsafe.Pointer][]string),
	}
	d.memProps.MemoryTypeCount = 2
	d.memProps.MemoryTypes[0] = vk.MemoryType{
		PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	}
	d.memProps.MemoryTypes[1] = vk.MemoryType{
		PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}
	d.memProps.MemoryHeapCount = 1
	return d
}

func (d *fakeDriver) newObject(kind string) unsafe.Pointer {
	d.nextID++
	p := nextHandle()
	d.live[p] = &fakeObject{kind: kind, id: d.nextID}
	return p
}

// untracked handles are owned by another object and never destroyed on
// their own.
func (d *fakeDriver) untracked(kind string) unsafe.Pointer {
	d.nextID++
	return nextHandle()
}

func (d *fakeDriver) release(kind string, p unsafe.Pointer) {
	if p == nil {
		return
	}
	obj, ok := d.live[p]
	switch {
	case !ok:
		d.misuse = append(d.misuse, fmt.Sprintf("destroy of dead or unknown %s", kind))
		return
	case obj.kind != kind:
		d.misuse = append(d.misuse, fmt.Sprintf("destroy %s with a %s handle", kind, obj.kind))
	}
	delete(d.live, p)
	for child, owner := range d.parent {
		if owner == p {
			delete(d.parent, child)
			delete(d.live, child)
		}
	}
	delete(d.parent, p)
}

func (d *fakeDriver) use(kind string, p unsafe.Pointer) {
	obj, ok := d.live[p]
	if !ok || obj.kind != kind {
		d.misuse = append(d.misuse, fmt.Sprintf("use of dead or wrong %s", kind))
	}
}

// check counts a call and returns the injected failure for it, if any.
func (d *fakeDriver) check(op string) vk.Result {
	d.calls[op]++
	if f, ok := d.fail[op]; ok {
		if f.skip > 0 {
			f.skip--
			d.fail[op] = f
			return vk.Success
		}
		return f.ret
	}
	if queue := d.results[op]; len(queue) > 0 {
		d.results[op] = queue[1:]
		return queue[0]
	}
	return vk.Success
}

func (d *fakeDriver) failOn(op string, ret vk.Result, skip int) {
	d.fail[op] = injected{ret: ret, skip: skip}
}

func (d *fakeDriver) queueResults(op string, rets ...vk.Result) {
	d.results[op] = append(d.results[op], rets...)
}

func (d *fakeDriver) liveCount(kind string) int {
	n := 0
	for _, obj := range d.live {
		if obj.kind == kind {
			n++
		}
	}
	return n
}

func (d *fakeDriver) liveKinds() []string {
	var kinds []string
	for _, obj := range d.live {
		kinds = append(kinds, obj.kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (d *fakeDriver) ownedBy(owner unsafe.Pointer, kinds ...string) []string {
	var out []string
	for p, obj := range d.live {
		if p == owner {
			continue
		}
		for _, k := range kinds {
			if obj.kind == k {
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Loader

func (d *fakeDriver) Load() error {
	d.calls["Load"]++
	if d.loadErr != nil {
		return failure(ErrLoad, "load", "%v", d.loadErr)
	}
	d.loaded = true
	return nil
}

func (d *fakeDriver) LoadPreInstanceFunctions() (PreInstanceFuncs, error) {
	if !d.loaded {
		return nil, failure(ErrLoad, "load pre-instance functions", "driver not loaded")
	}
	if name, missing := missingSymbol(preInstanceSymbols, d.resolve); missing {
		return nil, failure(ErrFunctionLoad, "load pre-instance functions", "%s", name)
	}
	return d, nil
}

func (d *fakeDriver) LoadInstanceFunctions(instance vk.Instance) (InstanceFuncs, error) {
	if !d.loaded {
		return nil, failure(ErrLoad, "load instance functions", "driver not loaded")
	}
	if name, missing := missingSymbol(instanceSymbols, d.resolve); missing {
		return nil, failure(ErrFunctionLoad, "load instance functions", "%s", name)
	}
	return d, nil
}

func (d *fakeDriver) LoadDeviceFunctions(device vk.Device) (DeviceFuncs, error) {
	if !d.loaded {
		return nil, failure(ErrLoad, "load device functions", "driver not loaded")
	}
	if name, missing := missingSymbol(deviceSymbols, d.resolve); missing {
		return nil, failure(ErrFunctionLoad, "load device functions", "%s", name)
	}
	return d, nil
}

func (d *fakeDriver) resolve(name string) bool {
	return name != d.missing
}

func (d *fakeDriver) Unload() {
	d.unloads++
	d.loaded = false
}

// PreInstanceFuncs

func (d *fakeDriver) EnumerateInstanceExtensions() ([]string, vk.Result) {
	if ret := d.check("EnumerateInstanceExtensions"); isError(ret) {
		return nil, ret
	}
	return append([]string(nil), d.instanceExtensions...), vk.Success
}

func (d *fakeDriver) EnumerateInstanceLayers() ([]string, vk.Result) {
	if ret := d.check("EnumerateInstanceLayers"); isError(ret) {
		return nil, ret
	}
	return append([]string(nil), d.layers...), vk.Success
}

func (d *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	if ret := d.check("CreateInstance"); isError(ret) {
		return nil, ret
	}
	for _, name := range info.PpEnabledExtensionNames {
		if !hasName(d.instanceExtensions, name[:len(name)-1]) {
			return nil, vk.ErrorExtensionNotPresent
		}
	}
	for _, name := range info.PpEnabledLayerNames {
		if !hasName(d.layers, name[:len(name)-1]) {
			return nil, vk.ErrorLayerNotPresent
		}
	}
	copied := *info
	d.instanceInfo = &copied
	return handleOf[vk.Instance](d.newObject("instance")), vk.Success
}

// InstanceFuncs

func (d *fakeDriver) DestroyInstance(instance vk.Instance) {
	for _, kind := range []string{"surface", "debugCallback", "device"} {
		if d.liveCount(kind) > 0 {
			d.misuse = append(d.misuse, "instance destroyed with live "+kind)
		}
	}
	d.release("instance", ptrOf(instance))
}

func (d *fakeDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, vk.Result) {
	d.use("instance", ptrOf(instance))
	if ret := d.check("CreateDebugCallback"); isError(ret) {
		return vk.NullDebugReportCallback, ret
	}
	return handleOf[vk.DebugReportCallback](d.newObject("debugCallback")), vk.Success
}

func (d *fakeDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	d.release("debugCallback", ptrOf(callback))
}

func (d *fakeDriver) CreateWindowSurface(instance vk.Instance, window Window) (vk.Surface, error) {
	d.use("instance", ptrOf(instance))
	d.calls["CreateWindowSurface"]++
	if _, err := window.CreateWindowSurface(instance, nil); err != nil {
		return vk.NullSurface, err
	}
	return handleOf[vk.Surface](d.newObject("surface")), nil
}

func (d *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	if d.liveCount("swapchain") > 0 {
		d.misuse = append(d.misuse, "surface destroyed with live swapchain")
	}
	d.release("surface", ptrOf(surface))
}

func (d *fakeDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result) {
	d.use("instance", ptrOf(instance))
	if ret := d.check("EnumeratePhysicalDevices"); isError(ret) {
		return nil, ret
	}
	for len(d.gpus) < d.gpuCount {
		d.gpus = append(d.gpus, handleOf[vk.PhysicalDevice](d.untracked("gpu")))
	}
	return append([]vk.PhysicalDevice(nil), d.gpus[:d.gpuCount]...), vk.Success
}

func (d *fakeDriver) EnumerateDeviceExtensions(gpu vk.PhysicalDevice) ([]string, vk.Result) {
	if ret := d.check("EnumerateDeviceExtensions"); isError(ret) {
		return nil, ret
	}
	return append([]string(nil), d.deviceExtensions...), vk.Success
}

func (d *fakeDriver) GetPhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	copy(props.DeviceName[:], "Fake GPU\x00")
	props.Limits = d.limits
	return props
}

func (d *fakeDriver) GetPhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	return d.memProps
}

func (d *fakeDriver) GetPhysicalDeviceQueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return append([]vk.QueueFamilyProperties(nil), d.families...)
}

func (d *fakeDriver) GetPhysicalDeviceSurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result) {
	d.use("surface", ptrOf(surface))
	return d.presentFamilies[family], vk.Success
}

func (d *fakeDriver) GetPhysicalDeviceSurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	d.use("surface", ptrOf(surface))
	return d.caps, d.check("GetPhysicalDeviceSurfaceCapabilities")
}

func (d *fakeDriver) GetPhysicalDeviceSurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	return append([]vk.SurfaceFormat(nil), d.formats...), d.check("GetPhysicalDeviceSurfaceFormats")
}

func (d *fakeDriver) GetPhysicalDeviceSurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result) {
	return append([]vk.PresentMode(nil), d.presentModes...), vk.Success
}

func (d *fakeDriver) CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	if ret := d.check("CreateDevice"); isError(ret) {
		return nil, ret
	}
	copied := *info
	d.deviceInfo = &copied
	return handleOf[vk.Device](d.newObject("device")), vk.Success
}

func (d *fakeDriver) DestroyDevice(device vk.Device) {
	if left := d.ownedBy(ptrOf(device), deviceChildKinds...); len(left) > 0 {
		d.misuse = append(d.misuse, fmt.Sprintf("device destroyed with live %v", left))
	}
	d.release("device", ptrOf(device))
}

var deviceChildKinds = []string{
	"semaphore", "swapchain", "buffer", "memory", "descriptorSetLayout",
	"descriptorPool", "pipelineLayout", "renderPass", "shaderModule",
	"pipeline", "imageView", "framebuffer", "commandPool", "commandBuffer",
}

// DeviceFuncs

func (d *fakeDriver) DeviceWaitIdle(device vk.Device) vk.Result {
	d.use("device", ptrOf(device))
	return d.check("DeviceWaitIdle")
}

func (d *fakeDriver) GetDeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	d.calls["GetDeviceQueue"]++
	if q, ok := d.queues[family]; ok {
		return q
	}
	q := handleOf[vk.Queue](d.untracked("queue"))
	d.queues[family] = q
	return q
}

func (d *fakeDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result) {
	if ret := d.check("CreateSemaphore"); isError(ret) {
		return vk.NullSemaphore, ret
	}
	return handleOf[vk.Semaphore](d.newObject("semaphore")), vk.Success
}

func (d *fakeDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	d.release("semaphore", ptrOf(semaphore))
}

func (d *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	if ret := d.check("CreateSwapchain"); isError(ret) {
		return vk.NullSwapchain, ret
	}
	d.swapInfos = append(d.swapInfos, *info)
	p := d.newObject("swapchain")
	n := int(info.MinImageCount)
	if d.imageOverride > 0 {
		n = d.imageOverride
	}
	images := make([]vk.Image, n)
	for i := range images {
		images[i] = handleOf[vk.Image](d.untracked("image"))
	}
	d.swapImages[p] = images
	return handleOf[vk.Swapchain](p), vk.Success
}

func (d *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	delete(d.swapImages, ptrOf(swapchain))
	d.release("swapchain", ptrOf(swapchain))
}

func (d *fakeDriver) GetSwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	d.use("swapchain", ptrOf(swapchain))
	if ret := d.check("GetSwapchainImages"); isError(ret) {
		return nil, ret
	}
	if d.imageOverride < 0 {
		return nil, vk.Success
	}
	return append([]vk.Image(nil), d.swapImages[ptrOf(swapchain)]...), vk.Success
}

func (d *fakeDriver) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result) {
	if ret := d.check("CreateBuffer"); isError(ret) {
		return vk.NullBuffer, ret
	}
	p := d.newObject("buffer")
	d.bufferSize[p] = info.Size
	return handleOf[vk.Buffer](p), vk.Success
}

func (d *fakeDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	delete(d.bufferSize, ptrOf(buffer))
	d.release("buffer", ptrOf(buffer))
}

func (d *fakeDriver) GetBufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	d.use("buffer", ptrOf(buffer))
	size := d.bufferSize[ptrOf(buffer)]
	return vk.MemoryRequirements{
		Size:           alignUp(size, d.bufferAlign),
		Alignment:      d.bufferAlign,
		MemoryTypeBits: d.memoryTypeBits,
	}
}

func (d *fakeDriver) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result) {
	if ret := d.check("AllocateMemory"); isError(ret) {
		return vk.NullDeviceMemory, ret
	}
	p := d.newObject("memory")
	d.memory[p] = make([]byte, info.AllocationSize)
	return handleOf[vk.DeviceMemory](p), vk.Success
}

func (d *fakeDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	if d.mapped[ptrOf(memory)] {
		d.misuse = append(d.misuse, "free of mapped memory")
	}
	delete(d.memory, ptrOf(memory))
	d.release("memory", ptrOf(memory))
}

func (d *fakeDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result {
	d.use("buffer", ptrOf(buffer))
	d.use("memory", ptrOf(memory))
	if ret := d.check("BindBufferMemory"); isError(ret) {
		return ret
	}
	size := d.bufferSize[ptrOf(buffer)]
	if offset%d.bufferAlign != 0 || offset+size > vk.DeviceSize(len(d.memory[ptrOf(memory)])) {
		d.misuse = append(d.misuse, fmt.Sprintf("bind %d bytes at %d", size, offset))
	}
	return vk.Success
}

func (d *fakeDriver) MapMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, vk.Result) {
	d.use("memory", ptrOf(memory))
	if ret := d.check("MapMemory"); isError(ret) {
		return nil, ret
	}
	mem := d.memory[ptrOf(memory)]
	if d.mapped[ptrOf(memory)] {
		d.misuse = append(d.misuse, "memory mapped twice")
	}
	if size == 0 || offset+size > vk.DeviceSize(len(mem)) {
		d.misuse = append(d.misuse, fmt.Sprintf("map %d bytes at %d of %d", size, offset, len(mem)))
		return nil, vk.ErrorMemoryMapFailed
	}
	d.mapped[ptrOf(memory)] = true
	return unsafe.Pointer(&mem[offset]), vk.Success
}

func (d *fakeDriver) UnmapMemory(device vk.Device, memory vk.DeviceMemory) {
	if !d.mapped[ptrOf(memory)] {
		d.misuse = append(d.misuse, "unmap of unmapped memory")
	}
	delete(d.mapped, ptrOf(memory))
}

func (d *fakeDriver) checkRanges(ranges []vk.MappedMemoryRange) {
	atom := d.limits.NonCoherentAtomSize
	for _, r := range ranges {
		end := vk.DeviceSize(len(d.memory[ptrOf(r.Memory)]))
		if r.Offset%atom != 0 || (r.Size%atom != 0 && r.Offset+r.Size != end) {
			d.misuse = append(d.misuse, fmt.Sprintf("unaligned range %d+%d", r.Offset, r.Size))
		}
		if !d.mapped[ptrOf(r.Memory)] {
			d.misuse = append(d.misuse, "range on unmapped memory")
		}
	}
}

func (d *fakeDriver) FlushMappedMemoryRanges(device vk.Device, ranges []vk.MappedMemoryRange) vk.Result {
	d.checkRanges(ranges)
	d.flushed = append(d.flushed, ranges...)
	return d.check("FlushMappedMemoryRanges")
}

func (d *fakeDriver) InvalidateMappedMemoryRanges(device vk.Device, ranges []vk.MappedMemoryRange) vk.Result {
	d.checkRanges(ranges)
	d.invalidated = append(d.invalidated, ranges...)
	return d.check("InvalidateMappedMemoryRanges")
}

func (d *fakeDriver) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result) {
	if ret := d.check("CreateDescriptorSetLayout"); isError(ret) {
		return vk.NullDescriptorSetLayout, ret
	}
	return handleOf[vk.DescriptorSetLayout](d.newObject("descriptorSetLayout")), vk.Success
}

func (d *fakeDriver) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	d.release("descriptorSetLayout", ptrOf(layout))
}

func (d *fakeDriver) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result) {
	if ret := d.check("CreateDescriptorPool"); isError(ret) {
		return vk.NullDescriptorPool, ret
	}
	return handleOf[vk.DescriptorPool](d.newObject("descriptorPool")), vk.Success
}

func (d *fakeDriver) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	d.release("descriptorPool", ptrOf(pool))
}

func (d *fakeDriver) AllocateDescriptorSet(device vk.Device, info *vk.DescriptorSetAllocateInfo) (vk.DescriptorSet, vk.Result) {
	d.use("descriptorPool", ptrOf(info.DescriptorPool))
	if ret := d.check("AllocateDescriptorSet"); isError(ret) {
		return vk.NullDescriptorSet, ret
	}
	p := d.newObject("descriptorSet")
	d.parent[p] = ptrOf(info.DescriptorPool)
	return handleOf[vk.DescriptorSet](p), vk.Success
}

func (d *fakeDriver) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	for _, w := range writes {
		d.use("descriptorSet", ptrOf(w.DstSet))
		for _, info := range w.PBufferInfo {
			d.use("buffer", ptrOf(info.Buffer))
		}
	}
	d.descriptors = append(d.descriptors, writes...)
}

func (d *fakeDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	if ret := d.check("CreatePipelineLayout"); isError(ret) {
		return vk.NullPipelineLayout, ret
	}
	return handleOf[vk.PipelineLayout](d.newObject("pipelineLayout")), vk.Success
}

func (d *fakeDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	d.release("pipelineLayout", ptrOf(layout))
}

func (d *fakeDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	if ret := d.check("CreateRenderPass"); isError(ret) {
		return vk.NullRenderPass, ret
	}
	copied := *info
	d.renderInfo = &copied
	return handleOf[vk.RenderPass](d.newObject("renderPass")), vk.Success
}

func (d *fakeDriver) DestroyRenderPass(device vk.Device, pass vk.RenderPass) {
	d.release("renderPass", ptrOf(pass))
}

func (d *fakeDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, vk.Result) {
	if ret := d.check("CreateShaderModule"); isError(ret) {
		return vk.NullShaderModule, ret
	}
	if int(info.CodeSize) != len(info.PCode)*4 {
		d.misuse = append(d.misuse, "shader code size does not match words")
	}
	return handleOf[vk.ShaderModule](d.newObject("shaderModule")), vk.Success
}

func (d *fakeDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	d.release("shaderModule", ptrOf(module))
}

func (d *fakeDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	d.use("pipelineLayout", ptrOf(info.Layout))
	d.use("renderPass", ptrOf(info.RenderPass))
	for _, stage := range info.PStages {
		d.use("shaderModule", ptrOf(stage.Module))
	}
	if ret := d.check("CreateGraphicsPipeline"); isError(ret) {
		return vk.NullPipeline, ret
	}
	copied := *info
	d.pipelineInfo = &copied
	return handleOf[vk.Pipeline](d.newObject("pipeline")), vk.Success
}

func (d *fakeDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	d.release("pipeline", ptrOf(pipeline))
}

func (d *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	if ret := d.check("CreateImageView"); isError(ret) {
		return vk.NullImageView, ret
	}
	return handleOf[vk.ImageView](d.newObject("imageView")), vk.Success
}

func (d *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	d.release("imageView", ptrOf(view))
}

func (d *fakeDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	d.use("renderPass", ptrOf(info.RenderPass))
	for _, view := range info.PAttachments {
		d.use("imageView", ptrOf(view))
	}
	if ret := d.check("CreateFramebuffer"); isError(ret) {
		return vk.NullFramebuffer, ret
	}
	return handleOf[vk.Framebuffer](d.newObject("framebuffer")), vk.Success
}

func (d *fakeDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	d.release("framebuffer", ptrOf(framebuffer))
}

func (d *fakeDriver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	if ret := d.check("CreateCommandPool"); isError(ret) {
		return vk.NullCommandPool, ret
	}
	return handleOf[vk.CommandPool](d.newObject("commandPool")), vk.Success
}

func (d *fakeDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	d.release("commandPool", ptrOf(pool))
}

func (d *fakeDriver) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result) {
	d.use("commandPool", ptrOf(info.CommandPool))
	if ret := d.check("AllocateCommandBuffers"); isError(ret) {
		return nil, ret
	}
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	for i := range buffers {
		p := d.newObject("commandBuffer")
		d.parent[p] = ptrOf(info.CommandPool)
		buffers[i] = handleOf[vk.CommandBuffer](p)
	}
	return buffers, vk.Success
}

func (d *fakeDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	d.use("commandPool", ptrOf(pool))
	for _, b := range buffers {
		d.release("commandBuffer", ptrOf(b))
	}
}

func (d *fakeDriver) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	d.use("commandBuffer", ptrOf(cmd))
	if ret := d.check("BeginCommandBuffer"); isError(ret) {
		return ret
	}
	d.recordings[ptrOf(cmd)]++
	d.commands[ptrOf(cmd)] = []string{"begin"}
	return vk.Success
}

func (d *fakeDriver) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	d.record(cmd, "end")
	return d.check("EndCommandBuffer")
}

func (d *fakeDriver) record(cmd vk.CommandBuffer, op string) {
	d.use("commandBuffer", ptrOf(cmd))
	d.commands[ptrOf(cmd)] = append(d.commands[ptrOf(cmd)], op)
}

func (d *fakeDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	d.use("renderPass", ptrOf(info.RenderPass))
	d.use("framebuffer", ptrOf(info.Framebuffer))
	d.clears = append(d.clears, info.PClearValues...)
	d.renderAreas = append(d.renderAreas, info.RenderArea)
	d.record(cmd, "beginRenderPass")
}

func (d *fakeDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	d.record(cmd, "endRenderPass")
}

func (d *fakeDriver) CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	d.use("pipeline", ptrOf(pipeline))
	d.record(cmd, "bindPipeline")
}

func (d *fakeDriver) CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, sets []vk.DescriptorSet) {
	for _, set := range sets {
		d.use("descriptorSet", ptrOf(set))
	}
	d.record(cmd, "bindDescriptorSets")
}

func (d *fakeDriver) CmdBindVertexBuffers(cmd vk.CommandBuffer, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	for _, b := range buffers {
		d.use("buffer", ptrOf(b))
	}
	d.record(cmd, "bindVertexBuffers")
}

func (d *fakeDriver) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	d.use("buffer", ptrOf(buffer))
	d.record(cmd, "bindIndexBuffer")
}

func (d *fakeDriver) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	d.record(cmd, fmt.Sprintf("drawIndexed(%d,%d)", indexCount, instanceCount))
}

func (d *fakeDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, vk.Result) {
	d.use("swapchain", ptrOf(swapchain))
	d.use("semaphore", ptrOf(semaphore))
	ret := d.check("AcquireNextImage")
	if isError(ret) && ret != vk.Suboptimal {
		return 0, ret
	}
	return d.advance(swapchain), ret
}

func (d *fakeDriver) advance(swapchain vk.Swapchain) uint32 {
	n := uint32(len(d.swapImages[ptrOf(swapchain)]))
	if n == 0 {
		return 0
	}
	index := d.nextImage % n
	d.nextImage++
	return index
}

func (d *fakeDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo) vk.Result {
	for _, s := range submits {
		for _, sem := range s.PWaitSemaphores {
			d.use("semaphore", ptrOf(sem))
		}
		for _, sem := range s.PSignalSemaphores {
			d.use("semaphore", ptrOf(sem))
		}
		for _, cmd := range s.PCommandBuffers {
			d.use("commandBuffer", ptrOf(cmd))
			d.submitted = append(d.submitted, cmd)
		}
	}
	return d.check("QueueSubmit")
}

func (d *fakeDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	for _, sc := range info.PSwapchains {
		d.use("swapchain", ptrOf(sc))
	}
	d.presented = append(d.presented, info.PImageIndices...)
	return d.check("QueuePresent")
}

func (d *fakeDriver) QueueWaitIdle(queue vk.Queue) vk.Result {
	return d.check("QueueWaitIdle")
}

// fakeWindow stands in for a glfw window.
type fakeWindow struct {
	width, height int
	extensions    []string
	surfaceErr    error
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{
		width:      800,
		height:     600,
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
	}
}

func (w *fakeWindow) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	if w.surfaceErr != nil {
		return 0, w.surfaceErr
	}
	return 1, nil
}

func (w *fakeWindow) GetFramebufferSize() (int, int) { return w.width, w.height }

func (w *fakeWindow) GetRequiredInstanceExtensions() []string {
	return append([]string(nil), w.extensions...)
}

// resize changes the window and what the surface reports for it.
func (d *fakeDriver) resize(w *fakeWindow, width, height int) {
	w.width, w.height = width, height
	d.caps.CurrentExtent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

var errFakeSurface = errors.New("fake surface failure")

// testShaders are well formed enough for the fake driver: whole words with
// the SPIR-V magic number first.
func testShaders() ShaderSource {
	vert := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}
	frag := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0, 1, 0, 0, 0}
	return ShaderSource{Vertex: vert, Fragment: frag}
}

// testConfig keeps arenas small so tests stay cheap.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ArenaSize = 64 << 10
	cfg.UniformArenaSize = 16 << 10
	return cfg
}

func newTestInstance(t *testing.T, drv *fakeDriver, win *fakeWindow) *Instance {
	t.Helper()
	inst, err := CreateInstance(drv, testConfig(), win.GetRequiredInstanceExtensions())
	require.NoError(t, err)
	require.NoError(t, inst.CreateSurface(win))
	_, err = inst.EnumeratePhysicalDevices()
	require.NoError(t, err)
	return inst
}

// newTestDevice opens a device and registers its teardown.
func newTestDevice(t *testing.T, drv *fakeDriver, win *fakeWindow) *Device {
	t.Helper()
	inst := newTestInstance(t, drv, win)
	d, err := NewDevice(inst, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		d.Destroy()
		inst.Destroy()
	})
	return d
}

func newTestContext(t *testing.T, drv *fakeDriver, win *fakeWindow) *Context {
	t.Helper()
	ctx, err := Initialize(testConfig(), drv, win, testShaders())
	require.NoError(t, err)
	t.Cleanup(ctx.Shutdown)
	return ctx
}
