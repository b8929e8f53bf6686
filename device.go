package tortuga

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// Device is the logical device opened on one physical device of an Instance,
// together with its queues, swapchain, frame semaphores and memory arena.
type Device struct {
	instance *Instance
	index    int
	gpu      vk.PhysicalDevice

	fns    DeviceFuncs
	handle vk.Device

	families      QueueFamilies
	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	properties       vk.PhysicalDeviceProperties
	memoryProperties vk.PhysicalDeviceMemoryProperties

	swapchain      *Swapchain
	imageAcquired  vk.Semaphore
	renderComplete vk.Semaphore
	arena          *Arena
}

// CreateLogicalDevice opens gpu with one queue per distinct family and the
// swapchain extension enabled.
func CreateLogicalDevice(fns InstanceFuncs, gpu vk.PhysicalDevice, families QueueFamilies) (vk.Device, error) {
	actual, ret := fns.EnumerateDeviceExtensions(gpu)
	if err := newError(ErrDeviceCreation, "enumerate device extensions", ret); err != nil {
		return nil, err
	}
	extensions, missing := checkExisting(actual, []string{swapchainExtension})
	if len(missing) > 0 {
		return nil, failure(ErrUnsupportedExtension, "create device", "%s", strings.Join(missing, ", "))
	}

	queueInfos := queueCreateInfos(families)
	device, ret := fns.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	})
	if err := newError(ErrDeviceCreation, "create device", ret); err != nil {
		return nil, err
	}
	if device == nil {
		return nil, failure(ErrDeviceCreation, "create device", "driver returned a null device")
	}
	return device, nil
}

// NewDevice selects physical device cfg.Device of inst, opens it and builds
// the swapchain and the memory arena. On failure everything created here is
// released in reverse order.
func NewDevice(inst *Instance, cfg Config) (*Device, error) {
	gpus := inst.gpus
	if len(gpus) == 0 {
		var err error
		if gpus, err = inst.EnumeratePhysicalDevices(); err != nil {
			return nil, err
		}
	}
	if cfg.Device < 0 || cfg.Device >= len(gpus) {
		return nil, failure(ErrNoDevices, "select device", "index %d of %d devices", cfg.Device, len(gpus))
	}

	ifns := inst.fns
	d := &Device{
		instance: inst,
		index:    cfg.Device,
		gpu:      gpus[cfg.Device],
	}

	families, err := FindQueueFamilies(ifns, d.gpu, inst.surface)
	if err != nil {
		return nil, err
	}
	d.families = families
	d.properties = ifns.GetPhysicalDeviceProperties(d.gpu)
	d.memoryProperties = ifns.GetPhysicalDeviceMemoryProperties(d.gpu)

	var undo cleanupStack
	defer undo.run()

	handle, err := CreateLogicalDevice(ifns, d.gpu, d.families)
	if err != nil {
		return nil, err
	}
	d.handle = handle
	undo.push(func() { ifns.DestroyDevice(handle); d.handle = nil })

	if d.fns, err = inst.loader.LoadDeviceFunctions(d.handle); err != nil {
		return nil, err
	}

	d.graphicsQueue = d.fns.GetDeviceQueue(d.handle, d.families.Graphics, 0)
	d.presentQueue = d.graphicsQueue
	if !d.families.Shared() {
		d.presentQueue = d.fns.GetDeviceQueue(d.handle, d.families.Present, 0)
	}

	if err = d.createSemaphores(); err != nil {
		return nil, err
	}
	undo.push(d.destroySemaphores)

	if d.swapchain, err = NewSwapchain(d, cfg.SwapchainImages); err != nil {
		return nil, err
	}
	undo.push(d.swapchain.Destroy)

	if d.arena, err = NewArena(d, UsageGeometry, vk.DeviceSize(cfg.ArenaSize)); err != nil {
		return nil, err
	}

	Logger().Info("vulkan: device ready",
		"index", d.index,
		"name", vk.ToString(d.properties.DeviceName[:]),
		"graphicsFamily", d.families.Graphics,
		"presentFamily", d.families.Present,
		"images", len(d.swapchain.images))
	undo.release()
	return d, nil
}

func (d *Device) createSemaphores() error {
	acquired, ret := d.fns.CreateSemaphore(d.handle)
	if err := newError(ErrDeviceCreation, "create image-acquired semaphore", ret); err != nil {
		return err
	}
	complete, ret := d.fns.CreateSemaphore(d.handle)
	if err := newError(ErrDeviceCreation, "create render-complete semaphore", ret); err != nil {
		d.fns.DestroySemaphore(d.handle, acquired)
		return err
	}
	d.imageAcquired = acquired
	d.renderComplete = complete
	return nil
}

func (d *Device) destroySemaphores() {
	if d.renderComplete != vk.NullSemaphore {
		d.fns.DestroySemaphore(d.handle, d.renderComplete)
		d.renderComplete = vk.NullSemaphore
	}
	if d.imageAcquired != vk.NullSemaphore {
		d.fns.DestroySemaphore(d.handle, d.imageAcquired)
		d.imageAcquired = vk.NullSemaphore
	}
}

// resetSemaphores replaces both semaphores so no stale signal survives a
// swapchain rebuild. The device must be idle.
func (d *Device) resetSemaphores() error {
	d.destroySemaphores()
	return d.createSemaphores()
}

// WaitIdle blocks until the device has finished all submitted work.
func (d *Device) WaitIdle() error {
	if d == nil || d.handle == nil {
		return nil
	}
	return newError(ErrDeviceCreation, "device wait idle", d.fns.DeviceWaitIdle(d.handle))
}

func (d *Device) Handle() vk.Device                       { return d.handle }
func (d *Device) Funcs() DeviceFuncs                      { return d.fns }
func (d *Device) Instance() *Instance                     { return d.instance }
func (d *Device) PhysicalDevice() vk.PhysicalDevice       { return d.gpu }
func (d *Device) Families() QueueFamilies                 { return d.families }
func (d *Device) GraphicsQueue() vk.Queue                 { return d.graphicsQueue }
func (d *Device) PresentQueue() vk.Queue                  { return d.presentQueue }
func (d *Device) Swapchain() *Swapchain                   { return d.swapchain }
func (d *Device) Arena() *Arena                           { return d.arena }
func (d *Device) Properties() vk.PhysicalDeviceProperties { return d.properties }

func (d *Device) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return d.memoryProperties
}

// Destroy tears down the arena, semaphores, swapchain and then the logical
// device. Safe on a partially built device.
func (d *Device) Destroy() {
	if d == nil || d.handle == nil {
		return
	}
	if d.fns != nil {
		d.fns.DeviceWaitIdle(d.handle)
		if d.arena != nil {
			d.arena.Destroy()
			d.arena = nil
		}
		d.destroySemaphores()
		if d.swapchain != nil {
			d.swapchain.Destroy()
			d.swapchain = nil
		}
	}
	d.instance.fns.DestroyDevice(d.handle)
	d.handle = nil
}
