package tortuga

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// Instance owns the loaded driver, the API instance and the presentable
// surface. It is created first and destroyed last.
type Instance struct {
	loader Loader
	pre    PreInstanceFuncs
	fns    InstanceFuncs

	handle        vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface
	window        Window

	extensions []string
	layers     []string
	gpus       []vk.PhysicalDevice
}

// CreateInstance loads the driver through loader and creates an instance
// with every name in requiredExtensions enabled. A missing extension fails
// with ErrUnsupportedExtension before anything is created.
func CreateInstance(loader Loader, cfg Config, requiredExtensions []string) (inst *Instance, err error) {
	log := Logger()
	inst = &Instance{loader: loader}

	var undo cleanupStack
	defer undo.run()

	if err = loader.Load(); err != nil {
		return nil, err
	}
	undo.push(loader.Unload)

	if inst.pre, err = loader.LoadPreInstanceFunctions(); err != nil {
		return nil, err
	}

	supported, ret := inst.pre.EnumerateInstanceExtensions()
	if err = newError(ErrUnsupportedExtension, "enumerate instance extensions", ret); err != nil {
		return nil, err
	}
	required := dedupe(append(append([]string{}, requiredExtensions...), cfg.InstanceExtensions...))
	extensions, missing := checkExisting(supported, required)
	if len(missing) > 0 {
		return nil, failure(ErrUnsupportedExtension, "create instance", "%s", strings.Join(missing, ", "))
	}

	var layers []string
	if cfg.Debug {
		available, ret := inst.pre.EnumerateInstanceLayers()
		if isError(ret) {
			log.Warn("vulkan: cannot enumerate layers", "err", NewError(ret))
		}
		var absent []string
		layers, absent = checkExisting(available, cfg.ValidationLayers)
		if len(absent) > 0 {
			log.Warn("vulkan: validation layers unavailable", "layers", absent)
		}
		if hasName(supported, debugReportExtension) && !hasName(extensions, debugReportExtension) {
			extensions = append(extensions, debugReportExtension)
		}
	}

	handle, ret := inst.pre.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(DefaultVulkanAPIVersion),
			ApplicationVersion: uint32(DefaultVulkanAppVersion),
			PApplicationName:   safeString(cfg.AppName),
			EngineVersion:      uint32(DefaultVulkanAppVersion),
			PEngineName:        safeString(cfg.EngineName),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	})
	if isError(ret) {
		kind := ErrInstanceCreation
		if ret == vk.ErrorExtensionNotPresent || ret == vk.ErrorLayerNotPresent {
			kind = ErrUnsupportedExtension
		}
		return nil, newError(kind, "create instance", ret)
	}
	inst.handle = handle
	inst.extensions = extensions
	inst.layers = layers
	pre := inst.pre
	undo.push(func() { pre.DestroyInstance(handle) })

	if inst.fns, err = loader.LoadInstanceFunctions(handle); err != nil {
		return nil, err
	}

	if cfg.Debug && hasName(extensions, debugReportExtension) {
		callback, ret := inst.fns.CreateDebugCallback(handle)
		if isError(ret) {
			log.Warn("vulkan: debug report callback unavailable", "err", NewError(ret))
		} else {
			inst.debugCallback = callback
			fns := inst.fns
			undo.push(func() { fns.DestroyDebugCallback(handle, callback) })
		}
	}

	log.Info("vulkan: instance created",
		"extensions", len(extensions), "layers", len(layers))
	undo.release()
	return inst, nil
}

// CreateSurface binds the instance to window. Only one surface is kept.
func (inst *Instance) CreateSurface(window Window) error {
	if inst.surface != vk.NullSurface {
		return failure(ErrSurfaceCreation, "create surface", "surface already exists")
	}
	surface, err := inst.fns.CreateWindowSurface(inst.handle, window)
	if err != nil {
		return failure(ErrSurfaceCreation, "create surface", "%v", err)
	}
	if surface == vk.NullSurface {
		return failure(ErrSurfaceCreation, "create surface", "null surface")
	}
	inst.surface = surface
	inst.window = window
	return nil
}

// EnumeratePhysicalDevices returns the GPUs in driver order.
func (inst *Instance) EnumeratePhysicalDevices() ([]vk.PhysicalDevice, error) {
	gpus, ret := inst.fns.EnumeratePhysicalDevices(inst.handle)
	if err := newError(ErrNoDevices, "enumerate physical devices", ret); err != nil {
		return nil, err
	}
	if len(gpus) == 0 {
		return nil, failure(ErrNoDevices, "enumerate physical devices", "driver reported none")
	}
	inst.gpus = gpus
	return gpus, nil
}

// Handle returns the API instance.
func (inst *Instance) Handle() vk.Instance { return inst.handle }

func (inst *Instance) Surface() vk.Surface { return inst.surface }

func (inst *Instance) Window() Window { return inst.window }

func (inst *Instance) Funcs() InstanceFuncs { return inst.fns }

// Destroy releases the surface, the debug callback and the instance, then
// unloads the driver. It may be called on a partially created instance.
func (inst *Instance) Destroy() {
	if inst == nil {
		return
	}
	if inst.fns != nil && inst.handle != nil {
		if inst.surface != vk.NullSurface {
			inst.fns.DestroySurface(inst.handle, inst.surface)
			inst.surface = vk.NullSurface
		}
		if inst.debugCallback != vk.NullDebugReportCallback {
			inst.fns.DestroyDebugCallback(inst.handle, inst.debugCallback)
			inst.debugCallback = vk.NullDebugReportCallback
		}
		inst.fns.DestroyInstance(inst.handle)
		inst.handle = nil
	}
	if inst.loader != nil {
		inst.loader.Unload()
		inst.loader = nil
	}
}
