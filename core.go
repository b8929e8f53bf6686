package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// Context ties the instance, the device and the pass together and drives
// the frame loop. It is not safe for concurrent use; call it from the
// thread that owns the window.
type Context struct {
	cfg      Config
	window   Window
	instance *Instance
	device   *Device
	pass     *Pass

	state FrameState
	err   error

	frames      uint64
	recreations uint64

	// recreatePending is set when a rebuild was due but the window had no
	// drawable area.
	recreatePending bool
	rebuildPending  bool
}

// Initialize brings up the instance, surface, device, swapchain and pass
// for window. On failure everything created so far is destroyed.
func Initialize(cfg Config, loader Loader, window Window, shaders ShaderSource) (c *Context, err error) {
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	c = &Context{cfg: cfg, window: window, state: Idle}

	var undo cleanupStack
	defer undo.run()

	if c.instance, err = CreateInstance(loader, cfg, window.GetRequiredInstanceExtensions()); err != nil {
		return nil, err
	}
	undo.push(c.instance.Destroy)

	if err = c.instance.CreateSurface(window); err != nil {
		return nil, err
	}
	if _, err = c.instance.EnumeratePhysicalDevices(); err != nil {
		return nil, err
	}

	if c.device, err = NewDevice(c.instance, cfg); err != nil {
		return nil, err
	}
	undo.push(c.device.Destroy)

	if c.pass, err = NewPass(c.device, shaders, cfg); err != nil {
		return nil, err
	}

	Logger().Info("tortuga: context ready",
		"app", cfg.AppName, "images", len(c.device.swapchain.images),
		"width", c.pass.extent.Width, "height", c.pass.extent.Height)
	undo.release()
	return c, nil
}

// Err reports the fatal error that stopped the frame loop, if any.
func (c *Context) Err() error { return c.err }

// State is the step the frame loop is in, Idle between frames.
func (c *Context) State() FrameState { return c.state }

// Frames counts submitted frames.
func (c *Context) Frames() uint64 { return c.frames }

// Recreations counts completed swapchain rebuilds.
func (c *Context) Recreations() uint64 { return c.recreations }

func (c *Context) Device() *Device     { return c.device }
func (c *Context) Instance() *Instance { return c.instance }
func (c *Context) Pass() *Pass         { return c.pass }

// Extent is the size frames are currently rendered at.
func (c *Context) Extent() vk.Extent2D {
	if c.device == nil || c.device.swapchain == nil {
		return vk.Extent2D{}
	}
	return c.device.swapchain.extent
}

// RequestRebuild asks for the pass to be rebuilt before the next frame.
func (c *Context) RequestRebuild() {
	c.rebuildPending = true
}

// SetShaders swaps the SPIR-V for the pass and schedules the rebuild that
// picks it up.
func (c *Context) SetShaders(src ShaderSource) error {
	if err := c.pass.SetShaders(src); err != nil {
		return err
	}
	c.RequestRebuild()
	return nil
}

// Shutdown waits for the device and destroys the pass, the device and the
// instance in that order. It is safe to call more than once.
func (c *Context) Shutdown() {
	if c == nil {
		return
	}
	if c.device != nil {
		if err := c.device.WaitIdle(); err != nil {
			Logger().Warn("tortuga: wait idle before shutdown", "err", err)
		}
	}
	if c.pass != nil {
		c.pass.Destroy()
		c.pass = nil
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
	if c.state != Failed {
		c.state = Idle
	}
	Logger().Info("tortuga: shut down", "frames", c.frames, "recreations", c.recreations)
}
