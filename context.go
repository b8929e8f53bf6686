package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// FrameState is the step of the frame loop a Context is in.
type FrameState int

const (
	Idle FrameState = iota
	Acquiring
	Submitting
	Presenting
	Recreating
	// Failed is terminal. Update does nothing once it is reached.
	Failed
)

func (s FrameState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case Submitting:
		return "submitting"
	case Presenting:
		return "presenting"
	case Recreating:
		return "recreating"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Update renders one frame: acquire a swapchain image, submit its recorded
// command buffer and present it. Out of date or suboptimal results rebuild
// the swapchain and the pass; a failed rebuild is fatal and reported by Err.
func (c *Context) Update() {
	if c.state == Failed || c.device == nil {
		return
	}
	if c.recreatePending {
		if !c.recreate() {
			return
		}
	} else if c.rebuildPending {
		if !c.rebuild() {
			return
		}
	}

	index, ok := c.acquire()
	if !ok {
		return
	}
	recreate, ok := c.submit(index)
	if ok && !recreate {
		recreate = c.present(index)
	}
	if !ok {
		c.state = Idle
		return
	}
	c.frames++
	if recreate {
		c.recreate()
		return
	}
	c.state = Idle
}

func (c *Context) acquire() (uint32, bool) {
	d := c.device
	c.state = Acquiring
	index, ret := d.fns.AcquireNextImage(d.handle, d.swapchain.handle, vk.MaxUint64, d.imageAcquired)
	switch {
	case ret == vk.ErrorOutOfDate:
		Logger().Debug("vulkan: swapchain out of date on acquire")
		c.recreate()
		return 0, false
	case isError(ret) && ret != vk.Suboptimal:
		Logger().Warn("vulkan: acquire failed, frame skipped", "err", NewError(ret))
		c.state = Idle
		return 0, false
	case int(index) >= len(c.pass.commandBuffers):
		Logger().Warn("vulkan: acquired image out of range, frame skipped",
			"index", index, "images", len(c.pass.commandBuffers))
		c.recreatePending = true
		c.state = Idle
		return 0, false
	}
	return index, true
}

// submit queues the command buffer for index. The first result reports
// whether presentation should be skipped for a rebuild.
func (c *Context) submit(index uint32) (recreate, ok bool) {
	d := c.device
	c.state = Submitting
	ret := d.fns.QueueSubmit(d.graphicsQueue, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{d.imageAcquired},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.pass.commandBuffers[index]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{d.renderComplete},
	}})
	switch {
	case presentationLost(ret):
		return true, true
	case isError(ret):
		// the acquire semaphore may still be signalled; a rebuild
		// replaces it
		Logger().Warn("vulkan: submit failed, frame skipped", "err", NewError(ret))
		c.recreatePending = true
		return false, false
	}
	return false, true
}

// present hands image index back to the surface and waits for the present
// queue. It reports whether the swapchain needs a rebuild.
func (c *Context) present(index uint32) bool {
	d := c.device
	c.state = Presenting
	ret := d.fns.QueuePresent(d.presentQueue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{d.renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{d.swapchain.handle},
		PImageIndices:      []uint32{index},
	})
	recreate := presentationLost(ret)
	if isError(ret) && !recreate {
		Logger().Warn("vulkan: present failed", "err", NewError(ret))
	}
	if wait := d.fns.QueueWaitIdle(d.presentQueue); isError(wait) {
		Logger().Warn("vulkan: present queue wait idle", "err", NewError(wait))
	}
	return recreate
}

// recreate rebuilds the swapchain and everything sized by it. It returns
// false when the frame has to be skipped, either because the window has no
// drawable area yet or because the rebuild failed.
func (c *Context) recreate() bool {
	c.state = Recreating
	if c.window != nil {
		if e := framebufferExtent(c.window); e.Width == 0 || e.Height == 0 {
			Logger().Debug("vulkan: zero sized framebuffer, rebuild deferred")
			c.recreatePending = true
			c.state = Idle
			return false
		}
	}

	d := c.device
	if err := d.WaitIdle(); err != nil {
		return c.fail(err)
	}
	c.pass.Teardown()
	if err := d.swapchain.Recreate(); err != nil {
		return c.fail(err)
	}
	if err := d.resetSemaphores(); err != nil {
		return c.fail(err)
	}
	if err := c.pass.Build(); err != nil {
		return c.fail(err)
	}

	c.recreations++
	c.recreatePending = false
	c.rebuildPending = false
	c.state = Idle
	Logger().Info("vulkan: swapchain recreated",
		"width", d.swapchain.extent.Width, "height", d.swapchain.extent.Height,
		"images", len(d.swapchain.images), "count", c.recreations)
	return true
}

// rebuild recreates the pass alone, for shader changes.
func (c *Context) rebuild() bool {
	c.state = Recreating
	if err := c.device.WaitIdle(); err != nil {
		return c.fail(err)
	}
	if err := c.pass.Rebuild(); err != nil {
		return c.fail(err)
	}
	c.rebuildPending = false
	c.state = Idle
	Logger().Info("vulkan: pass rebuilt", "builds", c.pass.builds)
	return true
}

func (c *Context) fail(err error) bool {
	c.err = err
	c.state = Failed
	Logger().Error("vulkan: frame loop stopped", "err", err)
	return false
}
