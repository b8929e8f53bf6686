package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// Swapchain is the chain of presentable images for the instance surface.
type Swapchain struct {
	device  *Device
	desired uint32

	handle vk.Swapchain
	format vk.SurfaceFormat
	mode   vk.PresentMode
	extent vk.Extent2D
	images []vk.Image
}

// NewSwapchain creates the swapchain of d asking for desired images, zero
// meaning the surface minimum.
func NewSwapchain(d *Device, desired uint32) (*Swapchain, error) {
	s := &Swapchain{device: d, desired: desired}
	if err := s.Create(); err != nil {
		return nil, err
	}
	return s, nil
}

// Create queries the surface and builds the swapchain and its image list.
func (s *Swapchain) Create() error {
	d := s.device
	ifns := d.instance.fns
	surface := d.instance.surface

	caps, ret := ifns.GetPhysicalDeviceSurfaceCapabilities(d.gpu, surface)
	if err := newError(ErrSwapchainCreation, "surface capabilities", ret); err != nil {
		return err
	}
	formats, ret := ifns.GetPhysicalDeviceSurfaceFormats(d.gpu, surface)
	if err := newError(ErrSwapchainCreation, "surface formats", ret); err != nil {
		return err
	}
	format, ok := chooseSurfaceFormat(formats)
	if !ok {
		return failure(ErrSwapchainCreation, "create swapchain", "surface reports no formats")
	}

	// FIFO is the only mode every implementation must support.
	mode := vk.PresentModeFifo
	if modes, ret := ifns.GetPhysicalDeviceSurfacePresentModes(d.gpu, surface); isError(ret) {
		Logger().Debug("vulkan: present mode query failed", "err", NewError(ret))
	} else if len(modes) > 0 && !hasPresentMode(modes, mode) {
		Logger().Warn("vulkan: surface does not list FIFO present mode", "modes", len(modes))
	}

	extent := chooseExtent(caps, d.instance.window)
	if extent.Width == 0 || extent.Height == 0 {
		return failure(ErrSwapchainCreation, "create swapchain", "zero extent %dx%d", extent.Width, extent.Height)
	}
	count := imageCount(caps, s.desired)

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    count,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   compositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:      mode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if !d.families.Shared() {
		indices := d.families.Indices()
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = uint32(len(indices))
		info.PQueueFamilyIndices = indices
	}

	handle, ret := d.fns.CreateSwapchain(d.handle, &info)
	if err := newError(ErrSwapchainCreation, "create swapchain", ret); err != nil {
		return err
	}
	images, ret := d.fns.GetSwapchainImages(d.handle, handle)
	if isError(ret) || len(images) == 0 {
		d.fns.DestroySwapchain(d.handle, handle)
		if err := newError(ErrNoSwapchainImages, "swapchain images", ret); err != nil {
			return err
		}
		return failure(ErrNoSwapchainImages, "swapchain images", "driver returned none")
	}

	s.handle = handle
	s.format = format
	s.mode = mode
	s.extent = extent
	s.images = images

	Logger().Debug("vulkan: swapchain created",
		"width", extent.Width, "height", extent.Height,
		"images", len(images), "format", format.Format,
		"sharing", info.ImageSharingMode)
	return nil
}

// Recreate drops the current swapchain and builds a new one against the
// surface's present state. Every view or framebuffer over the old images
// must already be gone.
func (s *Swapchain) Recreate() error {
	s.Destroy()
	return s.Create()
}

// Destroy releases the swapchain. The images are owned by it and go too.
func (s *Swapchain) Destroy() {
	if s == nil || s.handle == vk.NullSwapchain {
		return
	}
	s.device.fns.DestroySwapchain(s.device.handle, s.handle)
	s.handle = vk.NullSwapchain
	s.images = nil
}

func (s *Swapchain) Handle() vk.Swapchain        { return s.handle }
func (s *Swapchain) Format() vk.SurfaceFormat    { return s.format }
func (s *Swapchain) Extent() vk.Extent2D         { return s.extent }
func (s *Swapchain) Images() []vk.Image          { return s.images }
func (s *Swapchain) PresentMode() vk.PresentMode { return s.mode }

// Rect is the full swap area.
func (s *Swapchain) Rect() vk.Rect2D {
	return vk.Rect2D{Offset: vk.Offset2D{}, Extent: s.extent}
}

func (s *Swapchain) Viewport() vk.Viewport {
	return vk.Viewport{
		Width:    float32(s.extent.Width),
		Height:   float32(s.extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
}

// chooseSurfaceFormat takes the first reported format. A lone undefined
// entry means the surface accepts anything.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, bool) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, false
	}
	format := formats[0]
	if format.Format == vk.FormatUndefined {
		format.Format = vk.FormatB8g8r8a8Unorm
		format.ColorSpace = vk.ColorSpaceSrgbNonlinear
	}
	return format, true
}

func hasPresentMode(modes []vk.PresentMode, want vk.PresentMode) bool {
	for _, m := range modes {
		if m == want {
			return true
		}
	}
	return false
}

// chooseExtent follows the surface's current extent unless it reports the
// special width, in which case the window decides within the allowed range.
func chooseExtent(caps vk.SurfaceCapabilities, window Window) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	if window == nil {
		return caps.MinImageExtent
	}
	return clampExtent(framebufferExtent(window), caps.MinImageExtent, caps.MaxImageExtent)
}

func imageCount(caps vk.SurfaceCapabilities, desired uint32) uint32 {
	count := caps.MinImageCount
	if desired > 0 {
		count = desired
	}
	if count < caps.MinImageCount {
		count = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	if count == 0 {
		count = 1
	}
	return count
}

func compositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, bit := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}
