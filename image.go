package tortuga

import vk "github.com/vulkan-go/vulkan"

// createImageView wraps one swapchain image as a 2D color view.
func createImageView(fns DeviceFuncs, device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	view, ret := fns.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	})
	if err := newError(ErrImageView, "create image view", ret); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func createFramebuffer(fns DeviceFuncs, device vk.Device, pass vk.RenderPass, view vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	attachments := []vk.ImageView{view}
	framebuffer, ret := fns.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	})
	if err := newError(ErrFramebuffer, "create framebuffer", ret); err != nil {
		return vk.NullFramebuffer, err
	}
	return framebuffer, nil
}
