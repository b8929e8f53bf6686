package tortuga

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Window is the native window the renderer presents to. *glfw.Window
// satisfies it.
type Window interface {
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (surface uintptr, err error)
	GetFramebufferSize() (width, height int)
	GetRequiredInstanceExtensions() []string
}

// framebufferExtent reports the drawable size of w in pixels.
func framebufferExtent(w Window) vk.Extent2D {
	width, height := w.GetFramebufferSize()
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

func clampExtent(e vk.Extent2D, min, max vk.Extent2D) vk.Extent2D {
	if e.Width < min.Width {
		e.Width = min.Width
	}
	if max.Width > 0 && e.Width > max.Width {
		e.Width = max.Width
	}
	if e.Height < min.Height {
		e.Height = min.Height
	}
	if max.Height > 0 && e.Height > max.Height {
		e.Height = max.Height
	}
	return e
}
