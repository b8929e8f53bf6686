package tortuga

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrLoad                 = errors.New("driver library not available")
	ErrFunctionLoad         = errors.New("driver entry point missing")
	ErrInstanceCreation     = errors.New("instance creation failed")
	ErrUnsupportedExtension = errors.New("unsupported extension")
	ErrSurfaceCreation      = errors.New("surface creation failed")
	ErrNoDevices            = errors.New("no physical devices")
	ErrQueueFamilyNotFound  = errors.New("queue family not found")
	ErrDeviceCreation       = errors.New("logical device creation failed")

	ErrMemoryTypeNotFound = errors.New("no compatible memory type")
	ErrAllocation         = errors.New("device memory allocation failed")
	ErrOutOfArenaSpace    = errors.New("out of arena space")
	ErrMemoryMap          = errors.New("memory map failed")
	ErrStaleAllocation    = errors.New("allocation predates arena reset")

	ErrSwapchainCreation = errors.New("swapchain creation failed")
	ErrNoSwapchainImages = errors.New("swapchain has no images")

	ErrPipelineCreation   = errors.New("pipeline creation failed")
	ErrRenderPassCreation = errors.New("render pass creation failed")
	ErrShaderModule       = errors.New("shader module creation failed")
	ErrFramebuffer        = errors.New("framebuffer creation failed")
	ErrImageView          = errors.New("image view creation failed")
	ErrDescriptorSet      = errors.New("descriptor set creation failed")
	ErrCommandBuffer      = errors.New("command buffer failure")
)

// Error is a failed operation tagged with its kind. Result is vk.Success when
// the failure did not come from a driver call.
type Error struct {
	Kind   error
	Result vk.Result
	Op     string
	Detail string
	frame  string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if isError(e.Result) {
		fmt.Fprintf(&b, " (vulkan error: %s (%d))", vk.Error(e.Result).Error(), e.Result)
	}
	if e.frame != "" {
		b.WriteString(" on ")
		b.WriteString(e.frame)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// newError tags a failed driver result with kind. Returns nil on success.
func newError(kind error, op string, ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	return &Error{Kind: kind, Result: ret, Op: op, frame: callerFrame(2)}
}

// failure builds an error that did not originate from a driver result.
func failure(kind error, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...), frame: callerFrame(2)}
}

// NewError converts a bare driver result to an error, nil on vk.Success.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	frame := callerFrame(2)
	if frame == "" {
		return fmt.Errorf("vulkan error: %s (%d)", vk.Error(ret).Error(), ret)
	}
	return fmt.Errorf("vulkan error: %s (%d) on %s", vk.Error(ret).Error(), ret, frame)
}

func callerFrame(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	name := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s (%s:%d)", name, file, line)
}

// presentationLost reports whether ret asks for a swapchain rebuild.
func presentationLost(ret vk.Result) bool {
	return ret == vk.ErrorOutOfDate || ret == vk.Suboptimal
}
