package tortuga

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

const (
	swapchainExtension   = "VK_KHR_swapchain"
	debugReportExtension = "VK_EXT_debug_report"
)

// checkExisting splits required into the names present in actual and the
// names that are missing, preserving the order of required.
func checkExisting(actual, required []string) (existing, missing []string) {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[strings.TrimSuffix(name, "\x00")] = struct{}{}
	}
	for _, name := range required {
		name = strings.TrimSuffix(name, "\x00")
		if _, ok := have[name]; ok {
			existing = append(existing, name)
		} else {
			missing = append(missing, name)
		}
	}
	return existing, missing
}

// dedupe drops repeated names keeping first occurrences.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, name := range names {
		name = strings.TrimSuffix(name, "\x00")
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func hasName(names []string, want string) bool {
	for _, name := range names {
		if strings.TrimSuffix(name, "\x00") == want {
			return true
		}
	}
	return false
}

// safeString null terminates s for the C side.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// FindRequiredMemoryType returns the first memory type allowed by typeBits
// whose property flags include every bit of required.
func FindRequiredMemoryType(props vk.PhysicalDeviceMemoryProperties,
	typeBits uint32, required vk.MemoryPropertyFlagBits) (uint32, bool) {

	count := props.MemoryTypeCount
	if count > vk.MaxMemoryTypes {
		count = vk.MaxMemoryTypes
	}
	want := vk.MemoryPropertyFlags(required)
	for i := uint32(0); i < count; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if props.MemoryTypes[i].PropertyFlags&want == want {
			return i, true
		}
	}
	return 0, false
}
