package tortuga

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// Usage is a set of buffer roles an arena or allocation serves.
type Usage vk.BufferUsageFlags

const (
	UsageTransferSrc = Usage(vk.BufferUsageTransferSrcBit)
	UsageTransferDst = Usage(vk.BufferUsageTransferDstBit)
	UsageUniform     = Usage(vk.BufferUsageUniformBufferBit)
	UsageStorage     = Usage(vk.BufferUsageStorageBufferBit)
	UsageIndex       = Usage(vk.BufferUsageIndexBufferBit)
	UsageVertex      = Usage(vk.BufferUsageVertexBufferBit)

	// UsageGeometry is what the device arena is created with.
	UsageGeometry = UsageVertex | UsageIndex | UsageUniform
)

// Has reports whether every role in other is part of u.
func (u Usage) Has(other Usage) bool {
	return u&other == other
}

func (u Usage) Flags() vk.BufferUsageFlags {
	return vk.BufferUsageFlags(u)
}

func (u Usage) String() string {
	if u == 0 {
		return "none"
	}
	names := []struct {
		bit  Usage
		name string
	}{
		{UsageTransferSrc, "transfer-src"},
		{UsageTransferDst, "transfer-dst"},
		{UsageUniform, "uniform"},
		{UsageStorage, "storage"},
		{UsageIndex, "index"},
		{UsageVertex, "vertex"},
	}
	var parts []string
	for _, n := range names {
		if u.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// minAlignment is the device imposed offset alignment for usage.
func minAlignment(limits vk.PhysicalDeviceLimits, usage Usage) vk.DeviceSize {
	align := vk.DeviceSize(1)
	if usage.Has(UsageUniform) && limits.MinUniformBufferOffsetAlignment > align {
		align = limits.MinUniformBufferOffsetAlignment
	}
	if usage.Has(UsageStorage) && limits.MinStorageBufferOffsetAlignment > align {
		align = limits.MinStorageBufferOffsetAlignment
	}
	return align
}

func alignUp(v, align vk.DeviceSize) vk.DeviceSize {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}

func alignDown(v, align vk.DeviceSize) vk.DeviceSize {
	if align <= 1 {
		return v
	}
	return v / align * align
}

func maxSize(a, b vk.DeviceSize) vk.DeviceSize {
	if a > b {
		return a
	}
	return b
}
