package tortuga

import (
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilies are the family indices a device submits and presents on.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
}

// Shared is true when one family does both.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}

// Indices lists the distinct family indices, graphics first.
func (q QueueFamilies) Indices() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// FindQueueFamilies returns the first family with graphics support and the
// first family able to present to surface. The two scans are independent,
// so the indices may differ even when a combined family exists later on.
func FindQueueFamilies(fns InstanceFuncs, gpu vk.PhysicalDevice, surface vk.Surface) (QueueFamilies, error) {
	var (
		families        QueueFamilies
		graphicsFound   bool
		presentFound    bool
		queueProperties = fns.GetPhysicalDeviceQueueFamilyProperties(gpu)
	)
	if len(queueProperties) == 0 {
		return families, failure(ErrQueueFamilyNotFound, "find queue families", "device reports no queue families")
	}

	for i, props := range queueProperties {
		index := uint32(i)
		if !graphicsFound && props.QueueCount > 0 &&
			props.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			families.Graphics = index
			graphicsFound = true
		}
		if !presentFound {
			supported, ret := fns.GetPhysicalDeviceSurfaceSupport(gpu, index, surface)
			if isError(ret) {
				Logger().Debug("vulkan: surface support query failed", "family", index, "err", NewError(ret))
			} else if supported {
				families.Present = index
				presentFound = true
			}
		}
		if graphicsFound && presentFound {
			break
		}
	}

	switch {
	case !graphicsFound:
		return families, failure(ErrQueueFamilyNotFound, "find queue families", "no graphics capable family")
	case !presentFound:
		return families, failure(ErrQueueFamilyNotFound, "find queue families", "no family can present to the surface")
	}
	return families, nil
}

// queueCreateInfos requests one queue per distinct family.
func queueCreateInfos(families QueueFamilies) []vk.DeviceQueueCreateInfo {
	indices := families.Indices()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(indices))
	for _, index := range indices {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
