package tortuga

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Arena is a bump allocator over one host visible, host coherent memory
// allocation. Sub-allocations are separate buffer objects bound into the
// arena's memory at increasing offsets; nothing is ever freed individually.
// Reset rewinds the cursor and bumps the generation so allocations made
// before it are rejected by Write and Read.
type Arena struct {
	fns    DeviceFuncs
	device vk.Device
	limits vk.PhysicalDeviceLimits

	usage      Usage
	buffer     vk.Buffer
	memory     vk.DeviceMemory
	memoryType uint32
	memorySize vk.DeviceSize
	atomSize   vk.DeviceSize

	capacity   vk.DeviceSize
	offset     vk.DeviceSize
	generation uint32
}

// Allocation is a range of an Arena with its own buffer object. It owns the
// buffer handle but not the memory behind it.
type Allocation struct {
	Buffer vk.Buffer
	Offset vk.DeviceSize
	Size   vk.DeviceSize
	Usage  Usage

	arena      *Arena
	generation uint32
}

// NewArena creates the backing buffer of capacity bytes and binds freshly
// allocated memory to it.
func NewArena(d *Device, usage Usage, capacity vk.DeviceSize) (*Arena, error) {
	if capacity == 0 {
		return nil, failure(ErrAllocation, "create arena", "zero capacity")
	}
	a := &Arena{
		fns:      d.fns,
		device:   d.handle,
		limits:   d.properties.Limits,
		usage:    usage,
		capacity: capacity,
		atomSize: d.properties.Limits.NonCoherentAtomSize,
	}
	if a.atomSize == 0 {
		a.atomSize = 1
	}

	var undo cleanupStack
	defer undo.run()

	buffer, ret := a.fns.CreateBuffer(a.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        capacity,
		Usage:       usage.Flags(),
		SharingMode: vk.SharingModeExclusive,
	})
	if err := newError(ErrAllocation, "create arena buffer", ret); err != nil {
		return nil, err
	}
	a.buffer = buffer
	undo.push(func() { a.fns.DestroyBuffer(a.device, buffer); a.buffer = vk.NullBuffer })

	reqs := a.fns.GetBufferMemoryRequirements(a.device, buffer)
	memType, ok := FindRequiredMemoryType(d.memoryProperties, reqs.MemoryTypeBits,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if !ok {
		return nil, failure(ErrMemoryTypeNotFound, "create arena", "no host visible and coherent type in mask %#x", reqs.MemoryTypeBits)
	}
	a.memoryType = memType

	memory, ret := a.fns.AllocateMemory(a.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	})
	if err := newError(ErrAllocation, "allocate arena memory", ret); err != nil {
		return nil, err
	}
	a.memory = memory
	a.memorySize = reqs.Size
	undo.push(func() { a.fns.FreeMemory(a.device, memory); a.memory = vk.NullDeviceMemory })

	if err := newError(ErrAllocation, "bind arena memory", a.fns.BindBufferMemory(a.device, buffer, memory, 0)); err != nil {
		return nil, err
	}

	Logger().Debug("vulkan: arena created",
		"usage", usage, "capacity", capacity, "memoryType", memType, "atom", a.atomSize)
	undo.release()
	return a, nil
}

// Allocate carves size bytes out of the arena at an offset aligned to
// alignment, the buffer's own requirement and the device limit for usage,
// whichever is largest.
func (a *Arena) Allocate(alignment vk.DeviceSize, usage Usage, size vk.DeviceSize) (Allocation, error) {
	if size == 0 {
		return Allocation{}, failure(ErrAllocation, "arena allocate", "zero size")
	}
	if !a.usage.Has(usage) {
		return Allocation{}, failure(ErrAllocation, "arena allocate", "usage %s outside arena usage %s", usage, a.usage)
	}

	buffer, ret := a.fns.CreateBuffer(a.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage.Flags(),
		SharingMode: vk.SharingModeExclusive,
	})
	if err := newError(ErrAllocation, "arena allocate", ret); err != nil {
		return Allocation{}, err
	}

	reqs := a.fns.GetBufferMemoryRequirements(a.device, buffer)
	if reqs.MemoryTypeBits&(1<<a.memoryType) == 0 {
		a.fns.DestroyBuffer(a.device, buffer)
		return Allocation{}, failure(ErrMemoryTypeNotFound, "arena allocate", "memory type %d not in mask %#x", a.memoryType, reqs.MemoryTypeBits)
	}

	align := maxSize(maxSize(alignment, reqs.Alignment), minAlignment(a.limits, usage))
	offset := alignUp(a.offset, align)
	span := maxSize(size, reqs.Size)
	if offset > a.capacity || span > a.capacity-offset {
		a.fns.DestroyBuffer(a.device, buffer)
		return Allocation{}, failure(ErrOutOfArenaSpace, "arena allocate",
			"need %d bytes at %d, capacity %d", span, offset, a.capacity)
	}

	if err := newError(ErrAllocation, "arena bind", a.fns.BindBufferMemory(a.device, buffer, a.memory, offset)); err != nil {
		a.fns.DestroyBuffer(a.device, buffer)
		return Allocation{}, err
	}
	a.offset = offset + span

	return Allocation{
		Buffer:     buffer,
		Offset:     offset,
		Size:       size,
		Usage:      usage,
		arena:      a,
		generation: a.generation,
	}, nil
}

// Write copies data to the start of alloc through a temporary mapping that
// is flushed and invalidated before it is unmapped.
func (a *Arena) Write(alloc Allocation, data []byte) error {
	if err := a.check(alloc, "arena write", len(data)); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return a.mapRange(alloc, len(data), "arena write", func(ptr unsafe.Pointer, r []vk.MappedMemoryRange) error {
		vk.Memcopy(ptr, data)
		if err := newError(ErrMemoryMap, "flush mapped range", a.fns.FlushMappedMemoryRanges(a.device, r)); err != nil {
			return err
		}
		return newError(ErrMemoryMap, "invalidate mapped range", a.fns.InvalidateMappedMemoryRanges(a.device, r))
	})
}

// Read maps alloc again and returns its first n bytes as the host sees them.
func (a *Arena) Read(alloc Allocation, n int) ([]byte, error) {
	if err := a.check(alloc, "arena read", n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	err := a.mapRange(alloc, n, "arena read", func(ptr unsafe.Pointer, r []vk.MappedMemoryRange) error {
		if err := newError(ErrMemoryMap, "invalidate mapped range", a.fns.InvalidateMappedMemoryRanges(a.device, r)); err != nil {
			return err
		}
		copy(out, unsafe.Slice((*byte)(ptr), n))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Arena) check(alloc Allocation, op string, n int) error {
	switch {
	case alloc.arena != a:
		return failure(ErrStaleAllocation, op, "allocation belongs to another arena")
	case alloc.generation != a.generation:
		return failure(ErrStaleAllocation, op, "generation %d, arena at %d", alloc.generation, a.generation)
	case n < 0 || vk.DeviceSize(n) > alloc.Size:
		return failure(ErrMemoryMap, op, "%d bytes exceed allocation of %d", n, alloc.Size)
	}
	return nil
}

// mapRange maps the atom aligned range covering the first n bytes of alloc
// and calls fn with a pointer to the allocation start.
func (a *Arena) mapRange(alloc Allocation, n int, op string, fn func(ptr unsafe.Pointer, r []vk.MappedMemoryRange) error) error {
	start := alignDown(alloc.Offset, a.atomSize)
	end := alignUp(alloc.Offset+vk.DeviceSize(n), a.atomSize)
	if end > a.memorySize {
		end = a.memorySize
	}

	ptr, ret := a.fns.MapMemory(a.device, a.memory, start, end-start)
	if err := newError(ErrMemoryMap, op, ret); err != nil {
		return err
	}
	if ptr == nil {
		a.fns.UnmapMemory(a.device, a.memory)
		return failure(ErrMemoryMap, op, "driver returned a null mapping")
	}
	defer a.fns.UnmapMemory(a.device, a.memory)

	ranges := []vk.MappedMemoryRange{{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: a.memory,
		Offset: start,
		Size:   end - start,
	}}
	return fn(unsafe.Add(ptr, alloc.Offset-start), ranges)
}

// Reset rewinds the cursor. Memory and the backing buffer stay; every
// allocation made so far becomes stale and must be recreated.
func (a *Arena) Reset() {
	a.offset = 0
	a.generation++
}

func (a *Arena) Offset() vk.DeviceSize   { return a.offset }
func (a *Arena) Capacity() vk.DeviceSize { return a.capacity }
func (a *Arena) Free() vk.DeviceSize     { return a.capacity - a.offset }
func (a *Arena) Generation() uint32      { return a.generation }
func (a *Arena) Usage() Usage            { return a.usage }

// Destroy releases the backing buffer and memory.
func (a *Arena) Destroy() {
	if a == nil {
		return
	}
	if a.buffer != vk.NullBuffer {
		a.fns.DestroyBuffer(a.device, a.buffer)
		a.buffer = vk.NullBuffer
	}
	if a.memory != vk.NullDeviceMemory {
		a.fns.FreeMemory(a.device, a.memory)
		a.memory = vk.NullDeviceMemory
	}
	a.offset = 0
}

// Valid reports whether the allocation still refers to live arena space.
func (al Allocation) Valid() bool {
	return al.arena != nil && al.Buffer != vk.NullBuffer && al.generation == al.arena.generation
}

// Destroy releases the allocation's buffer object. The bytes stay reserved
// until the arena is reset or destroyed.
func (al *Allocation) Destroy() {
	if al.arena != nil && al.Buffer != vk.NullBuffer {
		al.arena.fns.DestroyBuffer(al.arena.device, al.Buffer)
	}
	al.Buffer = vk.NullBuffer
}
