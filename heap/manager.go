package heap

import (
	"fmt"
	"math/bits"
)

// Manager is a segregated free-list allocator over a caller-supplied
// [base, base+size) address range. It hands out Descriptors instead of raw
// pointers: the range it manages is an abstract address space (e.g. a
// region of a memory-mapped device, a simulated heap, an arena carved out
// of a larger buffer), not necessarily process memory. Ported from the
// original HeapManager, see freeBlockPool for the bucket-selection algorithm.
//
// A Manager is not safe for concurrent use; callers needing thread safety
// should use SharedManager.
type Manager struct {
	minimumAlignment uint32
	freeBlocks       freeBlockPool
	descPool         descriptorPool
	stats            Stats
}

// New constructs a Manager governing [baseAddress, baseAddress+size).
//
// minimumAlignment must be a nonzero power of two; baseAddress and size
// must be multiples of it. maxSizeInFirstBucket bounds the largest block
// size held in bucket 0; nBuckets must be in [1,24] and, when greater than
// 1, must leave the top bucket able to hold at least one maximally sized
// block smaller than size (see the original's worked examples).
func New(minimumAlignment uint16, baseAddress uint32, size uint32, maxSizeInFirstBucket uint32, nBuckets uint32) (*Manager, error) {
	if minimumAlignment == 0 || !isPowerOfTwo(uint32(minimumAlignment)) {
		return nil, fmt.Errorf("%w: minimumAlignment %d is not a nonzero power of two", ErrInvalidArgument, minimumAlignment)
	}
	if baseAddress%uint32(minimumAlignment) != 0 {
		return nil, fmt.Errorf("%w: baseAddress %d is not aligned to %d", ErrInvalidArgument, baseAddress, minimumAlignment)
	}
	if size < uint32(minimumAlignment) || size%uint32(minimumAlignment) != 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of %d", ErrInvalidArgument, size, minimumAlignment)
	}
	if (^uint32(0)-size)+1 < baseAddress {
		return nil, fmt.Errorf("%w: baseAddress %d + size %d overflows uint32", ErrInvalidArgument, baseAddress, size)
	}
	if maxSizeInFirstBucket < uint32(minimumAlignment) || maxSizeInFirstBucket > size {
		return nil, fmt.Errorf("%w: maxSizeInFirstBucket %d out of range", ErrInvalidArgument, maxSizeInFirstBucket)
	}
	if nBuckets < 1 || nBuckets > 24 {
		return nil, fmt.Errorf("%w: nBuckets %d out of range [1,24]", ErrInvalidArgument, nBuckets)
	}
	if nBuckets > 1 && (uint64(1)<<(nBuckets-2))*uint64(maxSizeInFirstBucket) >= uint64(size) {
		return nil, fmt.Errorf("%w: nBuckets %d too large for maxSizeInFirstBucket %d and size %d", ErrInvalidArgument, nBuckets, maxSizeInFirstBucket, size)
	}

	m := &Manager{
		minimumAlignment: uint32(minimumAlignment),
		freeBlocks:       newFreeBlockPool(maxSizeInFirstBucket, nBuckets),
	}

	initial := m.descPool.get(baseAddress, size, true)
	m.freeBlocks.add(initial)
	m.stats.NbOfFreeBlocks = 1
	m.stats.TotalFreeSpace = size

	return m, nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && bits.OnesCount32(v) == 1
}

// Allocate reserves at least size bytes and returns a Descriptor for the
// reserved block, or nil (with no error) if no free block is large enough.
// size is rounded up to the next multiple of the Manager's alignment.
func (m *Manager) Allocate(size uint32) (*Descriptor, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: size must be nonzero", ErrInvalidArgument)
	}

	nBlocks := (uint64(size-1) / uint64(m.minimumAlignment)) + 1
	rounded := nBlocks * uint64(m.minimumAlignment)
	if rounded > uint64(^uint32(0)) {
		return nil, nil
	}
	size = uint32(rounded)

	block := m.freeBlocks.get(size)
	if block == nil {
		return nil, nil
	}

	if block.size > size {
		remainder := m.descPool.get(block.start+size, block.size-size, true)
		block.insertAfter(remainder)
		block.size = size
		m.freeBlocks.add(remainder)
	} else {
		m.stats.NbOfFreeBlocks--
	}

	m.stats.NbOfAllocatedBlocks++
	m.stats.TotalFreeSpace -= size
	m.stats.TotalUsedSpace += size

	return block, nil
}

// Release returns a previously allocated Descriptor to the free pool,
// coalescing it with adjacent free neighbors in the address space. descr
// must not be used again after Release returns nil error.
func (m *Manager) Release(descr *Descriptor) error {
	if descr == nil {
		return fmt.Errorf("%w: descr is nil", ErrInvalidArgument)
	}
	if descr.free {
		return fmt.Errorf("%w: descr is already free", ErrInvalidArgument)
	}

	m.stats.NbOfFreeBlocks++
	m.stats.NbOfAllocatedBlocks--
	m.stats.TotalFreeSpace += descr.size
	m.stats.TotalUsedSpace -= descr.size

	if prev := descr.prevInMem; prev != nil && prev.free {
		m.freeBlocks.remove(prev)
		descr.start = prev.start
		descr.size += prev.size
		descr.prevInMem = prev.prevInMem
		if descr.prevInMem != nil {
			descr.prevInMem.nextInMem = descr
		}
		m.descPool.put(prev)
		m.stats.NbOfFreeBlocks--
	}

	if next := descr.nextInMem; next != nil && next.free {
		m.freeBlocks.remove(next)
		descr.size += next.size
		descr.nextInMem = next.nextInMem
		if descr.nextInMem != nil {
			descr.nextInMem.prevInMem = descr
		}
		m.descPool.put(next)
		m.stats.NbOfFreeBlocks--
	}

	m.freeBlocks.add(descr)
	return nil
}

// AnyAllocations reports whether any block is currently allocated.
func (m *Manager) AnyAllocations() bool {
	return m.stats.NbOfAllocatedBlocks > 0
}

// Statistics returns a snapshot of the Manager's current bookkeeping.
func (m *Manager) Statistics() Stats {
	return m.stats
}
