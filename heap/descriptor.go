package heap

// Descriptor is an opaque handle to one allocation (or free block) managed
// by a Manager. Its identity is stable only while it is live; once
// Released, the Manager may recycle the underlying struct into a later,
// unrelated Allocate call, per spec.md §3's "identity is stable across
// alloc/free cycles only via the pool, never exposed across a free".
type Descriptor struct {
	start uint32
	size  uint32
	free  bool

	// address-space neighbors, sorted ascending by start with no gaps or
	// overlaps between live descriptors (spec.md §3 invariant).
	prevInMem *Descriptor
	nextInMem *Descriptor

	// intrusive bucket-list neighbors; only meaningful while free and
	// owned by a freeBlockPool bucket.
	prevInList *Descriptor
	nextInList *Descriptor
}

// Start returns the descriptor's starting address.
func (d *Descriptor) Start() uint32 { return d.start }

// Size returns the descriptor's size in bytes.
func (d *Descriptor) Size() uint32 { return d.size }

// insertAfter splices n into the address-space list immediately after d.
func (d *Descriptor) insertAfter(n *Descriptor) {
	n.prevInMem = d
	n.nextInMem = d.nextInMem
	if d.nextInMem != nil {
		d.nextInMem.prevInMem = n
	}
	d.nextInMem = n
}

// removeFromMemList unlinks d from the address-space list.
func (d *Descriptor) removeFromMemList() {
	if d.prevInMem != nil {
		d.prevInMem.nextInMem = d.nextInMem
	}
	if d.nextInMem != nil {
		d.nextInMem.prevInMem = d.prevInMem
	}
	d.prevInMem = nil
	d.nextInMem = nil
}
