// Package heap implements a segregated free-list allocator over an
// arbitrary caller-supplied address range. It manages addresses, not
// process memory: a Manager carves [base, base+size) into allocated and
// free blocks and hands back opaque Descriptor handles, making it suitable
// for sub-allocating a region of a larger arena, a memory-mapped device
// window, or any other address range a caller wants bump/split/coalesce
// semantics over.
package heap
