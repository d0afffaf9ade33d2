package heap

import "github.com/joeycumines/corert/syncutil"

// freeBlockPool buckets free descriptors by size so Get can find a
// reasonable fit in O(buckets) rather than scanning every free block.
// Ported from the original implementation's internal::FreeBlockPool: bucket
// i (i>0) holds blocks of size in (maxSizeInFirstBucket<<(i-1),
// maxSizeInFirstBucket<<i]; bucket 0 holds size in [1,maxSizeInFirstBucket];
// the last bucket is unbounded above.
type freeBlockPool struct {
	maxSizeInFirstBucket uint32
	buckets              []bucket
}

type bucket struct {
	head *Descriptor
}

func newFreeBlockPool(maxSizeInFirstBucket uint32, nBuckets uint32) freeBlockPool {
	if maxSizeInFirstBucket < 1 {
		syncutil.Panic("heap: maxSizeInFirstBucket < 1")
	}
	if nBuckets < 1 {
		syncutil.Panic("heap: nBuckets < 1")
	}

	const digits = 32
	msb := uint32(1) << (digits - 1)
	for i := uint32(0); i < nBuckets-1; i++ {
		if (maxSizeInFirstBucket<<i)&msb != 0 {
			syncutil.Panic("heap: maxSizeInFirstBucket shifted overflows uint32")
		}
	}

	return freeBlockPool{
		maxSizeInFirstBucket: maxSizeInFirstBucket,
		buckets:              make([]bucket, nBuckets),
	}
}

// determineBucketIndex mirrors FreeBlockPool::DetermineBucketIndex exactly:
// walk bucket boundaries upward (doubling each step) until size fits, then
// report the bucket one below where the walk stopped (or the last bucket,
// if size never fits below the top).
func (p *freeBlockPool) determineBucketIndex(size uint32) int {
	maxSizeInCurrentBucket := p.maxSizeInFirstBucket
	index := 1
	for index < len(p.buckets) && size > maxSizeInCurrentBucket {
		maxSizeInCurrentBucket <<= 1
		index++
	}
	return index - 1
}

// add pushes a free descriptor onto the head of its bucket's list.
func (p *freeBlockPool) add(d *Descriptor) {
	d.free = true
	idx := p.determineBucketIndex(d.size)
	b := &p.buckets[idx]
	d.prevInList = nil
	d.nextInList = b.head
	if b.head != nil {
		b.head.prevInList = d
	}
	b.head = d
}

// remove unlinks d from whichever bucket currently holds it.
func (p *freeBlockPool) remove(d *Descriptor) {
	idx := p.determineBucketIndex(d.size)
	b := &p.buckets[idx]
	if d.prevInList != nil {
		d.prevInList.nextInList = d.nextInList
	} else {
		b.head = d.nextInList
	}
	if d.nextInList != nil {
		d.nextInList.prevInList = d.prevInList
	}
	d.prevInList = nil
	d.nextInList = nil
	d.free = false
}

// get returns some free descriptor whose size is >= minimumRequiredSize, or
// nil if none exists. It starts at the bucket minimumRequiredSize maps to;
// if that bucket is empty it takes the head of the next non-empty bucket
// without further searching within it, matching the original's trade of
// allocation speed for a slightly worse fit.
func (p *freeBlockPool) get(minimumRequiredSize uint32) *Descriptor {
	startIdx := p.determineBucketIndex(minimumRequiredSize)

	for i := startIdx; i < len(p.buckets); i++ {
		b := &p.buckets[i]
		for d := b.head; d != nil; d = d.nextInList {
			if i == startIdx {
				if d.size < minimumRequiredSize {
					continue
				}
				p.remove(d)
				return d
			}
			// escalated bucket: any member is large enough, take the head.
			p.remove(b.head)
			return d
		}
	}
	return nil
}
