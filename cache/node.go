package cache

// keyNode is an intrusive element of one frequency bucket's recency list.
// A keyNode belongs to exactly one bucket at a time; up points towards the
// bucket's MRU end, down towards its LRU end.
type keyNode[K comparable] struct {
	key    K
	parent *freqNode[K]
	up     *keyNode[K]
	down   *keyNode[K]
}

// freqNode is a frequency bucket: a node of the doubly linked frequency
// list holding the vertical recency list of all keys visited exactly
// `frequency` times.
//
// Invariants (for any bucket present in the list, sentinel aside):
//   - length >= 1; empty buckets are unlinked immediately.
//   - mru and lru are non-nil, and equal iff length == 1.
//   - walking up from lru reaches mru in exactly length-1 steps.
//   - frequencies are strictly ascending from head.next onward.
type freqNode[K comparable] struct {
	frequency uint64
	prev      *freqNode[K]
	next      *freqNode[K]
	mru       *keyNode[K]
	lru       *keyNode[K]
	length    int
}

// newFreqList returns the sentinel head of an empty frequency list.
// The list is circular: head.next == head means no buckets.
// The sentinel's frequency is 0; real buckets start at 1.
func newFreqList[K comparable]() *freqNode[K] {
	h := &freqNode[K]{}
	h.prev, h.next = h, h
	return h
}

// spliceAfter links a fresh bucket with the given frequency right after
// prev and returns it. The caller is responsible for keeping the ascending
// frequency order.
func spliceAfter[K comparable](prev *freqNode[K], frequency uint64) *freqNode[K] {
	n := &freqNode[K]{frequency: frequency, prev: prev, next: prev.next}
	prev.next.prev = n
	prev.next = n
	return n
}

// unlink removes the (empty) bucket from the frequency list.
func (f *freqNode[K]) unlink() {
	f.prev.next = f.next
	f.next.prev = f.prev
	f.prev, f.next = nil, nil
}

// attach pushes n at the MRU end of the bucket.
func (f *freqNode[K]) attach(n *keyNode[K]) {
	n.parent = f
	if f.mru == nil {
		f.mru, f.lru = n, n
	} else {
		n.down = f.mru
		f.mru.up = n
		f.mru = n
	}
	f.length++
}

// detach removes n from the bucket's recency list and clears its links.
// The caller checks length afterwards and unlinks the bucket if it became
// empty.
func (f *freqNode[K]) detach(n *keyNode[K]) {
	switch {
	case f.length == 1:
		f.mru, f.lru = nil, nil
	case n == f.mru:
		f.mru = n.down
		f.mru.up = nil
	case n == f.lru:
		f.lru = n.up
		f.lru.down = nil
	default:
		n.up.down = n.down
		n.down.up = n.up
	}
	f.length--
	n.up, n.down = nil, nil
	n.parent = nil
}

// victim picks the eviction candidate of this bucket: the LRU key, which
// for a singleton bucket is also its MRU.
func (f *freqNode[K]) victim() *keyNode[K] {
	if f.length > 1 {
		return f.lru
	}
	return f.mru
}
