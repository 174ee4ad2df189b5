package pmm

import "nanokernel/kernel"

// MaxFramePools bounds the process-wide frame-pool registry arena. The
// source kernel this module reimplements keeps two near-identical registry
// designs (a bounded array with an explicit pool_count, and a container-style
// list); this module adopts the bounded-array form to match the rest of the
// codebase's avoidance of heap containers in the hot allocation path.
const MaxFramePools = 64

var errRegistryFull = &kernel.Error{Module: "pmm", Message: "frame pool registry exhausted"}

// registryNode is one arena slot. prev/next are indices into the arena
// (-1 is the list-end sentinel), not pointers, so that compaction on removal
// can relocate a node's storage without invalidating references held by
// other nodes.
type registryNode struct {
	pool *ContiguousFramePool
	prev int
	next int
}

// Registry is the process-wide doubly-linked set of live
// ContiguousFramePools. release_frames dispatches purely by frame number, so
// it needs a registry to discover which pool owns a given frame; this is the
// one mechanism for that dispatch; per spec.md it must not be replaced by a
// parameterized release.
type Registry struct {
	nodes [MaxFramePools]registryNode
	head  int
	tail  int
	count int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{head: -1, tail: -1}
}

// insert prepends pool to the registry. Insertions always land at arena index
// `count` because live nodes are maintained as exactly the prefix
// nodes[0:count] — this invariant is what lets remove() compact by swapping
// with the last live slot.
func (r *Registry) insert(pool *ContiguousFramePool) *kernel.Error {
	if r.count >= MaxFramePools {
		diagnostic("pmm: frame pool registry is full (%d pools)", MaxFramePools)
		return errRegistryFull
	}

	idx := r.count
	r.nodes[idx] = registryNode{pool: pool, prev: -1, next: r.head}
	if r.head != -1 {
		r.nodes[r.head].prev = idx
	} else {
		r.tail = idx
	}
	r.head = idx
	r.count++
	return nil
}

// remove unregisters pool, if present.
func (r *Registry) remove(pool *ContiguousFramePool) {
	idx := -1
	for i := 0; i < r.count; i++ {
		if r.nodes[i].pool == pool {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	p, n := r.nodes[idx].prev, r.nodes[idx].next
	if p != -1 {
		r.nodes[p].next = n
	} else {
		r.head = n
	}
	if n != -1 {
		r.nodes[n].prev = p
	} else {
		// Removing the tail: the fixed tail pointer must move to the
		// node that is now last, i.e. this node's predecessor.
		r.tail = p
	}

	last := r.count - 1
	if idx != last {
		r.nodes[idx] = r.nodes[last]
		// The moved node's neighbors still point at its old arena
		// index (`last`); repoint them at its new home (`idx`).
		if r.nodes[idx].prev != -1 {
			r.nodes[r.nodes[idx].prev].next = idx
		}
		if r.nodes[idx].next != -1 {
			r.nodes[r.nodes[idx].next].prev = idx
		}
		if r.head == last {
			r.head = idx
		}
		if r.tail == last {
			r.tail = idx
		}
	}
	r.count--
}

// ReleaseFrames walks the registry to find the pool whose range contains f
// and releases it there. Frames outside every registered pool, or a frame
// that is not currently a HeadOfSequence, are diagnosed and otherwise
// ignored.
func (r *Registry) ReleaseFrames(f Frame) {
	for i := r.head; i != -1; i = r.nodes[i].next {
		pool := r.nodes[i].pool
		if pool.contains(f) {
			pool.releaseFrames(f)
			return
		}
	}
	diagnostic("pmm: release_frames: frame %d is not part of any registered pool", f)
}

// Len returns the number of live pools, for test assertions.
func (r *Registry) Len() int {
	return r.count
}
