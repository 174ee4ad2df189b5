package vmm

import "nanokernel/kernel"

// region is a half-open [base, base+size) run of logical address space,
// sizes always rounded up to a whole number of pages.
type region struct {
	base uint32
	size uint32
}

var (
	// ErrOutOfSpace is returned by Allocate when no free region is large
	// enough to satisfy the request.
	ErrOutOfSpace = &kernel.Error{Module: "vmm", Message: "no free region large enough for the request"}

	// ErrNotAllocated is returned by Release for a base address that does
	// not match any outstanding allocation.
	ErrNotAllocated = &kernel.Error{Module: "vmm", Message: "address is not the base of an outstanding allocation"}
)

// VMPool is a first-fit logical-address-space allocator over
// [base, base+size). It does not itself touch frames: Allocate only reserves
// a logical range, leaving the PageTable to materialize PDEs/PTEs lazily on
// the first access fault. Release is the one place this module's behavior
// diverges from the reference implementation it is grounded on: the
// reference release only forgets the region, silently leaking every frame
// that had been faulted into it, so this Release additionally walks the
// released pages and asks the registered PageTable to free each one.
//
// The reference implementation stores its free/allocated region lists inside
// the pool's own first logical page, since it has no heap allocator to lean
// on. Running hosted on the Go runtime removes that constraint, so this
// version keeps the lists as ordinary slices; the allocation algorithm
// itself — first-fit over free, swap-compaction on removal from either
// list — is otherwise unchanged. Release merges the released region with any
// adjacent free regions, so a released run is reusable as one region.
type VMPool struct {
	base uint32
	size uint32

	pageTable *PageTable
	pageSize  uint32

	free      []region
	allocated []region
}

// NewVMPool creates a pool over the logical range [base, base+size) and
// registers it with pt so that pt consults it on faults. Only addresses inside
// the pool's outstanding allocations are legitimate (see IsLegitimate).
func NewVMPool(base, size uint32, pt *PageTable, pageSize uint32) (*VMPool, *kernel.Error) {
	vp := &VMPool{
		base:      base,
		size:      size,
		pageTable: pt,
		pageSize:  pageSize,
		free:      []region{{base: base, size: size}},
	}

	if err := pt.RegisterPool(vp); err != nil {
		return nil, err
	}
	return vp, nil
}

func roundUpToPage(size, pageSize uint32) uint32 {
	if rem := size % pageSize; rem != 0 {
		size += pageSize - rem
	}
	return size
}

// Allocate reserves a logical region of at least size bytes and returns its
// base address, using a first-fit scan of the free-region list.
func (vp *VMPool) Allocate(size uint32) (uint32, *kernel.Error) {
	if size == 0 {
		return 0, ErrOutOfSpace
	}
	need := roundUpToPage(size, vp.pageSize)

	for i := range vp.free {
		r := vp.free[i]
		if r.size < need {
			continue
		}

		allocBase := r.base
		if r.size == need {
			last := len(vp.free) - 1
			vp.free[i] = vp.free[last]
			vp.free = vp.free[:last]
		} else {
			vp.free[i] = region{base: r.base + need, size: r.size - need}
		}

		vp.allocated = append(vp.allocated, region{base: allocBase, size: need})
		return allocBase, nil
	}

	return 0, ErrOutOfSpace
}

// Release returns the allocation based at addr to the free list and frees
// every frame the PageTable had faulted in to back it.
func (vp *VMPool) Release(addr uint32) *kernel.Error {
	idx := -1
	for i, r := range vp.allocated {
		if r.base == addr {
			idx = i
			break
		}
	}
	if idx == -1 {
		diagnostic("vmm: release: address %#x is not the base of an outstanding allocation", addr)
		return ErrNotAllocated
	}

	r := vp.allocated[idx]

	for page := r.base; page < r.base+r.size; page += vp.pageSize {
		if err := vp.pageTable.FreePage(page); err != nil && err != ErrNotPresent {
			return err
		}
	}

	last := len(vp.allocated) - 1
	vp.allocated[idx] = vp.allocated[last]
	vp.allocated = vp.allocated[:last]

	// Merge with free regions that touch r on either side.
	for i := 0; i < len(vp.free); {
		f := vp.free[i]
		if f.base+f.size != r.base && r.base+r.size != f.base {
			i++
			continue
		}
		if f.base < r.base {
			r.base = f.base
		}
		r.size += f.size
		lastFree := len(vp.free) - 1
		vp.free[i] = vp.free[lastFree]
		vp.free = vp.free[:lastFree]
	}

	vp.free = append(vp.free, r)
	return nil
}

// IsLegitimate reports whether addr's page falls within one of this pool's
// outstanding allocations. Being inside the pool's declared logical range is
// not enough: an address that was never handed back by Allocate has no
// business being faulted in, even if it would fit inside the pool.
func (vp *VMPool) IsLegitimate(addr uint32) bool {
	page := addr / vp.pageSize
	for _, r := range vp.allocated {
		regionStartPage := r.base / vp.pageSize
		regionEndPage := regionStartPage + r.size/vp.pageSize
		if page >= regionStartPage && page < regionEndPage {
			return true
		}
	}
	return false
}

// Base returns the pool's logical base address.
func (vp *VMPool) Base() uint32 { return vp.base }

// Size returns the pool's logical size in bytes.
func (vp *VMPool) Size() uint32 { return vp.size }
