package vmm

import (
	"nanokernel/hal/cpu"
	"nanokernel/kernel"
	"nanokernel/kernel/kfmt"
	"nanokernel/mem"
	"nanokernel/mem/pmm"
)

// MaxRegisteredPools bounds how many VMPools a single PageTable can consult
// when deciding whether a faulting address is legitimate.
const MaxRegisteredPools = 16

var (
	// ErrTooManyPools is returned by RegisterPool once MaxRegisteredPools is
	// reached.
	ErrTooManyPools = &kernel.Error{Module: "vmm", Message: "page table has no room for another registered pool"}

	// ErrNotPresent is returned by FreePage for a logical page that is not
	// currently mapped.
	ErrNotPresent = &kernel.Error{Module: "vmm", Message: "page is not present"}

	errFaultNotLegitimate = &kernel.Error{Module: "vmm", Message: "faulting address is not claimed by any registered pool"}
)

// PageTable is the Page Table Manager: it owns one page directory, lazily
// fills page tables on demand in response to page faults, and maintains the
// recursive-mapping slot that lets every page table address itself and its
// sibling tables uniformly. The directory frame and every page table frame
// materialized on fault are drawn from processPool; kernelPool supplies only
// the page table backing the identity-mapped shared region built at
// construction time. FreePage releases a mapped page's backing frame back
// through registry; the directory and page-table frames are not released.
type PageTable struct {
	registry     *pmm.Registry
	physMem      *pmm.Memory
	kernelPool   *pmm.ContiguousFramePool
	processPool  *pmm.ContiguousFramePool
	directory    pmm.Frame
	sharedFrames uint32

	pools [MaxRegisteredPools]*VMPool
	numPools int
}

// currentPageTable mirrors the single currently loaded page table, the way a
// real CPU only ever has one CR3 value. Load/EnablePaging consult it so that
// only the loaded table can legally enable paging.
var currentPageTable *PageTable

// NewPageTable allocates a fresh page directory from processPool, identity-maps
// the first sharedFrames frames (the kernel's own code/data, visible at the
// same virtual and physical address in every page table) using a page table
// frame drawn from kernelPool, and installs the recursive self-mapping in the
// directory's last slot.
func NewPageTable(registry *pmm.Registry, physMem *pmm.Memory, kernelPool, processPool *pmm.ContiguousFramePool, sharedFrames uint32) (*PageTable, *kernel.Error) {
	dirFrame := processPool.GetFrames(1)
	if dirFrame == 0 {
		return nil, pmm.ErrInvalidRequest
	}
	physMem.ZeroFrame(dirFrame)

	pt := &PageTable{
		registry:     registry,
		physMem:      physMem,
		kernelPool:   kernelPool,
		processPool:  processPool,
		directory:    dirFrame,
		sharedFrames: sharedFrames,
	}

	if sharedFrames > 0 {
		tableFrame := kernelPool.GetFrames(1)
		if tableFrame == 0 {
			return nil, pmm.ErrInvalidRequest
		}
		physMem.ZeroFrame(tableFrame)

		for i := uint32(0); i < sharedFrames && i < mem.EntriesPerTable; i++ {
			pt.writePTE(tableFrame, i, presentEntry(pmm.Frame(i)))
		}
		pt.writePDE(dirFrame, 0, presentEntry(tableFrame))
	}

	pt.writePDE(dirFrame, recursiveDirectoryIndex, presentEntry(dirFrame))

	return pt, nil
}

func (pt *PageTable) readPDE(i uint32) entry {
	return decodeEntry(pt.physMem.ReadUint32(pt.directory, i*4))
}

func (pt *PageTable) writePDE(dir pmm.Frame, i uint32, e entry) {
	pt.physMem.WriteUint32(dir, i*4, e.encode())
}

func (pt *PageTable) readPTE(table pmm.Frame, j uint32) entry {
	return decodeEntry(pt.physMem.ReadUint32(table, j*4))
}

func (pt *PageTable) writePTE(table pmm.Frame, j uint32, e entry) {
	pt.physMem.WriteUint32(table, j*4, e.encode())
}

// DirectoryAddress returns the physical address of pt's page directory frame,
// the value Load writes into CR3.
func (pt *PageTable) DirectoryAddress() uint32 {
	return pt.directory.Address()
}

// Load makes pt the currently active page table, the simulated equivalent of
// writing its directory frame's address into CR3.
func (pt *PageTable) Load() {
	currentPageTable = pt
	cpu.WriteCR3(pt.directory.Address())
}

// EnablePaging turns on the simulated paging bit. It asserts that pt is the
// table currently loaded via Load, matching the reference kernel's invariant
// that paging is only ever enabled for the table already in CR3.
func (pt *PageTable) EnablePaging() {
	kernel.Assert(currentPageTable == pt, &kernel.Error{Module: "vmm", Message: "enable_paging called on a page table that is not loaded"})
	cpu.WriteCR0(cpu.ReadCR0() | cpu.CR0PagingBit)
}

// RegisterPool adds vp to the set of pools consulted when deciding whether a
// faulting address is legitimate.
func (pt *PageTable) RegisterPool(vp *VMPool) *kernel.Error {
	if pt.numPools >= MaxRegisteredPools {
		diagnostic("vmm: register_pool: page table already holds %d pools", MaxRegisteredPools)
		return ErrTooManyPools
	}
	pt.pools[pt.numPools] = vp
	pt.numPools++
	return nil
}

func (pt *PageTable) isLegitimate(addr uint32) bool {
	for i := 0; i < pt.numPools; i++ {
		if pt.pools[i].IsLegitimate(addr) {
			return true
		}
	}
	return false
}

// HandleFault services a page fault at faultAddr: it verifies the address
// falls within a registered VMPool's claimed region, then lazily allocates
// whichever of the page directory entry or page table entry is missing. The
// faulting instruction is expected to be re-executed by the caller once this
// returns without error, at which point the translation will succeed.
func (pt *PageTable) HandleFault(faultAddr uint32) *kernel.Error {
	if !pt.isLegitimate(faultAddr) {
		diagnostic("vmm: handle_fault: address %#x is not claimed by any registered pool", faultAddr)
		return errFaultNotLegitimate
	}

	di := directoryIndex(faultAddr)
	ti := tableIndex(faultAddr)

	pde := pt.readPDE(di)
	if !pde.present {
		tableFrame := pt.processPool.GetFrames(1)
		if tableFrame == 0 {
			return pmm.ErrInvalidRequest
		}
		pt.physMem.ZeroFrame(tableFrame)
		pde = presentEntry(tableFrame)
		pt.writePDE(pt.directory, di, pde)
	}

	pte := pt.readPTE(pde.frame, ti)
	if !pte.present {
		pageFrame := pt.processPool.GetFrames(1)
		if pageFrame == 0 {
			return pmm.ErrInvalidRequest
		}
		pt.physMem.ZeroFrame(pageFrame)
		pte = presentEntry(pageFrame)
		pt.writePTE(pde.frame, ti, pte)
	}

	return nil
}

// FreePage unmaps logicalPage (a page-aligned virtual address), returning its
// backing frame to the registry so the pool that owns it can reuse the frame.
// Unlike the reference kernel, this is fully implemented rather than an
// unconditional assertion failure: a VMPool.Release that did not return
// frames here would leak them for the lifetime of the process pool.
func (pt *PageTable) FreePage(logicalPage uint32) *kernel.Error {
	di := directoryIndex(logicalPage)
	ti := tableIndex(logicalPage)

	pde := pt.readPDE(di)
	if !pde.present {
		return ErrNotPresent
	}
	pte := pt.readPTE(pde.frame, ti)
	if !pte.present {
		return ErrNotPresent
	}

	pt.registry.ReleaseFrames(pte.frame)
	pt.writePTE(pde.frame, ti, entry{})
	cpu.FlushTLBEntry(logicalPage)
	return nil
}

func diagnostic(format string, args ...interface{}) {
	kfmt.Printf(format+"\n", args...)
}
