package vmm

import (
	"testing"

	"nanokernel/hal/cpu"
	"nanokernel/mem"
	"nanokernel/mem/pmm"
)

func newTestSystem(t *testing.T) (*pmm.Registry, *pmm.Memory, *pmm.ContiguousFramePool, *pmm.ContiguousFramePool) {
	t.Helper()
	cpu.ResetState()

	reg := pmm.NewRegistry()
	physMem := pmm.NewMemory()

	kernelPool, err := pmm.NewContiguousFramePool(reg, physMem, pmm.Frame(0), 256, 0)
	if err != nil {
		t.Fatalf("unexpected error creating kernel pool: %v", err)
	}
	processPool, err := pmm.NewContiguousFramePool(reg, physMem, pmm.Frame(1000), 4096, 0)
	if err != nil {
		t.Fatalf("unexpected error creating process pool: %v", err)
	}
	return reg, physMem, kernelPool, processPool
}

func TestNewPageTableInstallsRecursiveMapping(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pde := pt.readPDE(recursiveDirectoryIndex)
	if !pde.present || pde.frame != pt.directory {
		t.Errorf("expected the recursive slot to point at the directory's own frame %d, got present=%v frame=%d",
			pt.directory, pde.present, pde.frame)
	}
}

func TestNewPageTableIdentityMapsSharedRegion(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pde := pt.readPDE(0)
	if !pde.present {
		t.Fatal("expected PDE 0 to be present after identity-mapping shared frames")
	}
	for i := uint32(0); i < 4; i++ {
		pte := pt.readPTE(pde.frame, i)
		if !pte.present || pte.frame != pmm.Frame(i) {
			t.Errorf("expected PTE %d to identity-map frame %d, got present=%v frame=%d", i, i, pte.present, pte.frame)
		}
	}
}

func TestLoadAndEnablePaging(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pt.Load()
	if cpu.ReadCR3() != pt.directory.Address() {
		t.Errorf("expected CR3 to hold the directory's address %#x, got %#x", pt.directory.Address(), cpu.ReadCR3())
	}

	pt.EnablePaging()
	if !cpu.PagingEnabled() {
		t.Error("expected paging to be enabled after EnablePaging")
	}
}

func TestHandleFaultMaterializesPDEAndPTE(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vp, err := NewVMPool(0x10000000, 16*mem.PageSize, pt, mem.PageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := vp.Allocate(4 * mem.PageSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	faultAddr := uint32(0x10000000 + mem.PageSize) // second page of the allocation
	di := directoryIndex(faultAddr)
	ti := tableIndex(faultAddr)

	if pde := pt.readPDE(di); pde.present {
		t.Fatal("expected PDE to be absent before the fault")
	}

	if err := pt.HandleFault(faultAddr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pde := pt.readPDE(di)
	if !pde.present {
		t.Fatal("expected PDE to be present after HandleFault")
	}
	pte := pt.readPTE(pde.frame, ti)
	if !pte.present {
		t.Fatal("expected PTE to be present after HandleFault")
	}

	// Re-faulting the same address must be idempotent: same frame, no new
	// allocation.
	before := pte.frame
	if err := pt.HandleFault(faultAddr); err != nil {
		t.Fatalf("unexpected error on re-fault: %v", err)
	}
	after := pt.readPTE(pde.frame, ti)
	if after.frame != before {
		t.Errorf("expected re-fault to be idempotent, frame changed from %d to %d", before, after.frame)
	}
}

func TestHandleFaultRejectsUnclaimedAddress(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewVMPool(0x20000000, 4*mem.PageSize, pt, mem.PageSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := pt.HandleFault(0xDEADB000); err == nil {
		t.Error("expected an error for a fault address outside every registered pool")
	}
}

func TestFreePageReturnsFrameAndFlushesTLB(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vp, err := NewVMPool(0x30000000, 4*mem.PageSize, pt, mem.PageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base, err := vp.Allocate(mem.PageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pt.HandleFault(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	di, ti := directoryIndex(base), tableIndex(base)
	pde := pt.readPDE(di)
	beforeFrame := pt.readPTE(pde.frame, ti).frame
	beforeState, ok := processPool.StateOf(beforeFrame)
	if !ok || beforeState != pmm.HeadOfSequence {
		t.Fatalf("expected backing frame to be allocated, got state=%v ok=%v", beforeState, ok)
	}

	cpu.ResetTLBLog()
	if err := pt.FreePage(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	afterState, _ := processPool.StateOf(beforeFrame)
	if afterState != pmm.Free {
		t.Errorf("expected frame to be released back to Free, got %v", afterState)
	}
	pte := pt.readPTE(pde.frame, ti)
	if pte.present {
		t.Error("expected PTE to be cleared after FreePage")
	}
	flushed := cpu.FlushedEntries()
	if len(flushed) != 1 || flushed[0] != base {
		t.Errorf("expected a single TLB flush for %#x, got %v", base, flushed)
	}
}

func TestFreePageOfUnmappedAddressIsAnError(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := pt.FreePage(0x40000000); err != ErrNotPresent {
		t.Errorf("expected ErrNotPresent, got %v", err)
	}
}

func TestRegisterPoolExhaustion(t *testing.T) {
	reg, physMem, kernelPool, processPool := newTestSystem(t)

	pt, err := NewPageTable(reg, physMem, kernelPool, processPool, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < MaxRegisteredPools; i++ {
		if _, err := NewVMPool(uint32(i)*0x1000000, mem.PageSize, pt, mem.PageSize); err != nil {
			t.Fatalf("unexpected error registering pool %d: %v", i, err)
		}
	}

	if _, err := NewVMPool(uint32(MaxRegisteredPools)*0x1000000, mem.PageSize, pt, mem.PageSize); err != ErrTooManyPools {
		t.Errorf("expected ErrTooManyPools, got %v", err)
	}
}
