// Package boot wires the physical and virtual memory managers together the
// way the kernel's own startup sequence would: build the process-wide frame
// pool registry, carve out a kernel frame pool and a process frame pool, build
// the kernel's page table over them, load it, enable paging, and hand back a
// System ready to register additional VMPools and service faults.
package boot

import (
	"nanokernel/hal/cpu"
	"nanokernel/kernel"
	"nanokernel/mem"
	"nanokernel/mem/pmm"
	"nanokernel/mem/vmm"
)

// Config controls the sizes boot.New carves the simulated physical memory
// into. Frame counts, not byte sizes, since that is the unit every pool and
// pool constructor in this module works in.
type Config struct {
	// KernelPoolFrames is the frame count of the kernel pool, which
	// supplies the page table backing the identity-mapped shared region.
	KernelPoolFrames uint32

	// ProcessPoolFrames is the frame count of the process pool, which
	// supplies the page directory, the page tables materialized on fault
	// and the frames backing faulted-in pages.
	ProcessPoolFrames uint32

	// SharedFrames is how many frames at the base of physical memory are
	// identity-mapped into the kernel page table, covering the kernel's
	// own resident code and data.
	SharedFrames uint32
}

// DefaultConfig returns a 1 MiB (256-frame) kernel pool, a 32 MiB
// (8192-frame) process pool, and an identity-mapped shared region covering
// the first 4 MiB (1024 frames, one full page table).
func DefaultConfig() Config {
	return Config{
		KernelPoolFrames:  256,
		ProcessPoolFrames: 8192,
		SharedFrames:      1024,
	}
}

// System is the fully wired memory-management core: physical memory, the
// registry every CFP release dispatches through, the kernel and process
// frame pools, and the loaded page table.
type System struct {
	Registry    *pmm.Registry
	Memory      *pmm.Memory
	KernelPool  *pmm.ContiguousFramePool
	ProcessPool *pmm.ContiguousFramePool
	PageTable   *vmm.PageTable
}

// New builds a System per cfg: frame 0 starts the kernel pool, followed
// immediately by the process pool, a fresh page table identity-mapping
// cfg.SharedFrames frames, loaded and with paging enabled.
func New(cfg Config) (*System, *kernel.Error) {
	reg := pmm.NewRegistry()
	physMem := pmm.NewMemory()

	kernelPool, err := pmm.NewContiguousFramePool(reg, physMem, pmm.Frame(0), cfg.KernelPoolFrames, 0)
	if err != nil {
		return nil, err
	}

	processBase := pmm.Frame(cfg.KernelPoolFrames)
	processPool, err := pmm.NewContiguousFramePool(reg, physMem, processBase, cfg.ProcessPoolFrames, 0)
	if err != nil {
		return nil, err
	}

	pt, err := vmm.NewPageTable(reg, physMem, kernelPool, processPool, cfg.SharedFrames)
	if err != nil {
		return nil, err
	}
	pt.Load()
	pt.EnablePaging()

	return &System{
		Registry:    reg,
		Memory:      physMem,
		KernelPool:  kernelPool,
		ProcessPool: processPool,
		PageTable:   pt,
	}, nil
}

// NewVMPool creates and registers a VMPool covering [base, base+size) of
// logical address space, backed by this System's page table.
func (s *System) NewVMPool(base, size uint32) (*vmm.VMPool, *kernel.Error) {
	return vmm.NewVMPool(base, size, s.PageTable, mem.PageSize)
}

// Touch simulates a memory access at addr: it records addr as the faulting
// linear address (mirroring the CPU's CR2 on a real #PF) and asks the page
// table to service the fault, as an interrupt handler would before retrying
// the faulting instruction.
func (s *System) Touch(addr uint32) *kernel.Error {
	cpu.WriteCR2(addr)
	return s.PageTable.HandleFault(addr)
}
