// Command kernelsim drives the memory-management core through one boot and
// allocate/fault/release cycle, printing each step the way the kernel's own
// early boot diagnostics would. It is a demonstration harness, not a general
// tool: the scenario it runs is fixed.
package main

import (
	"os"

	"nanokernel/boot"
	"nanokernel/hal/console"
	"nanokernel/kernel/kfmt"
	"nanokernel/mem"
)

func main() {
	console.Attach(os.Stdout)

	sys, err := boot.New(boot.DefaultConfig())
	if err != nil {
		kfmt.Panic(err)
	}
	kfmt.Printf("boot: kernel pool base=%d frames=%d\n", sys.KernelPool.BaseFrame(), sys.KernelPool.FrameCount())
	kfmt.Printf("boot: process pool base=%d frames=%d\n", sys.ProcessPool.BaseFrame(), sys.ProcessPool.FrameCount())
	kfmt.Printf("boot: page table loaded, directory=%#x\n", sys.PageTable.DirectoryAddress())

	heap, err := sys.NewVMPool(0x20000000, 256*mem.PageSize)
	if err != nil {
		kfmt.Panic(err)
	}
	kfmt.Printf("vmpool: heap registered at [%#x, %#x)\n", heap.Base(), heap.Base()+heap.Size())

	base, err := heap.Allocate(10 * mem.PageSize)
	if err != nil {
		kfmt.Panic(err)
	}
	kfmt.Printf("vmpool: allocated 10 pages at %#x\n", base)

	for page := base; page < base+10*mem.PageSize; page += mem.PageSize {
		if err := sys.Touch(page); err != nil {
			kfmt.Panic(err)
		}
	}
	kfmt.Printf("vmm: faulted in and resolved all 10 pages of the allocation\n")

	if err := heap.Release(base); err != nil {
		kfmt.Panic(err)
	}
	kfmt.Printf("vmpool: released allocation at %#x, frames returned to the process pool\n", base)
}
