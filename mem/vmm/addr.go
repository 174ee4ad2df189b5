package vmm

import "nanokernel/mem"

// directoryIndex returns the top 10 bits of a 32-bit virtual address: the
// index of its page directory entry.
func directoryIndex(addr uint32) uint32 {
	return addr >> 22
}

// tableIndex returns the middle 10 bits of a 32-bit virtual address: the
// index of its page table entry within the table selected by directoryIndex.
func tableIndex(addr uint32) uint32 {
	return (addr >> 12) & 0x3FF
}

// pageOffset returns the low 12 bits of a 32-bit virtual address.
func pageOffset(addr uint32) uint32 {
	return addr & (mem.PageSize - 1)
}

// recursiveDirectoryIndex is the page directory slot this module reserves to
// point at its own frame, giving every page table a stable self-referential
// virtual address without a dedicated physical-address path.
const recursiveDirectoryIndex = mem.EntriesPerTable - 1

// PDEAddress returns the recursive-mapping virtual address of PDE i within
// the currently loaded page directory: the directory, viewed through its own
// recursive slot, as an array of 1024 uint32 entries.
func PDEAddress(i uint32) uint32 {
	return 0xFFFFF000 + 4*i
}

// PTEAddress returns the recursive-mapping virtual address of PTE j of PDE i:
// the page table for PDE i, viewed through the directory's recursive slot, as
// an array of 1024 uint32 entries.
func PTEAddress(i, j uint32) uint32 {
	return 0xFFC00000 + mem.PageSize*i + 4*j
}
