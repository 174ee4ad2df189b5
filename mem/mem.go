// Package mem defines the architecture constants shared by the physical and
// virtual memory managers: a 4 KiB page/frame size and a two-level, 32-bit
// flat paging layout.
package mem

const (
	// PageShift is log2(PageSize); frame/page numbers are addresses
	// shifted right by PageShift.
	PageShift = 12

	// PageSize is the size in bytes of one page/frame on this
	// architecture.
	PageSize = 1 << PageShift

	// EntriesPerTable is the number of 32-bit entries in a page directory
	// or page table (4096 bytes / 4 bytes per entry).
	EntriesPerTable = PageSize / 4

	// DirectoryRegionSize is the number of bytes of logical address space
	// covered by a single page-directory entry (4 MiB).
	DirectoryRegionSize = EntriesPerTable * PageSize
)
