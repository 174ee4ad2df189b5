// Package vmm implements the two-level 32-bit paging translation layer: the
// Page Table Manager (PageTable), which builds and lazily fills page
// directories/tables and handles page faults, and the Virtual Memory Pool
// (VMPool), a region allocator that hands out logical page ranges and
// cooperates with the PageTable to back them with real frames on demand.
package vmm

import "nanokernel/mem/pmm"

// entryFlags are the low-order bits shared by page directory and page table
// entries; bits 12-31 hold the referenced frame number.
type entryFlags uint32

const (
	flagPresent entryFlags = 1 << 0
	flagWrite   entryFlags = 1 << 1
	flagUser    entryFlags = 1 << 2
)

const frameAddressMask uint32 = 0xFFFFF000

// entry is the decoded form of a raw 32-bit PDE or PTE.
type entry struct {
	frame   pmm.Frame
	present bool
	write   bool
	user    bool
}

func decodeEntry(raw uint32) entry {
	return entry{
		frame:   pmm.Frame(raw >> 12),
		present: raw&uint32(flagPresent) != 0,
		write:   raw&uint32(flagWrite) != 0,
		user:    raw&uint32(flagUser) != 0,
	}
}

func (e entry) encode() uint32 {
	raw := uint32(e.frame) << 12
	if e.present {
		raw |= uint32(flagPresent)
	}
	if e.write {
		raw |= uint32(flagWrite)
	}
	if e.user {
		raw |= uint32(flagUser)
	}
	return raw
}

func presentEntry(f pmm.Frame) entry {
	return entry{frame: f, present: true, write: true, user: false}
}
