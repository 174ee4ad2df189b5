// Package cpu simulates the handful of 32-bit control registers this
// kernel's paging code depends on: CR0 (paging enable bit), CR2 (faulting
// linear address) and CR3 (page directory physical base). On real hardware
// these are accessed through dedicated instructions; here they are plain
// package state so the memory-management core can be exercised under
// `go test` exactly as the teacher repository exercises its own MMU code
// behind mockable function variables (activePDTFn, switchPDTFn, ...).
package cpu

const (
	// CR0PagingBit is bit 31 of CR0 (PG), set to enable paging.
	CR0PagingBit uint32 = 1 << 31
)

var (
	cr0 uint32
	cr2 uint32
	cr3 uint32

	// flushedEntries records every virtual address passed to
	// FlushTLBEntry since the log was last cleared (by ResetTLBLog,
	// WriteCR3 or ResetState). Tests use this to
	// assert that a TLB flush actually happened without needing a real
	// TLB to observe.
	flushedEntries []uint32

	// haltCount and lastHalt record how often Halt has been called and the
	// argument of the latest call, since a simulated CPU cannot actually
	// stop executing the host process.
	haltCount int
	lastHalt  interface{}
)

// ReadCR0 returns the current value of CR0.
func ReadCR0() uint32 { return cr0 }

// WriteCR0 sets CR0 to v.
func WriteCR0(v uint32) { cr0 = v }

// ReadCR2 returns the faulting linear address recorded by the most recent
// simulated page fault.
func ReadCR2() uint32 { return cr2 }

// WriteCR2 records a faulting linear address. Real hardware sets CR2
// automatically when a page fault is raised; this module's fault injection
// path (used by tests and by boot.System.Touch) calls WriteCR2 explicitly
// before invoking the fault handler.
func WriteCR2(v uint32) { cr2 = v }

// ReadCR3 returns the physical address of the currently loaded page
// directory.
func ReadCR3() uint32 { return cr3 }

// WriteCR3 loads a new page directory physical address and implicitly
// flushes the entire TLB, matching real hardware semantics.
func WriteCR3(v uint32) {
	cr3 = v
	flushedEntries = nil
}

// PagingEnabled reports whether the PG bit is currently set in CR0.
func PagingEnabled() bool {
	return cr0&CR0PagingBit != 0
}

// FlushTLBEntry invalidates any cached translation for addr. The simulated
// CPU has no TLB to invalidate, so this simply logs the request for test
// observability.
func FlushTLBEntry(addr uint32) {
	flushedEntries = append(flushedEntries, addr)
}

// FlushedEntries returns the virtual addresses flushed since the log was last
// cleared by ResetTLBLog, WriteCR3 or ResetState, for test assertions.
func FlushedEntries() []uint32 {
	return flushedEntries
}

// ResetTLBLog clears the flushed-entry log.
func ResetTLBLog() {
	flushedEntries = nil
}

// Halt stops the simulated CPU. Since a Go test process cannot actually halt,
// Halt records the call for inspection; it does not panic or exit, leaving
// that decision to the kfmt.Panic caller that typically precedes it.
func Halt(err interface{}) {
	haltCount++
	lastHalt = err
}

// HaltCount returns how many times Halt has been invoked, for test assertions.
func HaltCount() int { return haltCount }

// LastHalt returns the argument passed to the most recent Halt call.
func LastHalt() interface{} { return lastHalt }

// ResetState restores every simulated register and log to its zero value.
// Intended for use between test cases that would otherwise leak state
// through this package's globals.
func ResetState() {
	cr0, cr2, cr3 = 0, 0, 0
	flushedEntries = nil
	haltCount = 0
	lastHalt = nil
}
