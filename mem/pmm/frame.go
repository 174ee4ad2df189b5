// Package pmm implements the physical memory layer: a simulated physical RAM
// (Memory) and the Contiguous Frame Pool (ContiguousFramePool) bitmap
// allocator that serves contiguous runs of frames from it.
package pmm

import (
	"math"

	"nanokernel/mem"
)

// Frame identifies a 4 KiB unit of physical memory by its frame number.
type Frame uint32

// InvalidFrame is the one frame number that Valid rejects. No allocator in
// this module returns it: GetFrames/Allocate report "no allocation" with the
// sentinel 0 at the ContiguousFramePool/VMPool API level.
const InvalidFrame = Frame(math.MaxUint32)

// Valid reports whether f is a usable frame number.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical byte address of this frame.
func (f Frame) Address() uint32 {
	return uint32(f) << mem.PageShift
}

// FrameFromAddress returns the frame containing the given physical address.
func FrameFromAddress(addr uint32) Frame {
	return Frame(addr >> mem.PageShift)
}
