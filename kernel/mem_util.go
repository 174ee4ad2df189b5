package kernel

// ZeroBytes clears every byte of dst. It stands in for the teaching kernel's
// Memset(addr, 0, size), adapted to operate on a plain byte slice (a
// simulated physical frame) instead of a raw pointer, since this module runs
// hosted rather than bare-metal.
func ZeroBytes(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
}
