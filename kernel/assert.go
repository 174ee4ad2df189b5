package kernel

import "nanokernel/kernel/kfmt"

// Assert halts the running (simulated) kernel if cond is false. It is used to
// protect structural invariants whose violation cannot be recovered from
// locally, e.g. enabling paging for a page table that is not the one loaded.
func Assert(cond bool, err *Error) {
	if !cond {
		kfmt.Panic(err)
	}
}
