package kfmt

import "nanokernel/hal/cpu"

// haltFn is invoked after a panic diagnostic has been printed. It is a
// variable (rather than a hard dependency on os.Exit) so that tests can
// intercept the halt instead of tearing down the test binary.
var haltFn = func() { panic("kernel halted") }

// SetHaltFn overrides the function invoked once Panic has printed its
// diagnostic. Tests use this to recover instead of aborting the process.
func SetHaltFn(fn func()) {
	if fn == nil {
		fn = func() { panic("kernel halted") }
	}
	haltFn = fn
}

// Panic prints a diagnostic for err (which is typically a *kernel.Error, but
// may be any error or string) and halts. With the default halt function Panic
// does not return (the halt panics); when a halt function installed through
// SetHaltFn returns, Panic returns too.
//
// Accepting interface{} instead of *kernel.Error avoids an import cycle: the
// kernel package depends on kfmt for its Assert helper, so kfmt cannot import
// kernel back.
func Panic(err interface{}) {
	switch e := err.(type) {
	case nil:
		Printf("\n*** kernel panic: system halted ***\n")
	case string:
		Printf("\n*** kernel panic: %s ***\n", e)
	case error:
		Printf("\n*** kernel panic: %s ***\n", e.Error())
	default:
		Printf("\n*** kernel panic: unknown cause ***\n")
	}

	cpu.Halt(err)
	haltFn()
}
