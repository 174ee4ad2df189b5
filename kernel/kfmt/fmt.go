// Package kfmt provides minimal, allocation-light diagnostic formatting for
// the memory-management core, in place of the Console::puts/putui calls the
// teaching kernel this module reimplements would otherwise use.
package kfmt

import (
	"fmt"
	"io"
	"os"
)

// sink is the active diagnostic output. It defaults to os.Stderr so that
// diagnostics are visible when the core runs under `go test`, and can be
// redirected (e.g. to a bytes.Buffer) by tests that assert on diagnostic
// output.
var sink io.Writer = os.Stderr

// SetOutputSink redirects diagnostic output. Passing nil restores os.Stderr.
func SetOutputSink(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	sink = w
}

// Printf writes a formatted diagnostic line to the active sink. Unlike the
// real kernel's hand-rolled formatter (which could not allocate or import
// "fmt" before the Go runtime was initialized), this hosted reimplementation
// runs as ordinary Go and can simply delegate to fmt.Fprintf.
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(sink, format, args...)
}
