// Package console provides the diagnostic sink used by kfmt, standing in for
// the teaching kernel's Console::puts/putui collaborator.
package console

import (
	"io"
	"os"

	"nanokernel/kernel/kfmt"
)

// Attach redirects kfmt diagnostics to w. Passing nil restores the default
// (os.Stderr).
func Attach(w io.Writer) {
	kfmt.SetOutputSink(w)
}

// Default restores the default diagnostic sink (os.Stderr).
func Default() {
	kfmt.SetOutputSink(os.Stderr)
}
