package kfmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintfWritesToSink(t *testing.T) {
	var buf bytes.Buffer
	SetOutputSink(&buf)
	defer SetOutputSink(nil)

	Printf("frame %d is %s", 7, "free")

	if got := buf.String(); got != "frame 7 is free" {
		t.Errorf("Printf wrote %q, want %q", got, "frame 7 is free")
	}
}

func TestSetOutputSinkNilRestoresStderr(t *testing.T) {
	var buf bytes.Buffer
	SetOutputSink(&buf)
	SetOutputSink(nil)

	Printf("should not land in buf")

	if buf.Len() != 0 {
		t.Errorf("expected nil sink to restore os.Stderr, but output landed in the buffer: %q", buf.String())
	}
}

func TestPanicPrintsDiagnosticAndHalts(t *testing.T) {
	var buf bytes.Buffer
	SetOutputSink(&buf)
	defer SetOutputSink(nil)

	halted := false
	SetHaltFn(func() { halted = true })
	defer SetHaltFn(nil)

	Panic("bitmap corrupted")

	if !halted {
		t.Error("expected Panic to invoke the halt function")
	}
	if !strings.Contains(buf.String(), "bitmap corrupted") {
		t.Errorf("expected diagnostic to mention the cause, got %q", buf.String())
	}
}

func TestPanicWithNilCause(t *testing.T) {
	var buf bytes.Buffer
	SetOutputSink(&buf)
	defer SetOutputSink(nil)

	SetHaltFn(func() {})
	defer SetHaltFn(nil)

	Panic(nil)

	if !strings.Contains(buf.String(), "system halted") {
		t.Errorf("expected a generic diagnostic for a nil cause, got %q", buf.String())
	}
}
