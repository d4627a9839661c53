package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	defer SetOutput(os.Stdout, os.Stderr)

	Info.Printf("hello %s", "info")
	Warn.Print("careful")
	Error.Print("boom")

	if !strings.Contains(out.String(), "[INFO]") || !strings.Contains(out.String(), "hello info") {
		t.Fatalf("unexpected info output: %q", out.String())
	}
	if !strings.Contains(out.String(), "[WARN]") {
		t.Fatalf("expected warn on stdout writer")
	}
	if !strings.Contains(errOut.String(), "[ERROR]") || !strings.Contains(errOut.String(), "boom") {
		t.Fatalf("unexpected error output: %q", errOut.String())
	}
}
