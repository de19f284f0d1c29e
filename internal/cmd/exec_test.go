package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/raphi011/drift/internal/log"
)

func logCtx(buf *bytes.Buffer, verbose bool) context.Context {
	l := log.New(buf, verbose, false)
	return log.WithLogger(context.Background(), l)
}

func TestRunContext_Success(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := RunContext(logCtx(&buf, false), "", "true"); err != nil {
		t.Fatalf("RunContext() error = %v", err)
	}
}

func TestRunContext_FailureIncludesStderr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := RunContext(logCtx(&buf, false), "", "sh", "-c", "echo boom >&2; exit 1")
	if err == nil {
		t.Fatal("RunContext() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not contain stderr output", err)
	}
}

func TestOutputContext_ReturnsStdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out, err := OutputContext(logCtx(&buf, false), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "hello" {
		t.Errorf("OutputContext() = %q, want %q", got, "hello")
	}
}

func TestOutputContext_VerboseLogsCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := OutputContext(logCtx(&buf, true), "", "echo", "hi"); err != nil {
		t.Fatalf("OutputContext() error = %v", err)
	}
	if !strings.Contains(buf.String(), "$ echo hi") {
		t.Errorf("verbose log = %q, want command echo", buf.String())
	}
}
