package log

import (
	"bytes"
	"context"
	"testing"
)

func TestFromContext_NoLogger(t *testing.T) {
	t.Parallel()

	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext() returned nil")
	}
	// Writes to the no-op logger must not panic
	l.Printf("hello %s", "world")
	l.Debugf("debug")
}

func TestFromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, false, false)
	ctx := WithLogger(context.Background(), l)

	got := FromContext(ctx)
	got.Printf("hi\n")

	if buf.String() != "hi\n" {
		t.Errorf("Printf output = %q, want %q", buf.String(), "hi\n")
	}
}

func TestLogger_Quiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, true, true)

	l.Printf("a")
	l.Println("b")
	l.Debugf("c")
	l.Command("git", "status")

	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q, want no output", buf.String())
	}
}

func TestLogger_Debugf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{name: "verbose enabled", verbose: true, want: "dbg\n"},
		{name: "verbose disabled", verbose: false, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			l := New(&buf, tt.verbose, false)
			l.Debugf("dbg\n")
			if buf.String() != tt.want {
				t.Errorf("Debugf output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLogger_Command(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, true, false)
	l.Command("git", "rev-list", "--count")

	want := "$ git rev-list --count\n"
	if buf.String() != want {
		t.Errorf("Command output = %q, want %q", buf.String(), want)
	}
}
