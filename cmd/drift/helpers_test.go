package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphi011/drift/internal/config"
	"github.com/raphi011/drift/internal/events"
	"github.com/raphi011/drift/internal/git"
	"github.com/raphi011/drift/internal/log"
	"github.com/raphi011/drift/internal/store"
)

func TestReplayCache_SeedsScheduler(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("failed to create .git dir: %v", err)
	}

	s := &store.Store{Entries: map[string]store.Entry{
		"aaa...bbb": {Ahead: 2, Behind: 5, CachedAt: time.Now()},
	}}
	if err := store.Save(root, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))

	sched := newScheduler(config.Config{}, root, events.NewBroker())
	replayCache(ctx, root, sched)

	got, ok := sched.Cache().Get(git.RevRange("aaa", "bbb"))
	if !ok {
		t.Fatal("replayed entry missing from scheduler cache")
	}
	if got.Ahead != 2 || got.Behind != 5 {
		t.Errorf("replayed value = %+v, want {Ahead:2 Behind:5}", got)
	}

	out := buf.String()
	if out == "" || !strings.HasSuffix(out, "\n") {
		t.Errorf("debug output %q is not newline-terminated", out)
	}
}
