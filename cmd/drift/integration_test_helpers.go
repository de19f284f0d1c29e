//go:build integration

package main

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/raphi011/drift/internal/log"
	"github.com/raphi011/drift/internal/output"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

func gitRun(t *testing.T, repoPath string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

// setupTestRepo creates a git repo with an initial commit on main.
// Returns the absolute path to the created repo (with symlinks resolved).
func setupTestRepo(t *testing.T) string {
	t.Helper()

	repoPath := resolvePath(t, t.TempDir())

	gitRun(t, repoPath, "init", "-b", "main")
	gitRun(t, repoPath, "config", "user.email", "test@test.com")
	gitRun(t, repoPath, "config", "user.name", "Test User")
	gitRun(t, repoPath, "config", "commit.gpgsign", "false")

	commit(t, repoPath, "initial")

	return repoPath
}

// commit creates an empty commit so tests control history shape exactly.
func commit(t *testing.T, repoPath, msg string) {
	t.Helper()
	gitRun(t, repoPath, "commit", "--allow-empty", "-m", msg)
}

// testContext returns a context carrying a quiet logger and a printer
// writing into the returned buffer.
func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(io.Discard, false, true))
	ctx = output.WithPrinter(ctx, &buf)
	return ctx, &buf
}
