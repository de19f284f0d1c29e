package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	_, err := exec.LookPath("git")
	if err != nil {
		return ErrGitNotFound
	}
	return nil
}

// IsInsideRepoPath returns true if the given path is inside a git repository
func IsInsideRepoPath(ctx context.Context, path string) bool {
	err := runGit(ctx, path, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// ObjectExists reports whether sha resolves to a commit in the repository.
func ObjectExists(ctx context.Context, repoPath, sha string) bool {
	err := runGit(ctx, repoPath, "rev-parse", "--verify", "--quiet", sha+"^{commit}")
	return err == nil
}

// RepoRoot returns the top-level directory of the repository containing path.
func RepoRoot(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}
