package git

import (
	"context"
	"fmt"
	"strings"
)

// Branch is a local branch with its tip commit hash.
type Branch struct {
	Name string
	Tip  string
}

// CurrentBranch returns the current branch with its tip hash.
// Returns an error for detached HEAD state.
func CurrentBranch(ctx context.Context, repoPath string) (Branch, error) {
	out, err := outputGit(ctx, repoPath, "branch", "--show-current")
	if err != nil {
		return Branch{}, fmt.Errorf("failed to get branch: %v", err)
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return Branch{}, fmt.Errorf("detached HEAD: no current branch")
	}

	tip, err := tipOf(ctx, repoPath, name)
	if err != nil {
		return Branch{}, err
	}
	return Branch{Name: name, Tip: tip}, nil
}

// DefaultBranch returns the repository's default branch (main/master) with
// its tip hash, or false if none could be resolved locally.
func DefaultBranch(ctx context.Context, repoPath string) (Branch, bool) {
	name := defaultBranchName(ctx, repoPath)

	tip, err := tipOf(ctx, repoPath, name)
	if err != nil {
		return Branch{}, false
	}
	return Branch{Name: name, Tip: tip}, true
}

// defaultBranchName detects the default branch name.
func defaultBranchName(ctx context.Context, repoPath string) string {
	// Try to get default branch from remote HEAD
	out, err := outputGit(ctx, repoPath, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		// Output is like "refs/remotes/origin/main"
		ref := strings.TrimSpace(string(out))
		if parts := strings.Split(ref, "/"); len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}

	// Fallback: check if main exists
	if runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/main") == nil {
		return "main"
	}

	// Fallback: check if master exists
	if runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/master") == nil {
		return "master"
	}

	// Last resort default
	return "main"
}

// tipOf resolves the commit hash a branch points at.
func tipOf(ctx context.Context, repoPath, branch string) (string, error) {
	out, err := outputGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("failed to resolve tip of %q: %v", branch, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ListBranches returns all local branches with their tip hashes, ordered by
// most recent commit first. The ordering lets callers treat a prefix of the
// result as the "recently active" set.
func ListBranches(ctx context.Context, repoPath string) ([]Branch, error) {
	out, err := outputGit(ctx, repoPath,
		"for-each-ref", "--sort=-committerdate",
		"--format=%(objectname) %(refname:short)", "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %v", err)
	}

	var branches []Branch
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		hash, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		branches = append(branches, Branch{Name: name, Tip: hash})
	}
	return branches, nil
}
