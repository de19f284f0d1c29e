// Package cmd provides helpers for executing external commands with proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making command failures more informative for users.
//
// # Usage
//
//	output, err := cmd.OutputContext(ctx, repoPath, "git", "rev-list", "--count", rng)
//	if err != nil {
//	    // err contains stderr output if available
//	    return fmt.Errorf("git failed: %w", err)
//	}
//
// # Design Notes
//
// drift shells out to the git CLI rather than using a Go git library.
// This approach is simpler, more reliable, and ensures compatibility with
// user configurations (SSH keys, credential helpers, alternate object
// stores, etc.).
package cmd
