// Package git provides git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather than
// using Go git libraries. This approach is simpler, more reliable, and ensures
// compatibility with user configurations (SSH keys, credential helpers, aliases).
//
// # Repository Operations
//
// Repository and branch queries:
//
//   - [RepoRoot]: Resolve the repository root for a path
//   - [CurrentBranch], [ListBranches]: Branch queries with tip hashes
//   - [DefaultBranch]: Detect main/master branch
//
// # Divergence
//
// Ahead/behind counting between branch tips:
//
//   - [RevRange]: Symmetric-difference range expression ("a...b")
//   - [Comparer]: Counts commits on each side of a range via
//     "git rev-list --left-right --count"
package git
