// Package git provides the local git operations branchlink needs:
// branch enumeration, current-branch lookup, dirty-tree detection,
// checkout, and stashing.
//
// Core types:
//   - Context: repository handle; serializes its own subprocess calls
//   - CommandRunner: interface for executing git commands (with mocks for testing)
//
// Example usage:
//
//	gitCtx, err := git.NewContext("/path/to/repo")
//	branches, err := gitCtx.ListLocalBranches(ctx)
//	err = gitCtx.Checkout(ctx, "feature/eng-123")
package git
