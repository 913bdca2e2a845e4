// Package testutil provides real-repository fixtures for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// SetupTestRepo creates a temporary git repository with one commit on the
// default branch and returns its path. The repository is cleaned up when
// the test ends.
func SetupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")

	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Test Repository\n"), 0o644); err != nil {
		t.Fatalf("failed to create README: %v", err)
	}

	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	return dir
}

// CreateBranch creates and checks out a new branch in the test repo.
func CreateBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	runGit(t, repoDir, "checkout", "-b", branch)
}

// SwitchBranch switches to an existing branch.
func SwitchBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	runGit(t, repoDir, "checkout", branch)
}

// DeleteBranch force-deletes a branch.
func DeleteBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	runGit(t, repoDir, "branch", "-D", branch)
}

// CommitFile creates or updates a file and commits it.
func CommitFile(t *testing.T, repoDir, path, content, message string) {
	t.Helper()

	WriteUncommitted(t, repoDir, path, content)
	runGit(t, repoDir, "add", path)
	runGit(t, repoDir, "commit", "-m", message)
}

// WriteUncommitted writes a file without staging or committing it,
// leaving the working tree dirty.
func WriteUncommitted(t *testing.T, repoDir, path, content string) {
	t.Helper()

	fullPath := filepath.Join(repoDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// GetCurrentBranch returns the current branch name, or empty on a
// detached HEAD.
func GetCurrentBranch(t *testing.T, repoDir string) string {
	t.Helper()
	return gitOutput(t, repoDir, "branch", "--show-current")
}

// StashCount returns the number of stash entries.
func StashCount(t *testing.T, repoDir string) int {
	t.Helper()

	out := gitOutput(t, repoDir, "stash", "list")
	if out == "" {
		return 0
	}
	return len(strings.Split(out, "\n"))
}

// IsClean reports whether the working tree has no uncommitted changes.
func IsClean(t *testing.T, repoDir string) bool {
	t.Helper()
	return gitOutput(t, repoDir, "status", "--porcelain") == ""
}

// runGit runs a git command in the specified directory, failing the test
// on error.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@test.com",
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
}

// gitOutput runs a git command and returns its trimmed stdout.
func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(output))
}
