package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Context manages git operations for a single repository.
// Subprocess calls are serialized per Context so concurrent operations do
// not contend on git's index lock.
type Context struct {
	repoPath string        // Path to the repository root
	runner   CommandRunner // Command runner (defaults to ExecRunner)

	mu sync.Mutex // serializes subprocess invocations
}

// Option configures Context.
type Option func(*Context)

// NewContext creates a git context for the repository.
// It validates that the path is a git repository and applies any options.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	// Verify it's a git repository
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = absPath
	if err := cmd.Run(); err != nil {
		return nil, ErrNotGitRepo
	}

	g := &Context{
		repoPath: absPath,
		runner:   NewExecRunner(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// RepoPath returns the path to the repository.
func (g *Context) RepoPath() string {
	return g.repoPath
}

// CurrentBranch returns the current branch name.
// Returns an empty string with no error on a detached HEAD.
func (g *Context) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := g.runGit(ctx, "branch", "--show-current")
	if err != nil {
		return "", &Error{Op: "get current branch", Err: err}
	}
	return branch, nil
}

// ListLocalBranches returns local branch names in ref order.
// Remote-tracking branches are excluded.
func (g *Context) ListLocalBranches(ctx context.Context) ([]string, error) {
	out, err := g.runGit(ctx, "for-each-ref", "refs/heads/", "--format=%(refname:short)")
	if err != nil {
		return nil, &Error{Op: "list branches", Err: err}
	}
	if out == "" {
		return nil, nil
	}

	lines := strings.Split(out, "\n")
	branches := make([]string, 0, len(lines))
	for _, line := range lines {
		if name := strings.TrimSpace(line); name != "" {
			branches = append(branches, name)
		}
	}
	return branches, nil
}

// BranchExists checks if a local branch exists.
/// The check is a rev-parse --verify probe and collapses all failure modes:
// a failing git subprocess reports the branch as absent, the same as a
// missing ref. Callers that must distinguish the two should use a method
// that returns an error, such as ListLocalBranches.
func (g *Context) BranchExists(ctx context.Context, name string) bool {
	_, err := g.runGit(ctx, "rev-parse", "--verify", "refs/heads/"+name)
	return err == nil
}

// HasUncommittedChanges reports whether the working tree is dirty.
// Untracked files count as uncommitted changes.
func (g *Context) HasUncommittedChanges(ctx context.Context) (bool, error) {
	status, err := g.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return false, &Error{Op: "status", Err: err}
	}
	return status != "", nil
}

// Checkout switches to the specified branch.
// Returns ErrBranchNotFound if the branch does not exist locally, and
// ErrCheckoutConflict if the working tree has uncommitted changes.
// Use CheckoutAnyway to carry uncommitted changes across the switch.
func (g *Context) Checkout(ctx context.Context, branch string) error {
	if !g.BranchExists(ctx, branch) {
		return ErrBranchNotFound
	}

	dirty, err := g.HasUncommittedChanges(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return ErrCheckoutConflict
	}

	if out, err := g.runGit(ctx, "checkout", branch); err != nil {
		return &Error{Op: "checkout", Output: out, Err: err}
	}
	return nil
}

// CheckoutAnyway switches to the branch without the dirty-tree guard.
// Uncommitted changes travel with the checkout; git itself still rejects
// the switch if the changes would be overwritten.
func (g *Context) CheckoutAnyway(ctx context.Context, branch string) error {
	if !g.BranchExists(ctx, branch) {
		return ErrBranchNotFound
	}
	if out, err := g.runGit(ctx, "checkout", branch); err != nil {
		return &Error{Op: "checkout", Output: out, Err: err}
	}
	return nil
}

// CreateBranch creates a new branch at HEAD.
func (g *Context) CreateBranch(ctx context.Context, name string) error {
	if _, err := g.runGit(ctx, "branch", name); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return ErrBranchExists
		}
		return &Error{Op: "create branch", Err: err}
	}
	return nil
}

// CheckoutNew creates and checks out a new branch at the current HEAD.
func (g *Context) CheckoutNew(ctx context.Context, name string) error {
	if err := g.CreateBranch(ctx, name); err != nil {
		return err
	}
	if _, err := g.runGit(ctx, "checkout", name); err != nil {
		return &Error{Op: "checkout", Err: err}
	}
	return nil
}

// Stash saves the working tree to a new stash entry with the given message.
func (g *Context) Stash(ctx context.Context, message string) error {
	if out, err := g.runGit(ctx, "stash", "push", "-m", message); err != nil {
		return &Error{Op: "stash", Output: out, Err: err}
	}
	return nil
}

// runGit executes a git command and returns stdout.
func (g *Context) runGit(ctx context.Context, args ...string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runner.Run(ctx, g.repoPath, "git", args...)
}
