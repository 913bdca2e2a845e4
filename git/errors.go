package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrBranchExists indicates the branch already exists.
	ErrBranchExists = errors.New("branch already exists")

	// ErrBranchNotFound indicates the branch does not exist locally.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrCheckoutConflict indicates a checkout was refused because the
	// working tree has uncommitted changes and no override was requested.
	ErrCheckoutConflict = errors.New("uncommitted changes block checkout")
)

// Error wraps a git command error with context.
type Error struct {
	Op     string // Operation that failed (e.g., "checkout", "stash")
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
