package git

import (
	"context"
	"errors"
	"testing"
)

func TestCurrentBranch(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("feature/eng-42", nil) // git branch --show-current

	g := &Context{repoPath: t.TempDir(), runner: runner}

	branch, err := g.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "feature/eng-42" {
		t.Errorf("branch = %q, want %q", branch, "feature/eng-42")
	}
}

func TestCurrentBranch_DetachedHead(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("", nil) // detached HEAD prints nothing

	g := &Context{repoPath: t.TempDir(), runner: runner}

	branch, err := g.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "" {
		t.Errorf("branch = %q, want empty on detached HEAD", branch)
	}
}

func TestListLocalBranches(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("feature/eng-5\nfix/eng-7-crash\nmain", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	branches, err := g.ListLocalBranches(context.Background())
	if err != nil {
		t.Fatalf("ListLocalBranches: %v", err)
	}

	want := []string{"feature/eng-5", "fix/eng-7-crash", "main"}
	if len(branches) != len(want) {
		t.Fatalf("got %d branches, want %d", len(branches), len(want))
	}
	for i := range want {
		if branches[i] != want[i] {
			t.Errorf("branches[%d] = %q, want %q", i, branches[i], want[i])
		}
	}
}

func TestListLocalBranches_Empty(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	branches, err := g.ListLocalBranches(context.Background())
	if err != nil {
		t.Fatalf("ListLocalBranches: %v", err)
	}
	if len(branches) != 0 {
		t.Errorf("got %d branches, want 0", len(branches))
	}
}

func TestBranchExists(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		err    error
		want   bool
	}{
		{"ref resolves", "abc123", nil, true},
		{"missing ref", "", errors.New("fatal: Needed a single revision"), false},
		// Subprocess failures collapse to absent; that is the contract.
		{"subprocess failure", "", errors.New("fatal: not a git repository"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewSequentialMockRunner()
			runner.AddOutput(tt.stdout, tt.err)

			g := &Context{repoPath: t.TempDir(), runner: runner}

			if got := g.BranchExists(context.Background(), "feat/a"); got != tt.want {
				t.Errorf("BranchExists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckout_Clean(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("abc123", nil)                 // rev-parse --verify refs/heads/main
	runner.AddOutput("", nil)                       // status --porcelain
	runner.AddOutput("Switched to branch 'main'", nil) // checkout main

	g := &Context{repoPath: t.TempDir(), runner: runner}

	if err := g.Checkout(context.Background(), "main"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(runner.Calls) != 3 {
		t.Errorf("expected 3 git calls, got %d", len(runner.Calls))
	}
}

func TestCheckout_BranchNotFound(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutputError("", "fatal: needed a single revision", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	err := g.Checkout(context.Background(), "ghost")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("error = %v, want ErrBranchNotFound", err)
	}
}

func TestCheckout_DirtyTree(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("abc123", nil)        // rev-parse --verify
	runner.AddOutput(" M main.go", nil)    // status --porcelain (dirty)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	err := g.Checkout(context.Background(), "main")
	if !errors.Is(err, ErrCheckoutConflict) {
		t.Errorf("error = %v, want ErrCheckoutConflict", err)
	}
	// The checkout itself must not have run.
	for _, call := range runner.Calls {
		if len(call.Args) > 0 && call.Args[0] == "checkout" {
			t.Error("checkout ran despite dirty tree")
		}
	}
}

func TestCheckoutAnyway_SkipsDirtyGuard(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("abc123", nil) // rev-parse --verify
	runner.AddOutput("", nil)       // checkout

	g := &Context{repoPath: t.TempDir(), runner: runner}

	if err := g.CheckoutAnyway(context.Background(), "main"); err != nil {
		t.Fatalf("CheckoutAnyway: %v", err)
	}
	if len(runner.Calls) != 2 {
		t.Errorf("expected 2 git calls, got %d", len(runner.Calls))
	}
}

func TestStash(t *testing.T) {
	runner := NewMockRunner()
	runner.OnAnyCommand().Return("Saved working directory", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	if err := g.Stash(context.Background(), "branchlink: ENG-1"); err != nil {
		t.Fatalf("Stash: %v", err)
	}
	if !runner.WasCalled("git", "stash", "push", "-m", "branchlink: ENG-1") {
		t.Error("stash push was not invoked with the message")
	}
}

func TestHasUncommittedChanges(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"clean", "", false},
		{"modified", " M main.go", true},
		{"untracked", "?? new.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewSequentialMockRunner()
			runner.AddOutput(tt.status, nil)

			g := &Context{repoPath: t.TempDir(), runner: runner}

			dirty, err := g.HasUncommittedChanges(context.Background())
			if err != nil {
				t.Fatalf("HasUncommittedChanges: %v", err)
			}
			if dirty != tt.want {
				t.Errorf("dirty = %v, want %v", dirty, tt.want)
			}
		})
	}
}

func TestCreateBranch_AlreadyExists(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutputError("", "fatal: a branch named 'dup' already exists", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	err := g.CreateBranch(context.Background(), "dup")
	if !errors.Is(err, ErrBranchExists) {
		t.Errorf("error = %v, want ErrBranchExists", err)
	}
}

func TestCheckoutNew(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("", nil) // git branch feature/new
	runner.AddOutput("", nil) // git checkout feature/new

	g := &Context{repoPath: t.TempDir(), runner: runner}

	if err := g.CheckoutNew(context.Background(), "feature/new"); err != nil {
		t.Fatalf("CheckoutNew: %v", err)
	}
}

func TestContextWithGit(t *testing.T) {
	gitCtx := &Context{repoPath: "/test/repo"}

	ctx := ContextWithGit(context.Background(), gitCtx)

	retrieved := GitFromContext(ctx)
	if retrieved == nil {
		t.Fatal("GitFromContext returned nil")
	}
	if retrieved.repoPath != "/test/repo" {
		t.Errorf("repoPath = %q, want %q", retrieved.repoPath, "/test/repo")
	}
}

func TestGitFromContext_Missing(t *testing.T) {
	if retrieved := GitFromContext(context.Background()); retrieved != nil {
		t.Errorf("expected nil, got %v", retrieved)
	}
}

func TestMustGitFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()

	MustGitFromContext(context.Background())
}
