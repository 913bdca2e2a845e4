package git

import (
	"context"
	"testing"
)

func TestChangedFiles_Capped(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput(" M a.go\n M b.go\nA  c.go\n?? d.go\nD  e.go\n M f.go\n M g.go", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	summary, err := g.ChangedFiles(context.Background(), 5)
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}

	if len(summary.Files) != 5 {
		t.Errorf("len(Files) = %d, want 5", len(summary.Files))
	}
	if summary.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", summary.Remaining)
	}
	if summary.Total != 7 {
		t.Errorf("Total = %d, want 7", summary.Total)
	}
}

func TestChangedFiles_Clean(t *testing.T) {
	runner := NewSequentialMockRunner()
	runner.AddOutput("", nil)

	g := &Context{repoPath: t.TempDir(), runner: runner}

	summary, err := g.ChangedFiles(context.Background(), 5)
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}
	if summary.Total != 0 || len(summary.Files) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		x, y byte
		want ChangeType
	}{
		{"modified unstaged", ' ', 'M', ChangeModified},
		{"modified staged", 'M', ' ', ChangeModified},
		{"added", 'A', ' ', ChangeAdded},
		{"deleted", ' ', 'D', ChangeDeleted},
		{"renamed", 'R', ' ', ChangeRenamed},
		{"copied", 'C', ' ', ChangeCopied},
		{"untracked", '?', '?', ChangeUntracked},
		{"conflict", 'U', 'U', ChangeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.x, tt.y); got != tt.want {
				t.Errorf("classifyStatus(%q, %q) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
