package git

import (
	"context"
	"strings"
)

// ChangeType classifies a working-tree change.
type ChangeType string

// Change type constants.
const (
	ChangeModified  ChangeType = "modified"
	ChangeAdded     ChangeType = "added"
	ChangeDeleted   ChangeType = "deleted"
	ChangeRenamed   ChangeType = "renamed"
	ChangeCopied    ChangeType = "copied"
	ChangeUntracked ChangeType = "untracked"
	ChangeConflict  ChangeType = "conflict"
)

// FileChange describes a single changed file in the working tree.
type FileChange struct {
	Path string
	Type ChangeType
}

// ChangeSummary is a display-oriented view of uncommitted changes:
// the first max files plus a count of the rest.
type ChangeSummary struct {
	Files     []FileChange
	Remaining int // changed files beyond Files
	Total     int
}

// ChangedFiles summarizes uncommitted changes for display.
// At most max files are listed; max <= 0 means no cap.
func (g *Context) ChangedFiles(ctx context.Context, max int) (*ChangeSummary, error) {
	out, err := g.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return nil, &Error{Op: "status", Err: err}
	}

	summary := &ChangeSummary{}
	if out == "" {
		return summary, nil
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		change := FileChange{
			Path: strings.TrimSpace(line[2:]),
			Type: classifyStatus(line[0], line[1]),
		}
		summary.Total++
		if max <= 0 || len(summary.Files) < max {
			summary.Files = append(summary.Files, change)
		} else {
			summary.Remaining++
		}
	}
	return summary, nil
}

// classifyStatus maps porcelain XY codes to a ChangeType.
// The staged column wins when both columns carry a change.
func classifyStatus(x, y byte) ChangeType {
	if x == '?' || y == '?' {
		return ChangeUntracked
	}
	if x == 'U' || y == 'U' {
		return ChangeConflict
	}

	code := x
	if code == ' ' {
		code = y
	}
	switch code {
	case 'A':
		return ChangeAdded
	case 'D':
		return ChangeDeleted
	case 'R':
		return ChangeRenamed
	case 'C':
		return ChangeCopied
	default:
		return ChangeModified
	}
}
