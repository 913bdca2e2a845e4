package branchlink

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/branchlink/notify"
)

// suggestionCache holds the most recently computed suggestion set so
// ApplyCleanup can resolve the opaque ids handed back by the caller.
type suggestionCache struct {
	mu      sync.Mutex
	current map[string]Suggestion
}

func newSuggestionCache() *suggestionCache {
	return &suggestionCache{current: make(map[string]Suggestion)}
}

func (c *suggestionCache) replace(suggestions []Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = make(map[string]Suggestion, len(suggestions))
	for _, s := range suggestions {
		c.current[s.ID] = s
	}
}

func (c *suggestionCache) get(id string) (Suggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.current[id]
	return s, ok
}

// CleanupSuggestions computes maintenance diagnostics for the active
// associations:
//
//   - stale: the branch no longer exists locally
//   - old: the association has not been used within the age threshold
//   - duplicate: the same branch is referenced by more than one ticket
//
// Suggestions are derived on demand and never persisted. The returned ids
// are valid until the next call.
func (m *Manager) CleanupSuggestions(ctx context.Context) ([]Suggestion, error) {
	active, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}

	now := m.clock()
	var suggestions []Suggestion

	byBranch := make(map[string][]string)

	for ticketID, assoc := range active {
		byBranch[assoc.BranchName] = append(byBranch[assoc.BranchName], ticketID)

		if !m.git.BranchExists(ctx, assoc.BranchName) {
			suggestions = append(suggestions, Suggestion{
				ID:         newSuggestionID(),
				Kind:       SuggestionStale,
				BranchName: assoc.BranchName,
				TicketIDs:  []string{ticketID},
				Reason:     fmt.Sprintf("branch %q no longer exists", assoc.BranchName),
			})
			continue
		}

		entry, err := m.store.ActiveEntry(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if entry != nil && now.Sub(entry.LastUsed) > m.staleAfter {
			suggestions = append(suggestions, Suggestion{
				ID:         newSuggestionID(),
				Kind:       SuggestionOld,
				BranchName: assoc.BranchName,
				TicketIDs:  []string{ticketID},
				Reason:     fmt.Sprintf("last used %s", humanize.Time(entry.LastUsed)),
			})
		}
	}

	for branch, ticketIDs := range byBranch {
		if len(ticketIDs) < 2 {
			continue
		}
		sort.Strings(ticketIDs)
		suggestions = append(suggestions, Suggestion{
			ID:         newSuggestionID(),
			Kind:       SuggestionDuplicate,
			BranchName: branch,
			TicketIDs:  ticketIDs,
			Reason:     fmt.Sprintf("branch %q is linked to %s", branch, strings.Join(ticketIDs, ", ")),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Kind != suggestions[j].Kind {
			return suggestions[i].Kind < suggestions[j].Kind
		}
		return suggestions[i].BranchName < suggestions[j].BranchName
	})

	m.suggestions.replace(suggestions)
	return suggestions, nil
}

// ApplyCleanup acts on suggestions from the most recent
// CleanupSuggestions call, identified by id.
//
// Only stale and old suggestions are actionable, and both are pure soft
// deletes; passing an old suggestion's id is the caller's explicit
// per-item confirmation. Duplicate suggestions are advisory and always
// skipped. Per-item failures do not abort the batch.
func (m *Manager) ApplyCleanup(ctx context.Context, ids []string) (*CleanupResult, error) {
	result := &CleanupResult{}

	for _, id := range ids {
		suggestion, ok := m.suggestions.get(id)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedSuggestion{
				ID:     id,
				Reason: ErrUnknownSuggestion.Error(),
			})
			continue
		}

		if suggestion.Kind == SuggestionDuplicate {
			result.Skipped = append(result.Skipped, SkippedSuggestion{
				ID:     id,
				Reason: "duplicate links are advisory and must be resolved manually",
			})
			continue
		}

		if err := m.removeOne(ctx, suggestion); err != nil {
			result.Failed = append(result.Failed, FailedSuggestion{ID: id, Err: err})
			continue
		}
		result.Applied = append(result.Applied, suggestion)

		m.notify(ctx, notify.Event{
			Type:     notify.EventCleanupApplied,
			TicketID: suggestion.TicketIDs[0],
			Branch:   suggestion.BranchName,
			Message:  "cleanup applied: " + suggestion.Reason,
			Severity: notify.SeverityInfo,
			Metadata: map[string]any{"kind": string(suggestion.Kind)},
		})
	}

	return result, nil
}

func (m *Manager) removeOne(ctx context.Context, suggestion Suggestion) error {
	ticketID := suggestion.TicketIDs[0]

	unlock := m.locks.lock(ticketID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return m.store.Remove(ctx, ticketID)
}

func newSuggestionID() string {
	return nanoid.Must(12)
}
