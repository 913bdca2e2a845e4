package branchlink

import (
	"context"
	"sort"
)

// Analytics aggregates association health: totals, aging links beyond the
// threshold, and the most-used branches. Read-only; runs against the
// store's current snapshot.
func (m *Manager) Analytics(ctx context.Context) (*AnalyticsSnapshot, error) {
	ticketIDs, err := m.store.TicketIDs(ctx)
	if err != nil {
		return nil, err
	}

	active, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &AnalyticsSnapshot{
		Total:  len(ticketIDs),
		Active: len(active),
	}

	now := m.clock()

	for ticketID, assoc := range active {
		if !m.git.BranchExists(ctx, assoc.BranchName) {
			snapshot.Stale++
		}

		if age := now.Sub(assoc.LastUpdated); age > m.staleAfter {
			snapshot.Oldest = append(snapshot.Oldest, AgingAssociation{
				TicketID:    ticketID,
				BranchName:  assoc.BranchName,
				LastUpdated: assoc.LastUpdated,
				Age:         age,
			})
		}

		entry, err := m.store.ActiveEntry(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			snapshot.MostUsed = append(snapshot.MostUsed, BranchUsage{
				TicketID:   ticketID,
				BranchName: assoc.BranchName,
				UseCount:   entry.UseCount,
				LastUsed:   entry.LastUsed,
			})
		}
	}

	sort.Slice(snapshot.Oldest, func(i, j int) bool {
		return snapshot.Oldest[i].LastUpdated.Before(snapshot.Oldest[j].LastUpdated)
	})

	// Most used first; ties go to the most recently used branch.
	sort.Slice(snapshot.MostUsed, func(i, j int) bool {
		a, b := snapshot.MostUsed[i], snapshot.MostUsed[j]
		if a.UseCount != b.UseCount {
			return a.UseCount > b.UseCount
		}
		return a.LastUsed.After(b.LastUsed)
	})

	return snapshot, nil
}
