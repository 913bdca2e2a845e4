package branchlink

import (
	"context"
	"sort"

	"github.com/randalmurphal/branchlink/notify"
)

// AutoDetect scans local branches for ticket identifiers and returns
// candidate associations for confirmation. It never writes: a candidate
// becomes an association only through ConfirmCandidates.
//
// Branches that already are an active association are excluded, as are
// ticket ids that already have an active branch.
func (m *Manager) AutoDetect(ctx context.Context) ([]Candidate, error) {
	branches, err := m.git.ListLocalBranches(ctx)
	if err != nil {
		return nil, err
	}

	active, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}

	activeBranches := make(map[string]bool, len(active))
	for _, assoc := range active {
		activeBranches[assoc.BranchName] = true
	}

	// Group by extracted id so a ticket with several matching branches
	// yields all its pairings together.
	byTicket := make(map[string][]string)
	for _, branch := range branches {
		if activeBranches[branch] {
			continue
		}
		ticketID, ok := m.grammar.Extract(branch)
		if !ok {
			continue
		}
		if _, associated := active[ticketID]; associated {
			continue
		}
		byTicket[ticketID] = append(byTicket[ticketID], branch)
	}

	var candidates []Candidate
	for ticketID, branchNames := range byTicket {
		for _, branch := range branchNames {
			candidates = append(candidates, Candidate{TicketID: ticketID, BranchName: branch})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TicketID != candidates[j].TicketID {
			return candidates[i].TicketID < candidates[j].TicketID
		}
		return candidates[i].BranchName < candidates[j].BranchName
	})
	return candidates, nil
}

// ConfirmCandidates commits caller-approved candidates as auto-detected
// associations. Per-item failures do not abort the batch; they come back
// aggregated in a *BatchError alongside the candidates that did apply.
func (m *Manager) ConfirmCandidates(ctx context.Context, candidates []Candidate) ([]Candidate, error) {
	var applied []Candidate
	failures := make(map[string]error)

	for _, c := range candidates {
		if err := m.confirmOne(ctx, c); err != nil {
			failures[c.TicketID] = err
			continue
		}
		applied = append(applied, c)
	}

	if len(failures) > 0 {
		return applied, &BatchError{Items: failures}
	}
	return applied, nil
}

func (m *Manager) confirmOne(ctx context.Context, c Candidate) error {
	if err := validateTicketID(c.TicketID); err != nil {
		return err
	}
	if err := validateBranchName(c.BranchName); err != nil {
		return err
	}

	unlock := m.locks.lock(c.TicketID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.store.Set(ctx, c.TicketID, c.BranchName, true); err != nil {
		return err
	}

	m.notify(ctx, notify.Event{
		Type:     notify.EventAssociationCreated,
		TicketID: c.TicketID,
		Branch:   c.BranchName,
		Message:  "auto-detected branch associated",
		Severity: notify.SeverityInfo,
		Metadata: map[string]any{"auto_detected": true},
	})
	return nil
}
