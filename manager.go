package branchlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/branchlink/config"
	"github.com/randalmurphal/branchlink/git"
	"github.com/randalmurphal/branchlink/notify"
	"github.com/randalmurphal/branchlink/pattern"
	"github.com/randalmurphal/branchlink/store"
)

// Default settings.
const (
	// DefaultStaleAfter is the age threshold for old-link diagnostics.
	DefaultStaleAfter = 30 * 24 * time.Hour

	// DefaultMaxChangedFiles caps the changed-file list in checkout
	// decision prompts.
	DefaultMaxChangedFiles = 5
)

// Manager orchestrates the branch-ticket association lifecycle: the safe
// checkout protocol, auto-detection of candidate links, analytics, and
// cleanup diagnostics.
//
// Mutating operations are serialized per ticket id. Read-only operations
// run against the store's current snapshot.
type Manager struct {
	git      *git.Context
	store    *store.Store
	grammar  *pattern.Grammar
	namer    *pattern.Namer
	notifier notify.Notifier
	clock    func() time.Time

	staleAfter      time.Duration
	maxChangedFiles int

	locks *ticketLocks

	suggestions *suggestionCache
}

// Option configures Manager.
type Option func(*Manager)

// WithGrammar sets the ticket-id extraction grammar.
func WithGrammar(g *pattern.Grammar) Option {
	return func(m *Manager) {
		m.grammar = g
	}
}

// WithNamer sets the branch namer used by StartWork.
func WithNamer(n *pattern.Namer) Option {
	return func(m *Manager) {
		m.namer = n
	}
}

// WithNotifier sets the event notifier. Events are best-effort; notifier
// errors never fail the operation that produced them.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithClock sets the time source. Used by tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithStaleAfter sets the age threshold for old-link diagnostics.
func WithStaleAfter(d time.Duration) Option {
	return func(m *Manager) {
		m.staleAfter = d
	}
}

// WithMaxChangedFiles caps the changed-file list in decision prompts.
func WithMaxChangedFiles(n int) Option {
	return func(m *Manager) {
		m.maxChangedFiles = n
	}
}

// New creates a Manager over a git context and an association store.
func New(gitCtx *git.Context, st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		git:             gitCtx,
		store:           st,
		grammar:         pattern.Default(),
		namer:           pattern.DefaultNamer(),
		notifier:        notify.NopNotifier{},
		clock:           time.Now,
		staleAfter:      DefaultStaleAfter,
		maxChangedFiles: DefaultMaxChangedFiles,
		locks:           newTicketLocks(),
		suggestions:     newSuggestionCache(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromConfig creates a Manager with settings taken from a resolved
// configuration: the ticket-id grammar, branch prefix, age threshold, and
// changed-file cap. Explicit options still win over configured values.
func NewFromConfig(gitCtx *git.Context, st *store.Store, cfg *config.Resolved, opts ...Option) (*Manager, error) {
	grammar, err := pattern.Compile(cfg.Get(config.KeyPattern))
	if err != nil {
		return nil, err
	}

	namer := pattern.DefaultNamer()
	if prefix := cfg.Get(config.KeyBranchPrefix); prefix != "" {
		namer.TypePrefix = prefix
	}

	base := []Option{
		WithGrammar(grammar),
		WithNamer(namer),
		WithStaleAfter(cfg.StaleAfter()),
		WithMaxChangedFiles(cfg.GetInt(config.KeyMaxChangedFiles)),
	}
	return New(gitCtx, st, append(base, opts...)...), nil
}

// Associate links a branch to a ticket, superseding any prior association.
// The branch does not have to exist locally yet: association may precede
// branch creation.
func (m *Manager) Associate(ctx context.Context, ticketID, branchName string) error {
	if err := validateTicketID(ticketID); err != nil {
		return err
	}
	if err := validateBranchName(branchName); err != nil {
		return err
	}

	unlock := m.locks.lock(ticketID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.store.Set(ctx, ticketID, branchName, false); err != nil {
		return err
	}

	m.notify(ctx, notify.Event{
		Type:     notify.EventAssociationCreated,
		TicketID: ticketID,
		Branch:   branchName,
		Message:  "branch associated",
		Severity: notify.SeverityInfo,
	})
	return nil
}

// Disassociate removes the ticket's active association. History is
// retained. Returns ErrNotAssociated if there is nothing to remove.
func (m *Manager) Disassociate(ctx context.Context, ticketID string) error {
	if err := validateTicketID(ticketID); err != nil {
		return err
	}

	unlock := m.locks.lock(ticketID)
	defer unlock()

	assoc, err := m.store.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	if assoc == nil {
		return ErrNotAssociated
	}

	if err := m.store.Remove(ctx, ticketID); err != nil {
		return err
	}

	m.notify(ctx, notify.Event{
		Type:     notify.EventAssociationRemoved,
		TicketID: ticketID,
		Branch:   assoc.BranchName,
		Message:  "branch disassociated",
		Severity: notify.SeverityInfo,
	})
	return nil
}

// TicketState resolves the ticket's lifecycle state. Staleness is detected
// here, lazily, by checking branch existence; there is no background
// polling.
func (m *Manager) TicketState(ctx context.Context, ticketID string) (State, error) {
	if err := validateTicketID(ticketID); err != nil {
		return "", err
	}

	assoc, err := m.store.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if assoc == nil {
		return StateUnassociated, nil
	}
	if !m.git.BranchExists(ctx, assoc.BranchName) {
		return StateStale, nil
	}
	return StateAssociated, nil
}

// Association returns the ticket's current association, or nil if none.
func (m *Manager) Association(ctx context.Context, ticketID string) (*store.BranchAssociation, error) {
	if err := validateTicketID(ticketID); err != nil {
		return nil, err
	}
	return m.store.Get(ctx, ticketID)
}

// History returns the ticket's full association timeline, most recent
// first.
func (m *Manager) History(ctx context.Context, ticketID string) ([]store.HistoryEntry, error) {
	if err := validateTicketID(ticketID); err != nil {
		return nil, err
	}
	return m.store.HistoryFor(ctx, ticketID)
}

// CheckoutForTicket switches the working tree to the ticket's branch.
//
// If the tree has uncommitted changes and decision is DecisionUnset, no
// git state changes: the result comes back with NeedsDecision set and a
// capped changed-file summary, and the caller must call again with one of
// DecisionStash, DecisionCheckoutAnyway, or DecisionCancel. The manager
// never resolves that choice on its own.
func (m *Manager) CheckoutForTicket(ctx context.Context, ticketID string, decision Decision) (*CheckoutResult, error) {
	if err := validateTicketID(ticketID); err != nil {
		return nil, err
	}
	switch decision {
	case DecisionUnset, DecisionStash, DecisionCheckoutAnyway, DecisionCancel:
	default:
		return nil, &ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", decision)}
	}

	unlock := m.locks.lock(ticketID)
	defer unlock()

	assoc, err := m.store.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if assoc == nil {
		return nil, ErrNotAssociated
	}

	branch := assoc.BranchName
	if !m.git.BranchExists(ctx, branch) {
		return nil, &StaleError{TicketID: ticketID, BranchName: branch}
	}

	dirty, err := m.git.HasUncommittedChanges(ctx)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{TicketID: ticketID, BranchName: branch}

	// Cancel always wins, dirty or not.
	if decision == DecisionCancel {
		result.Cancelled = true
		return result, nil
	}

	// opCtx carries the post-decision sequence. Once a stash commits, the
	// operation is past its point of no return: the checkout and the
	// bookkeeping write must follow even if the caller cancels, or the
	// user's changes end up stashed with the branch unswitched.
	opCtx := ctx

	if dirty {
		switch decision {
		case DecisionUnset:
			changes, err := m.git.ChangedFiles(ctx, m.maxChangedFiles)
			if err != nil {
				return nil, err
			}
			result.NeedsDecision = true
			result.Changes = changes
			m.notify(ctx, notify.Event{
				Type:     notify.EventCheckoutBlocked,
				TicketID: ticketID,
				Branch:   branch,
				Message:  "uncommitted changes require a decision",
				Severity: notify.SeverityWarning,
			})
			return result, nil

		case DecisionStash:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			msg := fmt.Sprintf("branchlink: %s %s", ticketID, m.clock().UTC().Format(time.RFC3339))
			if err := m.git.Stash(ctx, msg); err != nil {
				return nil, err
			}
			result.Stashed = true
			result.StashMessage = msg
			opCtx = context.WithoutCancel(ctx)

		case DecisionCheckoutAnyway:
			// fall through to the unguarded checkout below
		}
	}

	// Last cancellation gate before the branch switch. A no-op after a
	// stash, where opCtx no longer cancels.
	if err := opCtx.Err(); err != nil {
		return nil, err
	}

	if dirty && decision == DecisionCheckoutAnyway {
		err = m.git.CheckoutAnyway(opCtx, branch)
	} else {
		err = m.git.Checkout(opCtx, branch)
	}
	if err != nil {
		return nil, err
	}

	// The branch switch happened; the bookkeeping write must happen with
	// it even if the caller's context was cancelled in between.
	touchCtx := context.WithoutCancel(ctx)
	if err := m.store.Touch(touchCtx, ticketID); err != nil {
		return nil, err
	}

	m.notify(ctx, notify.Event{
		Type:     notify.EventCheckoutCompleted,
		TicketID: ticketID,
		Branch:   branch,
		Message:  "checked out associated branch",
		Severity: notify.SeverityInfo,
		Metadata: map[string]any{"stashed": result.Stashed},
	})
	return result, nil
}

// StartWork generates a branch name for the ticket, creates and checks out
// the branch, and associates it. If the branch already exists it is
// checked out instead of recreated. The association is written only after
// the git side succeeds, so a cancelled StartWork leaves no half-linked
// state.
func (m *Manager) StartWork(ctx context.Context, ticketID, title string) (*CheckoutResult, error) {
	if err := validateTicketID(ticketID); err != nil {
		return nil, err
	}

	unlock := m.locks.lock(ticketID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	branch := m.namer.ForTicket(ticketID, title)

	err := m.git.CheckoutNew(ctx, branch)
	if errors.Is(err, git.ErrBranchExists) {
		err = m.git.Checkout(ctx, branch)
	}
	if err != nil {
		return nil, err
	}

	setCtx := context.WithoutCancel(ctx)
	if err := m.store.Set(setCtx, ticketID, branch, false); err != nil {
		return nil, err
	}
	if err := m.store.Touch(setCtx, ticketID); err != nil {
		return nil, err
	}

	m.notify(ctx, notify.Event{
		Type:     notify.EventWorkStarted,
		TicketID: ticketID,
		Branch:   branch,
		Message:  "started work on ticket",
		Severity: notify.SeverityInfo,
	})
	return &CheckoutResult{TicketID: ticketID, BranchName: branch}, nil
}

// notify emits an event best-effort. Failures are the notifier's problem.
func (m *Manager) notify(ctx context.Context, event notify.Event) {
	if m.notifier == nil {
		return
	}
	event.Timestamp = m.clock()
	_ = m.notifier.Notify(ctx, event)
}
