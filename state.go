package branchlink

import (
	"time"

	"github.com/randalmurphal/branchlink/git"
)

// =============================================================================
// Ticket State
// =============================================================================

// State is the association lifecycle state of a ticket.
// The UI switches on this directly.
type State string

// Ticket state constants.
const (
	// StateUnassociated means the ticket has no active branch.
	StateUnassociated State = "unassociated"

	// StateAssociated means the ticket has an active branch that exists
	// locally.
	StateAssociated State = "associated"

	// StateStale means the ticket has an active association whose branch
	// no longer exists locally. Detected lazily on query.
	StateStale State = "stale"
)

// =============================================================================
// Checkout
// =============================================================================

// Decision is the caller's choice when uncommitted changes block a checkout.
type Decision string

// Checkout decision constants. Exactly three options exist when the tree
// is dirty; the manager never picks one automatically.
const (
	// DecisionUnset means no decision has been made yet.
	DecisionUnset Decision = ""

	// DecisionStash stashes the working tree before checking out.
	DecisionStash Decision = "stash"

	// DecisionCheckoutAnyway carries uncommitted changes across the switch.
	DecisionCheckoutAnyway Decision = "checkout_anyway"

	// DecisionCancel aborts the checkout with no side effects.
	DecisionCancel Decision = "cancel"
)

// CheckoutResult reports the outcome of CheckoutForTicket.
//
// When NeedsDecision is true the working tree was dirty and nothing was
// touched: the caller must present the three decisions and call again with
// one of them. Changes carries the capped changed-file summary for display.
type CheckoutResult struct {
	TicketID      string
	BranchName    string
	NeedsDecision bool
	Changes       *git.ChangeSummary
	Stashed       bool
	StashMessage  string
	Cancelled     bool
}

// =============================================================================
// Auto-Detection
// =============================================================================

// Candidate is a proposed ticket-branch pair discovered from branch naming.
// Candidates are proposals only; nothing is written until the caller
// confirms them.
type Candidate struct {
	TicketID   string
	BranchName string
}

// =============================================================================
// Analytics
// =============================================================================

// BranchUsage summarizes checkout activity for one associated branch.
type BranchUsage struct {
	TicketID   string
	BranchName string
	UseCount   int
	LastUsed   time.Time
}

// AgingAssociation is an association not updated within the age threshold.
type AgingAssociation struct {
	TicketID    string
	BranchName  string
	LastUpdated time.Time
	Age         time.Duration
}

// AnalyticsSnapshot aggregates association health at a point in time.
type AnalyticsSnapshot struct {
	Total  int // tickets with any recorded history
	Active int // tickets with a current association
	Stale  int // active associations whose branch is gone

	// Oldest lists active associations beyond the age threshold,
	// oldest first.
	Oldest []AgingAssociation

	// MostUsed lists associated branches by checkout count, ties broken
	// by most recent use.
	MostUsed []BranchUsage
}

// =============================================================================
// Cleanup
// =============================================================================

// SuggestionKind classifies a cleanup suggestion.
type SuggestionKind string

// Suggestion kind constants.
const (
	// SuggestionStale flags an association whose branch is gone.
	// Safe to auto-apply: removing it is a pure soft delete.
	SuggestionStale SuggestionKind = "stale"

	// SuggestionOld flags an association unused beyond the age threshold.
	// Requires explicit per-item confirmation.
	SuggestionOld SuggestionKind = "old"

	// SuggestionDuplicate flags a branch referenced by more than one
	// ticket. Advisory only; never auto-resolved.
	SuggestionDuplicate SuggestionKind = "duplicate"
)

// Suggestion is a derived maintenance diagnostic. Suggestions are computed
// on demand and never persisted; IDs are stable only within one returned
// set.
type Suggestion struct {
	ID         string
	Kind       SuggestionKind
	BranchName string
	TicketIDs  []string // one ticket for stale/old, all involved for duplicate
	Reason     string
}

// SkippedSuggestion records a suggestion ApplyCleanup declined to act on.
type SkippedSuggestion struct {
	ID     string
	Reason string
}

// FailedSuggestion records a per-item failure during ApplyCleanup.
type FailedSuggestion struct {
	ID  string
	Err error
}

// CleanupResult reports the outcome of ApplyCleanup.
type CleanupResult struct {
	Applied []Suggestion
	Skipped []SkippedSuggestion
	Failed  []FailedSuggestion
}
