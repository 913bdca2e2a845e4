package branchlink

import (
	"errors"
	"fmt"
	"strings"
)

// Manager errors.
var (
	// ErrNotAssociated indicates the ticket has no active branch association.
	ErrNotAssociated = errors.New("ticket has no associated branch")

	// ErrStaleAssociation indicates the associated branch no longer exists
	// locally.
	ErrStaleAssociation = errors.New("associated branch no longer exists")

	// ErrUnknownSuggestion indicates a cleanup suggestion id that does not
	// match the most recent suggestion set.
	ErrUnknownSuggestion = errors.New("unknown cleanup suggestion")
)

// ValidationError reports malformed input, rejected before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// StaleError wraps ErrStaleAssociation with the ticket and branch involved.
type StaleError struct {
	TicketID   string
	BranchName string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("ticket %s: branch %q no longer exists", e.TicketID, e.BranchName)
}

func (e *StaleError) Unwrap() error {
	return ErrStaleAssociation
}

// BatchError aggregates per-item failures from a batch operation.
// The batch itself keeps going; failed items are collected here.
type BatchError struct {
	Items map[string]error // keyed by ticket ID
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for id, err := range e.Items {
		parts = append(parts, id+": "+err.Error())
	}
	return fmt.Sprintf("%d item(s) failed: %s", len(e.Items), strings.Join(parts, "; "))
}

// validateTicketID rejects empty or blank ticket ids.
func validateTicketID(ticketID string) error {
	if strings.TrimSpace(ticketID) == "" {
		return &ValidationError{Field: "ticket id", Reason: "must not be empty"}
	}
	return nil
}

// validateBranchName rejects empty or blank branch names.
func validateBranchName(branchName string) error {
	if strings.TrimSpace(branchName) == "" {
		return &ValidationError{Field: "branch name", Reason: "must not be empty"}
	}
	return nil
}
