package notify

import (
	"context"
	"time"
)

// EventType represents the type of association event.
type EventType string

// Event type constants.
const (
	EventAssociationCreated EventType = "association_created"
	EventAssociationRemoved EventType = "association_removed"
	EventCheckoutCompleted  EventType = "checkout_completed"
	EventCheckoutBlocked    EventType = "checkout_blocked"
	EventCleanupApplied     EventType = "cleanup_applied"
	EventWorkStarted        EventType = "work_started"
)

// Severity constants for events.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes an association lifecycle event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	TicketID  string         `json:"ticket_id,omitempty"`
	Branch    string         `json:"branch,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier receives association lifecycle events.
type Notifier interface {
	// Notify sends a notification. Implementations should be non-blocking
	// and handle errors gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

// =============================================================================
// Context Injection
// =============================================================================

type serviceContextKey string

const notifierServiceKey serviceContextKey = "branchlink.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}
