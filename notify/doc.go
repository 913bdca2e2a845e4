// Package notify defines the event port through which branchlink reports
// association lifecycle events (created, removed, checkouts, cleanups).
// Events are best-effort: notifier failures never fail the operation that
// produced them.
package notify
