package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BranchAssociation is the current branch linked to a ticket.
// At most one active branch exists per ticket.
type BranchAssociation struct {
	TicketID     string    `json:"ticketId"`
	BranchName   string    `json:"branchName"`
	LastUpdated  time.Time `json:"lastUpdated"`
	AutoDetected bool      `json:"autoDetected"`
}

// HistoryEntry is an audit record of a branch ever linked to a ticket.
// Entries are append-only; only Active, LastUsed and UseCount mutate.
type HistoryEntry struct {
	BranchName   string    `json:"branchName"`
	AssociatedAt time.Time `json:"associatedAt"`
	LastUsed     time.Time `json:"lastUsed"`
	UseCount     int       `json:"useCount"`
	Active       bool      `json:"active"`
}

// ticketRecord is the persisted unit: one whole record per ticket,
// replaced atomically on every mutation.
type ticketRecord struct {
	Association *BranchAssociation `json:"association,omitempty"`
	History     []HistoryEntry     `json:"history"`
}

// Store persists branch associations and per-ticket history through a KV
// port. KV failures are retried once with backoff before surfacing as
// *IOError.
type Store struct {
	kv    KV
	clock func() time.Time
}

// Option configures Store.
type Option func(*Store)

// WithClock sets the time source. Used by tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// New creates a Store over the given KV port.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current association for the ticket, or nil if none.
func (s *Store) Get(ctx context.Context, ticketID string) (*BranchAssociation, error) {
	rec, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, &IOError{Op: "get", Key: ticketID, Err: err}
	}
	if rec == nil || rec.Association == nil {
		return nil, nil
	}
	assoc := *rec.Association
	return &assoc, nil
}

// Set upserts the association for the ticket. Any prior active history
// entry is demoted, and a new entry records this occurrence. Calling Set
// with the branch already active is a no-op apart from LastUpdated, so
// retries cannot duplicate entries.
func (s *Store) Set(ctx context.Context, ticketID, branchName string, autoDetected bool) error {
	rec, err := s.load(ctx, ticketID)
	if err != nil {
		return &IOError{Op: "set", Key: ticketID, Err: err}
	}
	if rec == nil {
		rec = &ticketRecord{}
	}

	now := s.clock()

	if active := activeEntry(rec); active != nil {
		if active.BranchName == branchName {
			// Idempotent re-association to the same branch.
			rec.Association.LastUpdated = now
			rec.Association.AutoDetected = autoDetected
			return s.save(ctx, "set", ticketID, rec)
		}
		active.Active = false
	}

	rec.History = append(rec.History, HistoryEntry{
		BranchName:   branchName,
		AssociatedAt: now,
		LastUsed:     now,
		Active:       true,
	})
	rec.Association = &BranchAssociation{
		TicketID:     ticketID,
		BranchName:   branchName,
		LastUpdated:  now,
		AutoDetected: autoDetected,
	}

	return s.save(ctx, "set", ticketID, rec)
}

// Remove soft-deletes the association: the active history entry is marked
// inactive and history is retained.
func (s *Store) Remove(ctx context.Context, ticketID string) error {
	rec, err := s.load(ctx, ticketID)
	if err != nil {
		return &IOError{Op: "remove", Key: ticketID, Err: err}
	}
	if rec == nil || rec.Association == nil {
		return nil
	}

	if active := activeEntry(rec); active != nil {
		active.Active = false
	}
	rec.Association = nil

	return s.save(ctx, "remove", ticketID, rec)
}

// Touch updates LastUsed on the active entry and bumps its use count.
// Touching a ticket without an active association is a no-op.
func (s *Store) Touch(ctx context.Context, ticketID string) error {
	rec, err := s.load(ctx, ticketID)
	if err != nil {
		return &IOError{Op: "touch", Key: ticketID, Err: err}
	}
	if rec == nil || rec.Association == nil {
		return nil
	}

	active := activeEntry(rec)
	if active == nil {
		return nil
	}
	active.LastUsed = s.clock()
	active.UseCount++

	return s.save(ctx, "touch", ticketID, rec)
}

// All returns the current active associations keyed by ticket ID.
func (s *Store) All(ctx context.Context) (map[string]BranchAssociation, error) {
	keys, err := s.retryKeys(ctx)
	if err != nil {
		return nil, &IOError{Op: "all", Key: "*", Err: err}
	}

	result := make(map[string]BranchAssociation)
	for _, key := range keys {
		rec, err := s.load(ctx, key)
		if err != nil {
			return nil, &IOError{Op: "all", Key: key, Err: err}
		}
		if rec != nil && rec.Association != nil {
			result[key] = *rec.Association
		}
	}
	return result, nil
}

// TicketIDs returns every ticket that has a record, associated or not.
func (s *Store) TicketIDs(ctx context.Context) ([]string, error) {
	keys, err := s.retryKeys(ctx)
	if err != nil {
		return nil, &IOError{Op: "keys", Key: "*", Err: err}
	}
	sort.Strings(keys)
	return keys, nil
}

// HistoryFor returns the ticket's full timeline, most recent first.
func (s *Store) HistoryFor(ctx context.Context, ticketID string) ([]HistoryEntry, error) {
	rec, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, &IOError{Op: "history", Key: ticketID, Err: err}
	}
	if rec == nil {
		return nil, nil
	}

	history := make([]HistoryEntry, len(rec.History))
	copy(history, rec.History)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].AssociatedAt.After(history[j].AssociatedAt)
	})
	return history, nil
}

// ActiveEntry returns the active history entry for the ticket, or nil.
func (s *Store) ActiveEntry(ctx context.Context, ticketID string) (*HistoryEntry, error) {
	rec, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, &IOError{Op: "history", Key: ticketID, Err: err}
	}
	if rec == nil {
		return nil, nil
	}
	if active := activeEntry(rec); active != nil {
		entry := *active
		return &entry, nil
	}
	return nil, nil
}

func activeEntry(rec *ticketRecord) *HistoryEntry {
	for i := range rec.History {
		if rec.History[i].Active {
			return &rec.History[i]
		}
	}
	return nil
}

// load reads and decodes a ticket record. Returns (nil, nil) when the
// ticket has no record yet.
func (s *Store) load(ctx context.Context, ticketID string) (*ticketRecord, error) {
	var data []byte
	err := s.retry(ctx, func() error {
		var getErr error
		data, getErr = s.kv.Get(ctx, ticketID)
		if errors.Is(getErr, ErrKeyNotFound) {
			return backoff.Permanent(getErr)
		}
		return getErr
	})
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec ticketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// save encodes and atomically replaces a ticket record.
func (s *Store) save(ctx context.Context, op, ticketID string, rec *ticketRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &IOError{Op: op, Key: ticketID, Err: err}
	}

	err = s.retry(ctx, func() error {
		return s.kv.Put(ctx, ticketID, data)
	})
	if err != nil {
		return &IOError{Op: op, Key: ticketID, Err: err}
	}
	return nil
}

func (s *Store) retryKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.retry(ctx, func() error {
		var err error
		keys, err = s.kv.Keys(ctx)
		return err
	})
	return keys, err
}

// retry runs op, retrying once with backoff on failure. Git state never
// flows through here; only KV I/O is retried.
func (s *Store) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 1), ctx))
}
