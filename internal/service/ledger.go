package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mywallet/mywallet/internal/metrics"
	"github.com/mywallet/mywallet/internal/model"
	"github.com/mywallet/mywallet/internal/repository"
)

const (
	maxDescriptionLength = 255
	maxTypeLength        = 50
)

// EntryStore persists ledger entries keyed by owner.
// DeleteEntry must only remove an entry owned by userID.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *model.Entry) error
	ListEntriesByUser(ctx context.Context, userID string) ([]*model.Entry, error)
	DeleteEntry(ctx context.Context, id, userID string) error
}

// LedgerService handles ledger entries on behalf of an authenticated user.
// Every method takes the user ID resolved from the caller's session.
type LedgerService struct {
	entries EntryStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(entries EntryStore, recorder metrics.Recorder) *LedgerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LedgerService{
		entries: entries,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateEntryInput defines input for recording an entry.
// Value is the decimal text as received; empty means absent.
// Mistyped names string fields whose request value was not a string.
type CreateEntryInput struct {
	Description string
	Value       string
	Type        string
	Mistyped    []string
}

// CreateEntry records an entry owned by userID, stamped with today's day/month.
func (s *LedgerService) CreateEntry(ctx context.Context, userID string, input CreateEntryInput) (*model.Entry, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	description := strings.TrimSpace(input.Description)
	typ := strings.TrimSpace(input.Type)

	v := &validator{}
	if v.text("description", description, input.Mistyped) {
		v.maxLen("description", description, maxDescriptionLength)
	}
	value, _ := v.amount("value", input.Value)
	if v.text("type", typ, input.Mistyped) {
		v.maxLen("type", typ, maxTypeLength)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	now := s.now()
	entry := &model.Entry{
		ID:          ulid.Make().String(),
		Day:         now.Local().Format(model.DayLayout),
		Description: description,
		Value:       value,
		Type:        typ,
		UserID:      userID,
		CreatedAt:   now.UTC(),
	}

	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.metrics.IncEntryCreated()
	return entry, nil
}

// ListEntries returns only the entries owned by userID, newest first.
func (s *LedgerService) ListEntries(ctx context.Context, userID string) ([]*model.Entry, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	entries, err := s.entries.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes entryID if userID owns it. Entries that do not exist
// and entries owned by someone else both yield ErrEntryNotFound.
func (s *LedgerService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if entryID == "" {
		return ErrEntryNotFound
	}

	if err := s.entries.DeleteEntry(ctx, entryID, userID); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	s.metrics.IncEntryDeleted()
	return nil
}

// Summary totals the caller's income and expense entries.
func (s *LedgerService) Summary(ctx context.Context, userID string) (*model.Summary, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := model.Summarize(entries)
	return &summary, nil
}
