// Package store persists clubs, events, collaborations and categories.
// The sync engine and the serving layer share the same Store interface;
// production runs on PostgreSQL, tests on the in-memory implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"clubsync/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("store: record not found")

// SyncUpdate carries the fields a sync cycle may write to an existing
// owned event. Timing and RSVP metadata always refresh; the content
// fields are applied only when IncludeContent is set, which is how
// manual edits stay protected.
type SyncUpdate struct {
	Start        time.Time
	End          time.Time
	LastSynced   time.Time
	RequiresRSVP bool
	RSVPLink     *string

	IncludeContent bool
	Title          string
	Description    string
	Location       string
	CategoryID     *uuid.UUID
}

// EventContent is a user-directed content write from the serving layer.
// Applying it marks the event as manually edited.
type EventContent struct {
	Title       string
	Description string
	Location    string
	CategoryID  *uuid.UUID
}

type Store interface {
	// UpsertClub inserts a club by name or refreshes its feed URL.
	UpsertClub(ctx context.Context, name, feedURL string) (model.Club, error)

	// ListSyncableClubs returns every club with a non-null feed URL,
	// in roster (name) order.
	ListSyncableClubs(ctx context.Context) ([]model.Club, error)

	// ListClubs returns all clubs for the serving layer.
	ListClubs(ctx context.Context) ([]model.Club, error)

	// EnsureDefaultCategories seeds the default category rows if absent.
	EnsureDefaultCategories(ctx context.Context) error

	// ListCategories returns all configured categories.
	ListCategories(ctx context.Context) ([]model.EventCategory, error)

	// FindEventByUID looks up an event by external UID across all
	// clubs. Returns ErrNotFound when no club owns the UID yet.
	FindEventByUID(ctx context.Context, uid string) (model.Event, error)

	// CreateEvent inserts a new owned event.
	CreateEvent(ctx context.Context, ev *model.Event) error

	// ApplySyncUpdate atomically updates one owned event from a sync.
	ApplySyncUpdate(ctx context.Context, eventID uuid.UUID, upd SyncUpdate) error

	// SetEventContent applies a user-directed edit and sets the
	// manually_edited flag.
	SetEventContent(ctx context.Context, eventID uuid.UUID, content EventContent) error

	// ListEventsByClub returns the events owned by one club.
	ListEventsByClub(ctx context.Context, clubID uuid.UUID) ([]model.Event, error)

	// ListEvents returns all events with club, category and
	// collaboration associations populated, ordered by start time.
	ListEvents(ctx context.Context) ([]model.Event, error)

	// DeleteEvents removes events (and their collaborations) by id.
	DeleteEvents(ctx context.Context, ids []uuid.UUID) error

	// UpsertCollaboration records a UID collision between an event and
	// a non-owning club. Idempotent: re-observing an existing pair is a
	// no-op and never resets an approved status back to pending.
	UpsertCollaboration(ctx context.Context, eventID, clubID uuid.UUID) error
}
