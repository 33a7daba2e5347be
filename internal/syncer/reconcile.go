package syncer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubsync/internal/classify"
	"clubsync/internal/ics"
	appLog "clubsync/internal/log"
	"clubsync/internal/model"
	"clubsync/internal/store"
)

// Outcome is the engine's verdict for one feed entry.
type Outcome int

const (
	// OutcomeCreated: no club owned the UID; the syncing club claimed it.
	OutcomeCreated Outcome = iota
	// OutcomeRefreshedOwned: the syncing club owns the UID; all derived
	// fields were refreshed.
	OutcomeRefreshedOwned
	// OutcomeRefreshedOwnedPreservingEdits: owned, but manually edited;
	// only timing and RSVP metadata were refreshed.
	OutcomeRefreshedOwnedPreservingEdits
	// OutcomeCollaborationUpserted: another club owns the UID; a
	// collaboration row was ensured for the syncing club.
	OutcomeCollaborationUpserted
	// OutcomeSkippedError: this entry failed and was skipped; the rest
	// of the feed still processes.
	OutcomeSkippedError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeRefreshedOwned:
		return "refreshed"
	case OutcomeRefreshedOwnedPreservingEdits:
		return "refreshed-preserving-edits"
	case OutcomeCollaborationUpserted:
		return "collaboration-upserted"
	case OutcomeSkippedError:
		return "skipped-error"
	default:
		return "unknown"
	}
}

// Invalidator is the cache-invalidation hook into the serving layer.
type Invalidator interface {
	InvalidateAll()
}

// Engine runs the per-club reconciliation cycle and the cross-club
// orchestration. Clubs are always processed sequentially: the first
// lookup-then-create for a UID happens before any other club's lookup
// of that UID, which is what makes ownership claims race-free without
// a lock manager.
type Engine struct {
	store store.Store
	feeds FeedSource
	cache Invalidator

	now func() time.Time
}

// New builds an Engine. cache may be nil when no serving layer is
// attached (one-shot CLI runs).
func New(st store.Store, feeds FeedSource, cache Invalidator) *Engine {
	return &Engine{
		store: st,
		feeds: feeds,
		cache: cache,
		now:   time.Now,
	}
}

// ClubStats summarizes one club's reconciliation cycle.
type ClubStats struct {
	Created        int
	Refreshed      int
	Collaborations int
	Skipped        int
	Pruned         int
}

// SyncClub runs one full fetch-classify-reconcile-prune cycle for a
// single club, upserting the club row first. Any returned error means
// the whole cycle failed for this club; per-entry problems are absorbed
// into the stats instead.
func (e *Engine) SyncClub(ctx context.Context, name, feedURL string) (ClubStats, error) {
	var stats ClubStats

	club, err := e.store.UpsertClub(ctx, name, feedURL)
	if err != nil {
		return stats, err
	}

	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return stats, err
	}
	categoryIDs := make(map[string]uuid.UUID, len(categories))
	for _, cat := range categories {
		categoryIDs[strings.ToLower(cat.Name)] = cat.ID
	}

	entries, err := e.feeds.Entries(ctx, feedURL)
	if err != nil {
		return stats, err
	}

	// Seen accumulates every UID the feed presented with usable times,
	// regardless of how persistence went: a failed write must not turn
	// into a prune of a record the feed still contains.
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		outcome := e.reconcileEntry(ctx, club, entry, categoryIDs)
		seen[entry.UID] = true

		switch outcome {
		case OutcomeCreated:
			stats.Created++
		case OutcomeRefreshedOwned, OutcomeRefreshedOwnedPreservingEdits:
			stats.Refreshed++
		case OutcomeCollaborationUpserted:
			stats.Collaborations++
		case OutcomeSkippedError:
			stats.Skipped++
		}
	}

	pruned, err := e.prune(ctx, club, seen)
	if err != nil {
		appLog.Error("pruning failed", err, "club", club.Name)
	}
	stats.Pruned = pruned

	appLog.Info("club cycle complete",
		"club", club.Name,
		"created", stats.Created,
		"refreshed", stats.Refreshed,
		"collaborations", stats.Collaborations,
		"skipped", stats.Skipped,
		"pruned", stats.Pruned,
	)
	return stats, nil
}

// reconcileEntry decides, for one entry, whether it is new, a refresh of
// an owned record, or a collaboration with another club, and applies the
// decision. Failures are contained to the entry.
func (e *Engine) reconcileEntry(ctx context.Context, club model.Club, entry ics.Entry, categoryIDs map[string]uuid.UUID) Outcome {
	verdict := classify.Classify(entry.Summary, entry.Description)

	var categoryID *uuid.UUID
	if id, ok := categoryIDs[strings.ToLower(verdict.Category)]; ok {
		categoryID = &id
	}

	var rsvpLink *string
	if verdict.RSVPLink != "" {
		link := verdict.RSVPLink
		rsvpLink = &link
	}

	existing, err := e.store.FindEventByUID(ctx, entry.UID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// First sighting of this UID anywhere: the syncing club becomes
		// the primary owner.
		ev := model.Event{
			UID:          entry.UID,
			ClubID:       club.ID,
			Title:        entry.Summary,
			Description:  verdict.Description,
			Location:     entry.Location,
			StartTime:    entry.Start,
			EndTime:      entry.End,
			CategoryID:   categoryID,
			RequiresRSVP: verdict.RequiresRSVP,
			RSVPLink:     rsvpLink,
			LastSynced:   e.now(),
		}
		if cerr := e.store.CreateEvent(ctx, &ev); cerr != nil {
			appLog.Error("event insert failed", cerr, "uid", entry.UID, "club", club.Name)
			return OutcomeSkippedError
		}
		return OutcomeCreated

	case err != nil:
		appLog.Error("event lookup failed", err, "uid", entry.UID, "club", club.Name)
		return OutcomeSkippedError
	}

	if existing.ClubID == club.ID {
		// Refresh of an owned record. Manual edits protect the content
		// fields; timing and RSVP metadata always track the feed.
		upd := store.SyncUpdate{
			Start:        entry.Start,
			End:          entry.End,
			LastSynced:   e.now(),
			RequiresRSVP: verdict.RequiresRSVP,
			RSVPLink:     rsvpLink,
		}
		if !existing.ManuallyEdited {
			upd.IncludeContent = true
			upd.Title = entry.Summary
			upd.Description = verdict.Description
			upd.Location = entry.Location
			upd.CategoryID = categoryID
		}
		if uerr := e.store.ApplySyncUpdate(ctx, existing.ID, upd); uerr != nil {
			appLog.Error("event update failed", uerr, "uid", entry.UID, "club", club.Name)
			return OutcomeSkippedError
		}
		if existing.ManuallyEdited {
			return OutcomeRefreshedOwnedPreservingEdits
		}
		return OutcomeRefreshedOwned
	}

	// Another club owns this UID: record the syncing club as a
	// secondary collaborator without touching the owned fields.
	if cerr := e.store.UpsertCollaboration(ctx, existing.ID, club.ID); cerr != nil {
		appLog.Error("collaboration upsert failed", cerr, "uid", entry.UID, "club", club.Name)
		return OutcomeSkippedError
	}
	return OutcomeCollaborationUpserted
}

// prune deletes events owned by the club whose UID no longer appears in
// the feed. An empty seen set skips pruning for the cycle: a feed that
// parses to zero usable entries is far more likely a transient fetch or
// parse problem than a genuinely emptied calendar, and pruning on it
// would risk mass data loss. Deliberate conservative bias.
func (e *Engine) prune(ctx context.Context, club model.Club, seen map[string]bool) (int, error) {
	if len(seen) == 0 {
		appLog.Warn("feed produced no usable entries, skipping prune", "club", club.Name)
		return 0, nil
	}

	owned, err := e.store.ListEventsByClub(ctx, club.ID)
	if err != nil {
		return 0, err
	}

	var stale []uuid.UUID
	for _, ev := range owned {
		if !seen[ev.UID] {
			stale = append(stale, ev.ID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := e.store.DeleteEvents(ctx, stale); err != nil {
		return 0, err
	}
	return len(stale), nil
}
