package syncer

import (
	"context"
	"fmt"

	appLog "clubsync/internal/log"
)

// RunResult reports per-club success and failure counts for one
// orchestrated run.
type RunResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (r RunResult) String() string {
	return fmt.Sprintf("%d succeeded, %d failed", r.Succeeded, r.Failed)
}

// SyncAll runs a reconciliation cycle for every club in the store's
// roster that has a feed URL. One club's failure is logged and counted;
// the remaining clubs still sync. The serving-layer cache is dropped
// after the run so stale listings are not served past a sync.
func (e *Engine) SyncAll(ctx context.Context) (RunResult, error) {
	clubs, err := e.store.ListSyncableClubs(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("load club roster: %w", err)
	}

	var result RunResult
	for _, club := range clubs {
		if club.FeedURL == nil || *club.FeedURL == "" {
			continue
		}
		if _, serr := e.SyncClub(ctx, club.Name, *club.FeedURL); serr != nil {
			appLog.Error("club sync failed", serr, "club", club.Name)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	e.invalidate()
	appLog.Info("sync run complete", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// SyncRoster runs a cycle for every {name, url} pair in a roster file,
// upserting clubs as it goes. This is the bootstrap/seed path used when
// the club table has not been populated yet.
func (e *Engine) SyncRoster(ctx context.Context, path string) (RunResult, error) {
	roster, err := LoadRoster(path)
	if err != nil {
		return RunResult{}, err
	}
	appLog.Info("syncing from roster file", "path", path, "clubs", len(roster))

	var result RunResult
	for _, def := range roster {
		if _, serr := e.SyncClub(ctx, def.Name, def.URL); serr != nil {
			appLog.Error("club sync failed", serr, "club", def.Name)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	e.invalidate()
	appLog.Info("roster sync complete", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// SyncOne runs a single club's cycle on demand (operator-triggered) and
// invalidates the cache afterwards.
func (e *Engine) SyncOne(ctx context.Context, name, feedURL string) (ClubStats, error) {
	stats, err := e.SyncClub(ctx, name, feedURL)
	if err != nil {
		return stats, err
	}
	e.invalidate()
	return stats, nil
}

func (e *Engine) invalidate() {
	if e.cache != nil {
		e.cache.InvalidateAll()
	}
}
