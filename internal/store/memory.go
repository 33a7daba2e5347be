package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"clubsync/internal/model"
)

// Memory is an in-memory Store used by tests and local development.
// Insertion order is preserved so lookups behave like the production
// store's "first writer wins" semantics.
type Memory struct {
	mu sync.RWMutex

	clubs      []model.Club
	categories []model.EventCategory
	events     []model.Event
	collabs    []model.Collaboration
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) UpsertClub(_ context.Context, name, feedURL string) (model.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clubs {
		if s.clubs[i].Name == name {
			if feedURL != "" {
				url := feedURL
				s.clubs[i].FeedURL = &url
			}
			return s.clubs[i], nil
		}
	}

	url := feedURL
	club := model.Club{ID: uuid.New(), Name: name, FeedURL: &url}
	s.clubs = append(s.clubs, club)
	return club, nil
}

func (s *Memory) ListSyncableClubs(_ context.Context) ([]model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		if c.FeedURL != nil && *c.FeedURL != "" {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) ListClubs(_ context.Context) ([]model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]model.Club(nil), s.clubs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) EnsureDefaultCategories(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := []string{
		model.CategoryEvents,
		model.CategoryMeetings,
		model.CategoryOfficeHours,
		model.CategoryOther,
	}
	for _, name := range defaults {
		if s.findCategoryLocked(name) == nil {
			s.categories = append(s.categories, model.EventCategory{ID: uuid.New(), Name: name})
		}
	}
	return nil
}

func (s *Memory) findCategoryLocked(name string) *model.EventCategory {
	for i := range s.categories {
		if strings.EqualFold(s.categories[i].Name, name) {
			return &s.categories[i]
		}
	}
	return nil
}

func (s *Memory) ListCategories(_ context.Context) ([]model.EventCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.EventCategory(nil), s.categories...), nil
}

func (s *Memory) FindEventByUID(_ context.Context, uid string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ev := range s.events {
		if ev.UID == uid {
			return ev, nil
		}
	}
	return model.Event{}, ErrNotFound
}

func (s *Memory) CreateEvent(_ context.Context, ev *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	s.events = append(s.events, *ev)
	return nil
}

func (s *Memory) ApplySyncUpdate(_ context.Context, eventID uuid.UUID, upd SyncUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != eventID {
			continue
		}
		s.events[i].StartTime = upd.Start
		s.events[i].EndTime = upd.End
		s.events[i].LastSynced = upd.LastSynced
		s.events[i].RequiresRSVP = upd.RequiresRSVP
		s.events[i].RSVPLink = upd.RSVPLink
		if upd.IncludeContent {
			s.events[i].Title = upd.Title
			s.events[i].Description = upd.Description
			s.events[i].Location = upd.Location
			s.events[i].CategoryID = upd.CategoryID
		}
		return nil
	}
	return ErrNotFound
}

func (s *Memory) SetEventContent(_ context.Context, eventID uuid.UUID, content EventContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != eventID {
			continue
		}
		s.events[i].Title = content.Title
		s.events[i].Description = content.Description
		s.events[i].Location = content.Location
		s.events[i].CategoryID = content.CategoryID
		s.events[i].ManuallyEdited = true
		return nil
	}
	return ErrNotFound
}

func (s *Memory) ListEventsByClub(_ context.Context, clubID uuid.UUID) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Event
	for _, ev := range s.events {
		if ev.ClubID == clubID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *Memory) ListEvents(_ context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]model.Event(nil), s.events...)
	for i := range out {
		out[i].Club = s.clubByIDLocked(out[i].ClubID)
		out[i].Category = s.categoryByIDLocked(out[i].CategoryID)
		for _, c := range s.collabs {
			if c.EventID == out[i].ID {
				c.Club = s.clubByIDLocked(c.ClubID)
				out[i].Collaborations = append(out[i].Collaborations, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Memory) clubByIDLocked(id uuid.UUID) *model.Club {
	for i := range s.clubs {
		if s.clubs[i].ID == id {
			club := s.clubs[i]
			return &club
		}
	}
	return nil
}

func (s *Memory) categoryByIDLocked(id *uuid.UUID) *model.EventCategory {
	if id == nil {
		return nil
	}
	for i := range s.categories {
		if s.categories[i].ID == *id {
			cat := s.categories[i]
			return &cat
		}
	}
	return nil
}

func (s *Memory) DeleteEvents(_ context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := s.events[:0]
	for _, ev := range s.events {
		if !drop[ev.ID] {
			kept = append(kept, ev)
		}
	}
	s.events = kept

	keptCollabs := s.collabs[:0]
	for _, c := range s.collabs {
		if !drop[c.EventID] {
			keptCollabs = append(keptCollabs, c)
		}
	}
	s.collabs = keptCollabs
	return nil
}

func (s *Memory) UpsertCollaboration(_ context.Context, eventID, clubID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collabs {
		if c.EventID == eventID && c.ClubID == clubID {
			// Existing pair stays untouched, approved or not.
			return nil
		}
	}
	s.collabs = append(s.collabs, model.Collaboration{
		ID:      uuid.New(),
		EventID: eventID,
		ClubID:  clubID,
		Role:    model.CollabRoleSecondary,
		Status:  model.CollabStatusPending,
	})
	return nil
}

// Collaborations exposes the raw collaboration rows. Tests use this to
// assert idempotence and status preservation.
func (s *Memory) Collaborations() []model.Collaboration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Collaboration(nil), s.collabs...)
}

// ApproveCollaboration flips a pair to approved, standing in for the
// admin approval flow that lives in the serving layer.
func (s *Memory) ApproveCollaboration(eventID, clubID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.collabs {
		if s.collabs[i].EventID == eventID && s.collabs[i].ClubID == clubID {
			s.collabs[i].Status = model.CollabStatusApproved
		}
	}
}
