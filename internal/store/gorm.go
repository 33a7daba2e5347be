package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clubsync/internal/model"
)

// gormStore is the PostgreSQL-backed Store.
type gormStore struct {
	db *gorm.DB
}

// Connect opens the database and migrates the schema.
func Connect(dsn string) (Store, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Club{},
		&model.EventCategory{},
		&model.Event{},
		&model.Collaboration{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &gormStore{db: db}, nil
}

func (s *gormStore) UpsertClub(ctx context.Context, name, feedURL string) (model.Club, error) {
	var club model.Club
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&club).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		club = model.Club{
			ID:      uuid.New(),
			Name:    name,
			FeedURL: &feedURL,
		}
		if cerr := s.db.WithContext(ctx).Create(&club).Error; cerr != nil {
			return model.Club{}, cerr
		}
		return club, nil
	case err != nil:
		return model.Club{}, err
	}

	if feedURL != "" && (club.FeedURL == nil || *club.FeedURL != feedURL) {
		if uerr := s.db.WithContext(ctx).Model(&club).Update("feed_url", feedURL).Error; uerr != nil {
			return model.Club{}, uerr
		}
		club.FeedURL = &feedURL
	}
	return club, nil
}

func (s *gormStore) ListSyncableClubs(ctx context.Context) ([]model.Club, error) {
	var clubs []model.Club
	err := s.db.WithContext(ctx).
		Where("feed_url IS NOT NULL AND feed_url <> ''").
		Order("name asc").
		Find(&clubs).Error
	return clubs, err
}

func (s *gormStore) ListClubs(ctx context.Context) ([]model.Club, error) {
	var clubs []model.Club
	err := s.db.WithContext(ctx).Order("name asc").Find(&clubs).Error
	return clubs, err
}

func (s *gormStore) EnsureDefaultCategories(ctx context.Context) error {
	defaults := []string{
		model.CategoryEvents,
		model.CategoryMeetings,
		model.CategoryOfficeHours,
		model.CategoryOther,
	}
	for _, name := range defaults {
		cat := model.EventCategory{ID: uuid.New(), Name: name}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&cat).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *gormStore) ListCategories(ctx context.Context) ([]model.EventCategory, error) {
	var cats []model.EventCategory
	err := s.db.WithContext(ctx).Order("name asc").Find(&cats).Error
	return cats, err
}

func (s *gormStore) FindEventByUID(ctx context.Context, uid string) (model.Event, error) {
	var ev model.Event
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Event{}, ErrNotFound
	}
	return ev, err
}

func (s *gormStore) CreateEvent(ctx context.Context, ev *model.Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(ev).Error
}

func (s *gormStore) ApplySyncUpdate(ctx context.Context, eventID uuid.UUID, upd SyncUpdate) error {
	// A single UPDATE keeps the write atomic even if the process dies
	// mid-cycle.
	updates := map[string]any{
		"start_time":    upd.Start,
		"end_time":      upd.End,
		"last_synced":   upd.LastSynced,
		"requires_rsvp": upd.RequiresRSVP,
		"rsvp_link":     upd.RSVPLink,
	}
	if upd.IncludeContent {
		updates["title"] = upd.Title
		updates["description"] = upd.Description
		updates["location"] = upd.Location
		updates["category_id"] = upd.CategoryID
	}
	return s.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", eventID).
		Updates(updates).Error
}

func (s *gormStore) SetEventContent(ctx context.Context, eventID uuid.UUID, content EventContent) error {
	return s.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]any{
			"title":           content.Title,
			"description":     content.Description,
			"location":        content.Location,
			"category_id":     content.CategoryID,
			"manually_edited": true,
		}).Error
}

func (s *gormStore) ListEventsByClub(ctx context.Context, clubID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).Find(&events).Error
	return events, err
}

func (s *gormStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.db.WithContext(ctx).
		Preload("Club").
		Preload("Category").
		Preload("Collaborations.Club").
		Order("start_time asc").
		Find(&events).Error
	return events, err
}

func (s *gormStore) DeleteEvents(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id IN ?", ids).Delete(&model.Collaboration{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.Event{}).Error
	})
}

func (s *gormStore) UpsertCollaboration(ctx context.Context, eventID, clubID uuid.UUID) error {
	collab := model.Collaboration{
		ID:      uuid.New(),
		EventID: eventID,
		ClubID:  clubID,
		Role:    model.CollabRoleSecondary,
		Status:  model.CollabStatusPending,
	}
	// DoNothing on conflict: an already-approved pair must not be reset
	// to pending by the next sighting.
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "club_id"}},
			DoNothing: true,
		}).
		Create(&collab).Error
}
