// Package model holds the persistent domain types shared by the sync
// engine and the serving layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Collaboration status values. Status gates UI visibility only; the
// collaboration row itself is the record of the UID collision.
const (
	CollabStatusPending  = "pending"
	CollabStatusApproved = "approved"
)

// CollabRoleSecondary marks every collaborator that is not the owning
// club. The owner is not stored as a collaboration row.
const CollabRoleSecondary = "secondary"

// Default category names. The classifier returns one of these; the
// reconciler resolves it to a category id (or nil when unconfigured).
const (
	CategoryEvents      = "Events"
	CategoryMeetings    = "Meetings"
	CategoryOfficeHours = "Office Hours"
	CategoryOther       = "Other"
)

// Club is a publishing organization. A club with a nil FeedURL is never
// synced.
type Club struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name"`
	FeedURL *string   `gorm:"column:feed_url;type:text" json:"feed_url"`
	Color   string    `gorm:"column:color;type:varchar(32)" json:"color"`
	OrgType string    `gorm:"column:org_type;type:varchar(64)" json:"org_type"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Club) TableName() string { return "clubs" }

// Event is the reconciliation unit. UID is the feed-assigned identifier:
// unique within the owning club's feed, collidable across clubs. The
// first club observed to sync a UID owns the row; later clubs observing
// the same UID become collaborators.
type Event struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UID    string    `gorm:"column:uid;type:text;not null;index:idx_events_uid" json:"uid"`
	ClubID uuid.UUID `gorm:"column:club_id;type:uuid;not null;index:idx_events_club_id" json:"club_id"`

	Title       string    `gorm:"column:title;type:text;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Location    string    `gorm:"column:location;type:text" json:"location"`
	StartTime   time.Time `gorm:"column:start_time;type:timestamptz;not null" json:"start_time"`
	EndTime     time.Time `gorm:"column:end_time;type:timestamptz;not null" json:"end_time"`

	CategoryID   *uuid.UUID `gorm:"column:category_id;type:uuid" json:"category_id"`
	RequiresRSVP bool       `gorm:"column:requires_rsvp;not null;default:false" json:"requires_rsvp"`
	RSVPLink     *string    `gorm:"column:rsvp_link;type:text" json:"rsvp_link"`

	// ManuallyEdited protects title, description, location and category
	// from being overwritten by subsequent syncs. Timing and RSVP
	// metadata still refresh.
	ManuallyEdited bool      `gorm:"column:manually_edited;not null;default:false" json:"manually_edited"`
	LastSynced     time.Time `gorm:"column:last_synced;type:timestamptz" json:"last_synced"`

	Club           *Club           `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"club,omitempty"`
	Category       *EventCategory  `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Collaborations []Collaboration `gorm:"foreignKey:EventID" json:"collaborations,omitempty"`
}

func (Event) TableName() string { return "events" }

// Collaboration links an event to a non-owning club whose feed produced
// the same UID. Exactly one row per (event, club) pair.
type Collaboration struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EventID uuid.UUID `gorm:"column:event_id;type:uuid;not null;uniqueIndex:ux_collab_event_club" json:"event_id"`
	ClubID  uuid.UUID `gorm:"column:club_id;type:uuid;not null;uniqueIndex:ux_collab_event_club" json:"club_id"`
	Role    string    `gorm:"column:role;type:varchar(16);not null;default:secondary" json:"role"`
	Status  string    `gorm:"column:status;type:varchar(16);not null;default:pending" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
	Club  *Club  `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"club,omitempty"`
}

func (Collaboration) TableName() string { return "collaborations" }

// EventCategory is an administratively managed category. Deleting one
// must not delete events; the reference is nulled and presentation
// falls back to "Other".
type EventCategory struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
}

func (EventCategory) TableName() string { return "event_categories" }
