package domain

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event categories.
const (
	CategoryConference = "conference"
	CategoryWorkshop   = "workshop"
	CategoryWebinar    = "webinar"
	CategoryMeetup     = "meetup"
)

// Categories lists every accepted category in display order.
var Categories = []string{CategoryConference, CategoryWorkshop, CategoryWebinar, CategoryMeetup}

// DefaultLocation is stored when an event is created without a location.
const DefaultLocation = "Online"

// IsValidCategory reports whether c is one of Categories. The comparison is case-sensitive;
// callers normalize first.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidID reports whether id has the store identifier format (24 hex characters).
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// NewID returns a fresh identifier in the store format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// Creator references the identity that created an event. Name is filled only when the
// display name was resolved through a UserDirectory.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Event represents one schedulable happening.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	CreatedBy   Creator   `json:"createdBy"`
	Attendees   []string  `json:"attendees"`
}

// NewEvent returns a new Event owned by createdBy with no attendees. ID is set by the repository on create.
func NewEvent(name, description string, date time.Time, location, category string, tags []string, createdBy string) *Event {
	if tags == nil {
		tags = []string{}
	}
	return &Event{
		Name:        name,
		Description: description,
		Date:        date,
		Location:    location,
		Category:    category,
		Tags:        tags,
		CreatedBy:   Creator{ID: createdBy},
		Attendees:   []string{},
	}
}

// SortKey selects the ordering of List results.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortAttendees SortKey = "attendees"
)

// ParseSortKey maps a query value to a SortKey. Unknown or empty values fall back to SortNewest.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.TrimSpace(s)) {
	case SortOldest:
		return SortOldest
	case SortAttendees:
		return SortAttendees
	default:
		return SortNewest
	}
}

// EventFilter restricts and orders List results.
type EventFilter struct {
	// Search is matched as a literal, case-insensitive substring of the event name.
	Search string
	Sort   SortKey
}

// EventUpdate is the set of fields an update may change. Nil pointers leave the stored value untouched.
type EventUpdate struct {
	Name        string
	Description *string
	Date        *time.Time
	Category    *string
}

// CreateEventInput is the client-supplied payload for creating an event.
type CreateEventInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Location    string   `json:"location"`
	Category    string   `json:"category" validate:"required"`
	Tags        TagInput `json:"tags" swaggertype:"array,string"`
}

// EventPatch is the client-supplied payload for updating an event. The new name may arrive
// under either name or eventName and is only accepted when it is a JSON string.
type EventPatch struct {
	Name        any     `json:"name" swaggertype:"string"`
	EventName   any     `json:"eventName" swaggertype:"string"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Category    *string `json:"category"`
}

// EffectiveName returns the first of EventName, Name that is a string and non-empty after
// trimming, trimmed. ok is false when neither qualifies.
func (p EventPatch) EffectiveName() (name string, ok bool) {
	for _, v := range []any{p.EventName, p.Name} {
		s, isString := v.(string)
		if !isString {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Update(ctx context.Context, id string, update EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) (*Event, error)
	Ping(ctx context.Context) error
}

// EventService defines the business logic for events.
type EventService interface {
	Create(ctx context.Context, input CreateEventInput, callerID string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch, callerID string) (*Event, error)
	Delete(ctx context.Context, id string) (*Event, error)
	Ping(ctx context.Context) error
}
