package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"eventsapi/internal/domain"
)

// dateLayouts are the accepted textual forms of an event date, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var categoryRule = "oneof=" + strings.Join(domain.Categories, " ")

type eventService struct {
	eventRepo      domain.EventRepository
	users          domain.UserDirectory
	publisher      domain.EventPublisher
	validate       *validator.Validate
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository,
	users domain.UserDirectory,
	publisher domain.EventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		users:          users,
		publisher:      publisher,
		validate:       validator.New(),
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, input domain.CreateEventInput, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return nil, domain.ErrPermissionDenied
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Date = strings.TrimSpace(input.Date)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	if err := s.validate.Struct(input); err != nil {
		return nil, domain.ErrRequiredFields
	}
	if err := s.validate.Var(input.Category, categoryRule); err != nil {
		return nil, domain.ErrInvalidCategory
	}
	date, err := parseEventDate(input.Date)
	if err != nil {
		return nil, err
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = domain.DefaultLocation
	}

	event := domain.NewEvent(input.Name, input.Description, date, location, input.Category, domain.NormalizeTags(input.Tags), callerID)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.publish(ctx, domain.EventCreated, event, callerID)
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Search = strings.TrimSpace(filter.Search)
	filter.Sort = domain.ParseSortKey(string(filter.Sort))

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	if err := s.resolveCreators(ctx, events...); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	id = strings.TrimSpace(id)
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.resolveCreators(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id string, patch domain.EventPatch, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	id = strings.TrimSpace(id)
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	name, ok := patch.EffectiveName()
	if !ok {
		return nil, domain.ErrNameRequired
	}

	update := domain.EventUpdate{
		Name:        name,
		Description: patch.Description,
		Category:    patch.Category,
	}
	if patch.Date != nil {
		date, err := parseEventDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		update.Date = &date
	}

	updated, err := s.eventRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.publish(ctx, domain.EventUpdated, updated, callerID)
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrIDRequired
	}
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	deleted, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	s.publish(ctx, domain.EventDeleted, deleted, "")
	return deleted, nil
}

func (s *eventService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.Ping(ctx)
}

// resolveCreators fills CreatedBy.Name on each event with one directory lookup.
func (s *eventService) resolveCreators(ctx context.Context, events ...*domain.Event) error {
	if s.users == nil || len(events) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.CreatedBy.ID]; ok || e.CreatedBy.ID == "" {
			continue
		}
		seen[e.CreatedBy.ID] = struct{}{}
		ids = append(ids, e.CreatedBy.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve creators: %w", err)
	}
	for _, e := range events {
		e.CreatedBy.Name = names[e.CreatedBy.ID]
	}
	return nil
}

// publish emits a lifecycle notification. Delivery failures are logged and never fail the caller.
func (s *eventService) publish(ctx context.Context, kind domain.EventChangeType, event *domain.Event, actorID string) {
	if s.publisher == nil {
		return
	}
	change := domain.EventChange{
		ID:         uuid.NewString(),
		Type:       kind,
		EventID:    event.ID,
		ActorID:    actorID,
		OccurredAt: s.now().UTC(),
		Event:      event,
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "publish event change failed", "type", kind, "event_id", event.ID, "err", err)
	}
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.ErrInvalidDate
}
