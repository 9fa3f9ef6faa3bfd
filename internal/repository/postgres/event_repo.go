package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventsapi/internal/domain"
)

const eventColumns = `id, name, description, date, location, category, tags, created_by, attendees`

type eventRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB:  db,
		now: time.Now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var tags, attendees pq.StringArray
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.Category, &tags, &e.CreatedBy.ID, &attendees); err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	e.Tags = nonNil(tags)
	e.Attendees = nonNil(attendees)
	return e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, name, description, date, location, category, tags, created_by, attendees, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	id := domain.NewID()
	now := r.now().UTC()
	_, err := r.DB.ExecContext(ctx, query,
		id, e.Name, e.Description, e.Date, e.Location, e.Category,
		pq.Array(nonNil(e.Tags)), e.CreatedBy.ID, pq.Array(nonNil(e.Attendees)), now,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID = id
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List matches the search text as a literal substring; strpos avoids LIKE wildcards.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any
	if filter.Search != "" {
		query += ` WHERE strpos(lower(name), lower($1)) > 0`
		args = append(args, filter.Search)
	}
	query += ` ORDER BY ` + orderBy(filter.Sort)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func orderBy(sort domain.SortKey) string {
	switch sort {
	case domain.SortOldest:
		return `date ASC, id ASC`
	case domain.SortAttendees:
		return `cardinality(attendees) DESC, id ASC`
	default:
		return `date DESC, id ASC`
	}
}

func (r *eventRepository) Update(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	query := `
		UPDATE events
		SET name = $2,
			description = COALESCE($3, description),
			date = COALESCE($4, date),
			category = COALESCE($5, category),
			updated_at = $6
		WHERE id = $1
		RETURNING ` + eventColumns

	var desc, category sql.NullString
	var date sql.NullTime
	if update.Description != nil {
		desc = sql.NullString{String: *update.Description, Valid: true}
	}
	if update.Category != nil {
		category = sql.NullString{String: *update.Category, Valid: true}
	}
	if update.Date != nil {
		date = sql.NullTime{Time: *update.Date, Valid: true}
	}
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, update.Name, desc, date, category, r.now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	query := `DELETE FROM events WHERE id = $1 RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
