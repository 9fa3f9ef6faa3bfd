package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsapi/internal/domain"
)

const (
	eventID   = "64b7f0c2a1b2c3d4e5f60799"
	creatorID = "64b7f0c2a1b2c3d4e5f60718"
)

var (
	eventDate = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	columns   = []string{"id", "name", "description", "date", "location", "category", "tags", "created_by", "attendees"}
)

func newRepo(t *testing.T) (*eventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &eventRepository{DB: db, now: func() time.Time { return fixedNow }}, mock
}

func eventRow(rows *sqlmock.Rows, id, name, attendees string) *sqlmock.Rows {
	return rows.AddRow(id, name, "Talks", eventDate, "Online", "conference", "{go,cloud}", creatorID, attendees)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO events (id, name, description, date, location, category, tags, created_by, attendees, created_at, updated_at)`)).
					WithArgs(sqlmock.AnyArg(), "GoConf", "Talks", eventDate, "Online", "conference", "{\"go\"}", creatorID, "{}", fixedNow).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			tt.mock(mock)

			e := domain.NewEvent("GoConf", "Talks", eventDate, "Online", "conference", []string{"go"}, creatorID)
			err := repo.Create(ctx, e)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, e.ID)
				return
			}
			require.NoError(t, err)
			assert.True(t, domain.IsValidID(e.ID))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, description, date, location, category, tags, created_by, attendees FROM events WHERE id = \$1`).
					WithArgs(eventID).
					WillReturnRows(eventRow(sqlmock.NewRows(columns), eventID, "GoConf", "{}"))
			},
		},
		{
			name: "no row returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE id = \$1`).WithArgs(eventID).WillReturnRows(sqlmock.NewRows(columns))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events WHERE id = \$1`).WithArgs(eventID).WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			tt.mock(mock)

			got, err := repo.GetByID(ctx, eventID)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, eventID, got.ID)
			assert.Equal(t, []string{"go", "cloud"}, got.Tags)
			assert.Equal(t, []string{}, got.Attendees)
			assert.Equal(t, creatorID, got.CreatedBy.ID)
			assert.Equal(t, eventDate, got.Date)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		filter domain.EventFilter
		query  string
		args   []any
	}{
		{
			name:   "newest",
			filter: domain.EventFilter{Sort: domain.SortNewest},
			query:  `FROM events ORDER BY date DESC, id ASC`,
		},
		{
			name:   "oldest",
			filter: domain.EventFilter{Sort: domain.SortOldest},
			query:  `FROM events ORDER BY date ASC, id ASC`,
		},
		{
			name:   "attendees with search",
			filter: domain.EventFilter{Search: "go%", Sort: domain.SortAttendees},
			query:  `FROM events WHERE strpos(lower(name), lower($1)) > 0 ORDER BY cardinality(attendees) DESC, id ASC`,
			args:   []any{"go%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			rows := sqlmock.NewRows(columns)
			eventRow(rows, eventID, "GoConf", "{"+creatorID+"}")
			exp := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if len(tt.args) > 0 {
				exp = exp.WithArgs(toDriverValues(tt.args)...)
			}
			exp.WillReturnRows(rows)

			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, []string{creatorID}, got[0].Attendees)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_List_Empty(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM events`).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background(), domain.EventFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	desc := "More talks"

	tests := []struct {
		name    string
		update  domain.EventUpdate
		args    []any
		rows    func() *sqlmock.Rows
		wantErr error
	}{
		{
			name:   "only name and description",
			update: domain.EventUpdate{Name: "GoConf 2", Description: &desc},
			args:   []any{eventID, "GoConf 2", desc, nil, nil, fixedNow},
			rows:   func() *sqlmock.Rows { return eventRow(sqlmock.NewRows(columns), eventID, "GoConf 2", "{}") },
		},
		{
			name:    "missing row",
			update:  domain.EventUpdate{Name: "x"},
			args:    []any{eventID, "x", nil, nil, nil, fixedNow},
			rows:    func() *sqlmock.Rows { return sqlmock.NewRows(columns) },
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			mock.ExpectQuery(`UPDATE events`).WithArgs(toDriverValues(tt.args)...).WillReturnRows(tt.rows())

			got, err := repo.Update(ctx, eventID, tt.update)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "GoConf 2", got.Name)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Delete(t *testing.T) {
	t.Run("returns removed row", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`DELETE FROM events WHERE id = \$1 RETURNING`).
			WithArgs(eventID).
			WillReturnRows(eventRow(sqlmock.NewRows(columns), eventID, "GoConf", "{}"))

		got, err := repo.Delete(context.Background(), eventID)
		require.NoError(t, err)
		assert.Equal(t, eventID, got.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`DELETE FROM events`).WithArgs(eventID).WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Delete(context.Background(), eventID)
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func toDriverValues(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = nullableArg{want: a}
	}
	return out
}

// nullableArg compares an expected argument, treating nil as SQL NULL.
type nullableArg struct {
	want any
}

func (a nullableArg) Match(v driver.Value) bool {
	if a.want == nil {
		return v == nil
	}
	if t, ok := a.want.(time.Time); ok {
		got, ok := v.(time.Time)
		return ok && got.Equal(t)
	}
	return v == a.want
}
