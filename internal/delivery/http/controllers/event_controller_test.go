package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsapi/internal/delivery/http/helpers"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	eventID      = "64b7f0c2a1b2c3d4e5f60799"
	memberID     = "64b7f0c2a1b2c3d4e5f60718"
	memberToken  = "member-token"
	guestToken   = "guest-token"
	invalidToken = "expired-token"
)

// fakeVerifier accepts a fixed set of tokens.
type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (*domain.Identity, error) {
	switch token {
	case memberToken:
		return &domain.Identity{ID: memberID, Role: "user"}, nil
	case guestToken:
		return &domain.Identity{ID: "64b7f0c2a1b2c3d4e5f60700", Role: domain.RoleGuest}, nil
	default:
		return nil, domain.ErrAuthInvalid
	}
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event   *domain.Event
	events  []*domain.Event
	err     error
	calls   int
	lastID  string
	lastIn  domain.CreateEventInput
	lastFlt domain.EventFilter
	lastPat domain.EventPatch
	caller  string
}

func (f *fakeEventService) Create(_ context.Context, input domain.CreateEventInput, callerID string) (*domain.Event, error) {
	f.calls++
	f.lastIn, f.caller = input, callerID
	return f.event, f.err
}

func (f *fakeEventService) List(_ context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.calls++
	f.lastFlt = filter
	return f.events, f.err
}

func (f *fakeEventService) GetByID(_ context.Context, id string) (*domain.Event, error) {
	f.calls++
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) Update(_ context.Context, id string, patch domain.EventPatch, callerID string) (*domain.Event, error) {
	f.calls++
	f.lastID, f.lastPat, f.caller = id, patch, callerID
	return f.event, f.err
}

func (f *fakeEventService) Delete(_ context.Context, id string) (*domain.Event, error) {
	f.calls++
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) Ping(context.Context) error { return f.err }

// newTestRouter mounts the controller the same way the application router does.
func newTestRouter(svc domain.EventService) http.Handler {
	ctrl := NewEventController(testLogger, svc)
	editor := chi.Chain(middleware.RequireAuth(fakeVerifier{}, testLogger), middleware.RequireEventEditor)
	r := chi.NewRouter()
	r.Route("/events", func(r chi.Router) {
		r.Get("/", ctrl.ListEvents)
		r.With(editor...).Post("/create", ctrl.CreateEvent)
		r.Get("/{id}", ctrl.GetEvent)
		r.With(editor...).Put("/{id}", ctrl.UpdateEvent)
		r.With(editor...).Delete("/{id}", ctrl.DeleteEvent)
	})
	return r
}

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:          eventID,
		Name:        "GoConf",
		Description: "Talks",
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:    domain.DefaultLocation,
		Category:    domain.CategoryConference,
		Tags:        []string{"go"},
		CreatedBy:   domain.Creator{ID: memberID, Name: "Ada"},
		Attendees:   []string{},
	}
}

func do(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			buf = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			buf = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, target, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) helpers.ErrorResponse {
	t.Helper()
	var body helpers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestEventController_CreateEvent(t *testing.T) {
	payload := map[string]any{
		"name": "GoConf", "description": "Talks", "date": "2025-06-01",
		"category": "Conference", "tags": "go, cloud",
	}

	t.Run("member creates event", func(t *testing.T) {
		svc := &fakeEventService{event: sampleEvent()}
		rec := do(t, newTestRouter(svc), http.MethodPost, "/events/create", memberToken, payload)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body CreateEventResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, MsgEventCreated, body.Message)
		require.NotNil(t, body.Event)
		assert.Equal(t, eventID, body.Event.ID)
		assert.Equal(t, memberID, svc.caller)
		assert.Equal(t, "Conference", svc.lastIn.Category)
		assert.Equal(t, domain.TagsDelimited, svc.lastIn.Tags.Kind)
	})

	tests := []struct {
		name        string
		token       string
		body        any
		svcErr      error
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{name: "no token", body: payload, wantStatus: http.StatusUnauthorized, wantMessage: middleware.MsgNoToken},
		{name: "rejected token", token: invalidToken, body: payload, wantStatus: http.StatusUnauthorized, wantMessage: middleware.MsgTokenFailed},
		{name: "guest", token: guestToken, body: payload, wantStatus: http.StatusForbidden, wantMessage: middleware.MsgGuestsForbidden},
		{name: "malformed json", token: memberToken, body: `{"name":`, wantStatus: http.StatusBadRequest, wantMessage: "invalid request body"},
		{name: "missing fields", token: memberToken, body: map[string]any{"name": "x"}, svcErr: domain.ErrRequiredFields, wantStatus: http.StatusBadRequest, wantMessage: "required fields missing", wantCalls: 1},
		{name: "invalid category", token: memberToken, body: payload, svcErr: domain.ErrInvalidCategory, wantStatus: http.StatusBadRequest, wantMessage: "invalid category", wantCalls: 1},
		{name: "store failure", token: memberToken, body: payload, svcErr: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantMessage: "Server Error", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.svcErr}
			rec := do(t, newTestRouter(svc), http.MethodPost, "/events/create", tt.token, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Message)
			assert.Equal(t, tt.wantCalls, svc.calls)
		})
	}
}

func TestEventController_CreateEvent_ServerErrorCarriesDetail(t *testing.T) {
	svc := &fakeEventService{err: errors.New("connection reset")}
	rec := do(t, newTestRouter(svc), http.MethodPost, "/events/create", memberToken, map[string]any{})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "connection reset", body.Error)
}

func TestEventController_ListEvents(t *testing.T) {
	t.Run("returns array and forwards query", func(t *testing.T) {
		svc := &fakeEventService{events: []*domain.Event{sampleEvent()}}
		rec := do(t, newTestRouter(svc), http.MethodGet, "/events?search=go&sort=attendees", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var events []domain.Event
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
		require.Len(t, events, 1)
		assert.Equal(t, "Ada", events[0].CreatedBy.Name)
		assert.Equal(t, "go", svc.lastFlt.Search)
		assert.Equal(t, domain.SortAttendees, svc.lastFlt.Sort)
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		svc := &fakeEventService{events: []*domain.Event{}}
		rec := do(t, newTestRouter(svc), http.MethodGet, "/events", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		svc := &fakeEventService{err: errors.New("boom")}
		rec := do(t, newTestRouter(svc), http.MethodGet, "/events", "", nil)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "Error fetching events", body.Message)
		assert.Equal(t, "boom", body.Error)
	})
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		event       *domain.Event
		svcErr      error
		wantStatus  int
		wantMessage string
	}{
		{name: "found", id: eventID, event: sampleEvent(), wantStatus: http.StatusOK},
		{name: "malformed id", id: "123", svcErr: domain.ErrInvalidID, wantStatus: http.StatusBadRequest, wantMessage: "invalid id format"},
		{name: "not found", id: eventID, svcErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantMessage: MsgEventNotFound},
		{name: "store failure", id: eventID, svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMessage: "Error fetching event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{event: tt.event, err: tt.svcErr}
			rec := do(t, newTestRouter(svc), http.MethodGet, "/events/"+tt.id, "", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.id, svc.lastID)
			if tt.wantStatus == http.StatusOK {
				var got domain.Event
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, eventID, got.ID)
				return
			}
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Message)
		})
	}
}

func TestEventController_UpdateEvent(t *testing.T) {
	t.Run("member updates event", func(t *testing.T) {
		updated := sampleEvent()
		updated.Name = "GoConf 2"
		svc := &fakeEventService{event: updated}
		rec := do(t, newTestRouter(svc), http.MethodPut, "/events/"+eventID, memberToken, `{"eventName":"GoConf 2","category":"Meetup"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body UpdateEventResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, MsgEventUpdated, body.Message)
		require.NotNil(t, body.UpdatedEvent)
		assert.Equal(t, "GoConf 2", body.UpdatedEvent.Name)
		assert.Equal(t, eventID, svc.lastID)
		assert.Equal(t, "GoConf 2", svc.lastPat.EventName)
		require.NotNil(t, svc.lastPat.Category)
		assert.Equal(t, "Meetup", *svc.lastPat.Category)
	})

	tests := []struct {
		name        string
		token       string
		svcErr      error
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized, wantMessage: middleware.MsgNoToken},
		{name: "guest", token: guestToken, wantStatus: http.StatusForbidden, wantMessage: middleware.MsgGuestsForbidden},
		{name: "name missing", token: memberToken, svcErr: domain.ErrNameRequired, wantStatus: http.StatusBadRequest, wantMessage: "name required", wantCalls: 1},
		{name: "not found", token: memberToken, svcErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantMessage: MsgEventNotFound, wantCalls: 1},
		{name: "store failure", token: memberToken, svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMessage: "Error updating event", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.svcErr}
			rec := do(t, newTestRouter(svc), http.MethodPut, "/events/"+eventID, tt.token, `{"name":"x"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Message)
			assert.Equal(t, tt.wantCalls, svc.calls)
		})
	}
}

func TestEventController_DeleteEvent(t *testing.T) {
	t.Run("member deletes event", func(t *testing.T) {
		svc := &fakeEventService{event: sampleEvent()}
		rec := do(t, newTestRouter(svc), http.MethodDelete, "/events/"+eventID, memberToken, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body DeleteEventResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, MsgEventDeleted, body.Message)
		require.NotNil(t, body.Event)
		assert.Equal(t, eventID, body.Event.ID)
	})

	tests := []struct {
		name        string
		token       string
		id          string
		svcErr      error
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{name: "no token", id: eventID, wantStatus: http.StatusUnauthorized, wantMessage: middleware.MsgNoToken},
		{name: "guest leaves event untouched", token: guestToken, id: eventID, wantStatus: http.StatusForbidden, wantMessage: middleware.MsgGuestsForbidden},
		{name: "malformed id", token: memberToken, id: "not-an-id", svcErr: domain.ErrInvalidID, wantStatus: http.StatusBadRequest, wantMessage: "invalid id format", wantCalls: 1},
		{name: "not found", token: memberToken, id: eventID, svcErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantMessage: MsgEventNotFound, wantCalls: 1},
		{name: "store failure", token: memberToken, id: eventID, svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMessage: "Internal server error", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.svcErr}
			rec := do(t, newTestRouter(svc), http.MethodDelete, "/events/"+tt.id, tt.token, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec).Message)
			assert.Equal(t, tt.wantCalls, svc.calls)
		})
	}
}
