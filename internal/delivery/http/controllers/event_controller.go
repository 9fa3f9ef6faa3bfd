package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventsapi/internal/delivery/http/helpers"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"
)

// Success messages returned alongside mutated events.
const (
	MsgEventCreated  = "Event created successfully"
	MsgEventUpdated  = "Event updated successfully"
	MsgEventDeleted  = "Event deleted successfully"
	MsgEventNotFound = "Event not found"
)

// CreateEventResponse is the response body for POST /events/create (201).
type CreateEventResponse struct {
	Message string        `json:"message"`
	Event   *domain.Event `json:"event"`
}

// UpdateEventResponse is the response body for PUT /events/{id} (200).
type UpdateEventResponse struct {
	Message      string        `json:"message"`
	UpdatedEvent *domain.Event `json:"updatedEvent"`
}

// DeleteEventResponse is the response body for DELETE /events/{id} (200).
type DeleteEventResponse struct {
	Message string        `json:"message"`
	Event   *domain.Event `json:"event"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event. name, description, date and category are required; category is case-insensitive; tags may be an array or a comma-separated string; location defaults to Online. The authenticated caller becomes createdBy.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body domain.CreateEventInput true "Event data"
// @Success 201 {object} controllers.CreateEventResponse
// @Failure 400 {object} helpers.ErrorResponse "validation error"
// @Failure 401 {object} helpers.ErrorResponse "missing or invalid token"
// @Failure 403 {object} helpers.ErrorResponse "guest caller"
// @Failure 500 {object} helpers.ErrorResponse "unexpected failure"
// @Router /events/create [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, middleware.MsgNoToken)
		return
	}
	var req domain.CreateEventInput
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), req, identity.ID)
	if err != nil {
		c.writeError(w, r, err, "Server Error")
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, CreateEventResponse{Message: MsgEventCreated, Event: event})
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event matching the optional search text (case-insensitive substring of the name), ordered by sort. Creator names are resolved.
// @Tags events
// @Produce json
// @Param search query string false "Substring of the event name"
// @Param sort query string false "newest (default), oldest or attendees"
// @Success 200 {array} domain.Event
// @Failure 500 {object} helpers.ErrorResponse "unexpected failure"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.List(r.Context(), helpers.ParseEventFilter(r))
	if err != nil {
		c.writeError(w, r, err, "Error fetching events")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns one event with its creator name resolved.
// @Tags events
// @Produce json
// @Param id path string true "Event ID (24 hex characters)"
// @Success 200 {object} domain.Event
// @Failure 400 {object} helpers.ErrorResponse "invalid id format"
// @Failure 404 {object} helpers.ErrorResponse "not found"
// @Failure 500 {object} helpers.ErrorResponse "unexpected failure"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.writeError(w, r, err, "Error fetching event")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Updates name (sent as name or eventName, required), description, date and category. Omitted optional fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (24 hex characters)"
// @Param body body domain.EventPatch true "Fields to update"
// @Success 200 {object} controllers.UpdateEventResponse
// @Failure 400 {object} helpers.ErrorResponse "validation error"
// @Failure 401 {object} helpers.ErrorResponse "missing or invalid token"
// @Failure 403 {object} helpers.ErrorResponse "guest caller"
// @Failure 404 {object} helpers.ErrorResponse "not found"
// @Failure 500 {object} helpers.ErrorResponse "unexpected failure"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, middleware.MsgNoToken)
		return
	}
	var req domain.EventPatch
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), chi.URLParam(r, "id"), req, identity.ID)
	if err != nil {
		c.writeError(w, r, err, "Error updating event")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, UpdateEventResponse{Message: MsgEventUpdated, UpdatedEvent: event})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Permanently removes an event and returns its last known state.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (24 hex characters)"
// @Success 200 {object} controllers.DeleteEventResponse
// @Failure 400 {object} helpers.ErrorResponse "invalid or missing id"
// @Failure 401 {object} helpers.ErrorResponse "missing or invalid token"
// @Failure 403 {object} helpers.ErrorResponse "guest caller"
// @Failure 404 {object} helpers.ErrorResponse "not found"
// @Failure 500 {object} helpers.ErrorResponse "unexpected failure"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.writeError(w, r, err, "Internal server error")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, DeleteEventResponse{Message: MsgEventDeleted, Event: event})
}

// writeError maps service errors to responses. Unclassified errors are logged and returned as
// 500 with serverMsg and the error detail.
func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error, serverMsg string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		helpers.WriteJSONError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, MsgEventNotFound)
	case errors.Is(err, domain.ErrPermissionDenied):
		helpers.WriteJSONError(w, http.StatusForbidden, middleware.MsgGuestsForbidden)
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONServerError(w, serverMsg, err)
	}
}
