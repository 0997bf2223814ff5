package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/ptr"
	"github.com/Satish-vaishyar/Collage-Events/slices"
	"github.com/google/uuid"
)

func (a *API) getEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	limit, cursor, ok := paginationParams(w, r)
	if !ok {
		return
	}

	result, err := a.db.GetEvents(ctx, limit, cursor)
	if err != nil {
		logger.Error("Failed to get events from the DB", "error", err)

		var eventErr *events.Error
		if errors.As(err, &eventErr) {
			switch eventErr.Reason {
			case events.REASON_INVALID_CURSOR:
				writeJSONError(w, http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid")
				return
			}
		}
		writeJSONError(w, http.StatusInternalServerError, InternalError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, GetEventsResponse{
		Data: slices.Map(result.Data, func(v events.Event) Event {
			return eventToApiEvent(v)
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

func (a *API) postEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var apiEvent Event
	if !decodeBody(w, r, &apiEvent) {
		return
	}

	if apiEvent.Name == "" || apiEvent.TicketPrice < 0 {
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Event needs a name and a non-negative ticket price")
		return
	}

	apiEvent.Id = ptr.Ref(uuid.New())
	apiEvent.Version = ptr.Ref(1)
	event := apiEventToEvent(apiEvent)

	err := a.db.CreateEvent(ctx, event)
	if err != nil {
		logger.Error("Failed to create an event", "error", err)

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to create the event")
		return
	}

	writeJSON(w, http.StatusOK, eventToApiEvent(event))
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Event ID must be a UUID")
		return
	}

	event, err := a.db.GetEvent(ctx, id)
	if err != nil {
		logger.Error("Failed to fetch an event", "error", err)

		var eventErr *events.Error
		if errors.As(err, &eventErr) {
			switch eventErr.Reason {
			case events.REASON_EVENT_DOES_NOT_EXIST:
				writeJSONError(w, http.StatusNotFound, NotFound, "Event does not exist")
				return
			}
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, eventToApiEvent(event))
}

func paginationParams(w http.ResponseWriter, r *http.Request) (int32, *string, bool) {
	limit := 10

	if v := r.URL.Query().Get("limit"); v != "" {
		userLimit, err := strconv.Atoi(v)
		if err != nil || userLimit < 1 || userLimit > 50 {
			writeJSONError(w, http.StatusBadRequest, LimitOutOfBounds, "Limit must be between 1 and 50")
			return 0, nil, false
		}
		limit = userLimit
	}

	var cursor *string
	if v := r.URL.Query().Get("cursor"); v != "" {
		cursor = &v
	}

	return int32(limit), cursor, true
}
