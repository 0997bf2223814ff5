package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEvents(t *testing.T) {
	t.Run("returns a page of events", func(t *testing.T) {
		db := &mockDB{
			GetEventsFunc: func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
				assert.Equal(t, int32(10), limit)
				return events.GetEventsResponse{
					Data: []events.Event{{
						ID:          uuid.New(),
						Name:        "Tech Fest",
						TicketPrice: money.New(50000, money.INR),
					}},
					HasNextPage: false,
				}, nil
			},
		}
		a := newTestAPI(db, &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		a.getEvents(w, httptest.NewRequest(http.MethodGet, "/events", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp GetEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Tech Fest", resp.Data[0].Name)
		assert.Equal(t, int64(50000), resp.Data[0].TicketPrice)
		assert.Equal(t, money.INR, resp.Data[0].Currency)
	})

	t.Run("limit out of bounds", func(t *testing.T) {
		a := newTestAPI(&mockDB{}, &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		a.getEvents(w, httptest.NewRequest(http.MethodGet, "/events?limit=100", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp Error
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, LimitOutOfBounds, resp.Code)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		db := &mockDB{
			GetEventsFunc: func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
				return events.GetEventsResponse{}, events.NewInvalidCursorError("bad cursor", errors.New("not base64"))
			},
		}
		a := newTestAPI(db, &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		a.getEvents(w, httptest.NewRequest(http.MethodGet, "/events?cursor=junk", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp Error
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, InvalidCursor, resp.Code)
	})
}

func TestGetEvent(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		eventID := uuid.New()
		db := &mockDB{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				assert.Equal(t, eventID, id)
				return events.Event{ID: eventID, Name: "Tech Fest"}, nil
			},
		}
		a := newTestAPI(db, &mockGateway{}, &mockVerifier{})

		req := httptest.NewRequest(http.MethodGet, "/events/"+eventID.String(), nil)
		req.SetPathValue("id", eventID.String())
		w := httptest.NewRecorder()
		a.getEvent(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		db := &mockDB{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return events.Event{}, &events.Error{Reason: events.REASON_EVENT_DOES_NOT_EXIST}
			},
		}
		a := newTestAPI(db, &mockGateway{}, &mockVerifier{})

		eventID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/events/"+eventID.String(), nil)
		req.SetPathValue("id", eventID.String())
		w := httptest.NewRecorder()
		a.getEvent(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		a := newTestAPI(&mockDB{}, &mockGateway{}, &mockVerifier{})

		req := httptest.NewRequest(http.MethodGet, "/events/not-a-uuid", nil)
		req.SetPathValue("id", "not-a-uuid")
		w := httptest.NewRecorder()
		a.getEvent(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPostEvents(t *testing.T) {
	t.Run("creates the event", func(t *testing.T) {
		var created *events.Event
		db := &mockDB{
			CreateEventFunc: func(ctx context.Context, event events.Event) error {
				created = &event
				return nil
			},
		}
		a := newTestAPI(db, &mockGateway{}, &mockVerifier{})

		body := Event{
			Name:                  "Tech Fest",
			StartTime:             time.Now().Add(48 * time.Hour),
			RegistrationCloseTime: time.Now().Add(24 * time.Hour),
			TicketPrice:           50000,
			Currency:              money.INR,
		}
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		a.postEvents(w, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(string(jsonBody))))

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, created)
		assert.Equal(t, 1, created.Version)
		assert.NotEqual(t, uuid.Nil, created.ID)
		require.NotNil(t, created.TicketPrice)
		assert.Equal(t, int64(50000), created.TicketPrice.Amount())
	})

	t.Run("empty body", func(t *testing.T) {
		a := newTestAPI(&mockDB{}, &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		a.postEvents(w, httptest.NewRequest(http.MethodPost, "/events", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp Error
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, EmptyBody, resp.Code)
	})
}
