package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/Satish-vaishyar/Collage-Events/slices"
	"github.com/google/uuid"
)

func (a *API) postRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var req PostRegistrationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg := registration.Registration{
		ID:           uuid.New(),
		Version:      1,
		EventID:      req.EventId,
		Name:         req.Name,
		Email:        req.Email,
		RegisteredAt: time.Now(),
	}

	created, err := registration.AttemptRegistration(ctx, reg, a.db, a.db, a.gateway)
	if err != nil {
		logger.Error("Failed to register", "error", err, "eventId", req.EventId)

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST:
				writeJSONError(w, http.StatusNotFound, NotFound, "Event does not exist")
				return
			case registration.REASON_REGISTRATION_ALREADY_EXISTS:
				writeJSONError(w, http.StatusConflict, AlreadyExists, "A registration already exists for this email")
				return
			case registration.REASON_REGISTRATION_IS_CLOSED:
				writeJSONError(w, http.StatusConflict, RegistrationClosed, "Registration for this event has closed")
				return
			case registration.REASON_ORDER_CREATION_FAILED:
				writeJSONError(w, http.StatusBadGateway, GatewayError, "Payment provider could not create the order")
				return
			}
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to register")
		return
	}

	resp := PostRegistrationResponse{
		RegistrationId: created.ID,
		OrderId:        created.OrderID,
		Status:         string(created.Status),
	}
	if created.Amount != nil {
		resp.Amount = created.Amount.Amount()
		resp.Currency = created.Amount.Currency().Code
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) getEventRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	eventId, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Event ID must be a UUID")
		return
	}

	limit, cursor, ok := paginationParams(w, r)
	if !ok {
		return
	}

	result, err := a.db.GetAllRegistrationsForEvent(ctx, eventId, limit, cursor)
	if err != nil {
		logger.Error("Failed to list registrations", "error", err, "eventId", eventId)

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_INVALID_CURSOR:
				writeJSONError(w, http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid")
				return
			}
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to list registrations")
		return
	}

	writeJSON(w, http.StatusOK, GetRegistrationsResponse{
		Data: slices.Map(result.Data, func(v registration.Registration) Registration {
			return registrationToApiRegistration(v)
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

func (a *API) postCheckoutStarted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var req CheckoutStartedRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, _, err := registration.BeginCheckout(ctx, req.EventId, req.Email, a.db)
	if err != nil {
		logger.Error("Failed to mark checkout started", "error", err, "eventId", req.EventId)

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_REGISTRATION_DOES_NOT_EXIST:
				writeJSONError(w, http.StatusNotFound, NotFound, "Registration does not exist")
				return
			}
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to update registration")
		return
	}

	writeJSON(w, http.StatusOK, CheckoutStartedResponse{Status: string(reg.Status)})
}

func (a *API) postExpireRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var req ExpireRegistrationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, expired, err := registration.ExpireRegistration(ctx, req.EventId, req.Email, a.db)
	if err != nil {
		logger.Error("Failed to expire registration", "error", err, "eventId", req.EventId)

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_REGISTRATION_DOES_NOT_EXIST:
				writeJSONError(w, http.StatusNotFound, NotFound, "Registration does not exist")
				return
			}
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to expire registration")
		return
	}

	writeJSON(w, http.StatusOK, ExpireRegistrationResponse{
		Status:  string(reg.Status),
		Expired: expired,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, EmptyBody, "Request body is required")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Request body is not valid JSON")
		return false
	}
	return true
}
