package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/google/uuid"
)

type ErrorCode string

const (
	InternalError        ErrorCode = "InternalError"
	InputValidationError ErrorCode = "InputValidationError"
	AuthError            ErrorCode = "AuthError"
	EmptyBody            ErrorCode = "EmptyBody"
	InvalidBody          ErrorCode = "InvalidBody"
	NotFound             ErrorCode = "NotFound"
	AlreadyExists        ErrorCode = "AlreadyExists"
	LimitOutOfBounds     ErrorCode = "LimitOutOfBounds"
	InvalidCursor        ErrorCode = "InvalidCursor"
	RegistrationClosed   ErrorCode = "RegistrationClosed"
	GatewayError         ErrorCode = "GatewayError"
	SignatureInvalid     ErrorCode = "SignatureInvalid"
	SettlementMismatch   ErrorCode = "SettlementMismatch"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type Location struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type Event struct {
	Id                    *uuid.UUID `json:"id,omitempty"`
	Version               *int       `json:"version,omitempty"`
	Name                  string     `json:"name"`
	Description           string     `json:"description,omitempty"`
	EventCode             string     `json:"eventCode,omitempty"`
	Location              Location   `json:"location"`
	StartTime             time.Time  `json:"startTime"`
	RegistrationCloseTime time.Time  `json:"registrationCloseTime"`
	// TicketPrice is in minor currency units; 0 means a free event.
	TicketPrice      int64  `json:"ticketPrice"`
	Currency         string `json:"currency,omitempty"`
	NumRegistrations *int   `json:"numRegistrations,omitempty"`
}

type GetEventsResponse struct {
	Data        []Event `json:"data"`
	Cursor      *string `json:"cursor,omitempty"`
	HasNextPage bool    `json:"hasNextPage"`
}

type PostRegistrationRequest struct {
	EventId uuid.UUID `json:"eventId"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
}

type PostRegistrationResponse struct {
	RegistrationId uuid.UUID `json:"registrationId"`
	OrderId        string    `json:"orderId,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency,omitempty"`
	Status         string    `json:"status"`
}

type Registration struct {
	Id           uuid.UUID  `json:"id"`
	EventId      uuid.UUID  `json:"eventId"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	RegisteredAt time.Time  `json:"registeredAt"`
	Amount       int64      `json:"amount"`
	Currency     string     `json:"currency,omitempty"`
	OrderId      string     `json:"orderId,omitempty"`
	Status       string     `json:"status"`
	SettledAt    *time.Time `json:"settledAt,omitempty"`
}

type GetRegistrationsResponse struct {
	Data        []Registration `json:"data"`
	Cursor      *string        `json:"cursor,omitempty"`
	HasNextPage bool           `json:"hasNextPage"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderId   string `json:"razorpay_order_id"`
	RazorpayPaymentId string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type VerifyPaymentResponse struct {
	Status string `json:"status"`
}

type CheckoutStartedRequest struct {
	EventId uuid.UUID `json:"eventId"`
	Email   string    `json:"email"`
}

type CheckoutStartedResponse struct {
	Status string `json:"status"`
}

type ExpireRegistrationRequest struct {
	EventId uuid.UUID `json:"eventId"`
	Email   string    `json:"email"`
}

type ExpireRegistrationResponse struct {
	Status  string `json:"status"`
	Expired bool   `json:"expired"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, statusCode int, code ErrorCode, message string) {
	writeJSON(w, statusCode, Error{Code: code, Message: message})
}

func eventToApiEvent(event events.Event) Event {
	apiEvent := Event{
		Id:                    &event.ID,
		Version:               &event.Version,
		Name:                  event.Name,
		Description:           event.Description,
		EventCode:             event.EventCode,
		Location:              Location{Address: event.EventLocation.Address, Lat: event.EventLocation.Lat, Lng: event.EventLocation.Lng},
		StartTime:             event.StartTime,
		RegistrationCloseTime: event.RegistrationCloseTime,
		NumRegistrations:      &event.NumRegistrations,
	}

	if event.TicketPrice != nil {
		apiEvent.TicketPrice = event.TicketPrice.Amount()
		apiEvent.Currency = event.TicketPrice.Currency().Code
	}

	return apiEvent
}

func apiEventToEvent(apiEvent Event) events.Event {
	event := events.Event{
		Name:                  apiEvent.Name,
		Description:           apiEvent.Description,
		EventCode:             apiEvent.EventCode,
		EventLocation:         events.Location{Address: apiEvent.Location.Address, Lat: apiEvent.Location.Lat, Lng: apiEvent.Location.Lng},
		StartTime:             apiEvent.StartTime,
		RegistrationCloseTime: apiEvent.RegistrationCloseTime,
	}

	if apiEvent.Id != nil {
		event.ID = *apiEvent.Id
	}
	if apiEvent.Version != nil {
		event.Version = *apiEvent.Version
	}
	if apiEvent.TicketPrice > 0 {
		currency := apiEvent.Currency
		if currency == "" {
			currency = money.INR
		}
		event.TicketPrice = money.New(apiEvent.TicketPrice, currency)
	}

	return event
}

func registrationToApiRegistration(reg registration.Registration) Registration {
	apiReg := Registration{
		Id:           reg.ID,
		EventId:      reg.EventID,
		Name:         reg.Name,
		Email:        reg.Email,
		RegisteredAt: reg.RegisteredAt,
		OrderId:      reg.OrderID,
		Status:       string(reg.Status),
		SettledAt:    reg.SettledAt,
	}

	if reg.Amount != nil {
		apiReg.Amount = reg.Amount.Amount()
		apiReg.Currency = reg.Amount.Currency().Code
	}

	return apiReg
}
