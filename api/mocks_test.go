package api

import (
	"context"
	"log/slog"

	"github.com/Satish-vaishyar/Collage-Events/email"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/payments"
	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
)

var noopLogger = slog.New(slog.DiscardHandler)

type mockAuthValidator struct {
	ValidateFunc func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

func (m *mockAuthValidator) Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token, audience)
	}
	return &idtoken.Payload{Subject: "organizer"}, nil
}

type mockEmailSender struct {
	SendEmailFunc func(ctx context.Context, e email.Email) error
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, e)
	}
	return nil
}

type mockGateway struct {
	CreateOrderFunc func(ctx context.Context, params payments.OrderParams) (payments.Order, error)
}

func (m *mockGateway) CreateOrder(ctx context.Context, params payments.OrderParams) (payments.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, params)
	}
	return payments.Order{}, nil
}

type mockVerifier struct {
	VerifyPaymentFunc func(orderId, paymentId, signature string) bool
	VerifyWebhookFunc func(body []byte, signature string) bool
}

func (m *mockVerifier) VerifyPayment(orderId, paymentId, signature string) bool {
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(orderId, paymentId, signature)
	}
	return true
}

func (m *mockVerifier) VerifyWebhook(body []byte, signature string) bool {
	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(body, signature)
	}
	return true
}

var _ DB = &mockDB{}

type mockDB struct {
	GetEventsFunc                   func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error)
	CreateEventFunc                 func(ctx context.Context, event events.Event) error
	GetEventFunc                    func(ctx context.Context, id uuid.UUID) (events.Event, error)
	UpdateEventFunc                 func(ctx context.Context, event events.Event) error
	CreateRegistrationFunc          func(ctx context.Context, reg registration.Registration, event events.Event) error
	CreateRegistrationWithOrderFunc func(ctx context.Context, reg registration.Registration, order registration.PaymentOrder, event events.Event) error
	GetRegistrationFunc             func(ctx context.Context, eventId uuid.UUID, email string) (registration.Registration, error)
	GetAllRegistrationsForEventFunc func(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error)
	GetPaymentOrderFunc             func(ctx context.Context, orderId string) (registration.PaymentOrder, error)
	SettleRegistrationFunc          func(ctx context.Context, reg registration.Registration, attempt registration.SettlementAttempt) error
	RecordRejectedAttemptFunc       func(ctx context.Context, attempt registration.SettlementAttempt) error
	UpdateRegistrationStatusFunc    func(ctx context.Context, reg registration.Registration) error
}

func (m *mockDB) GetEvents(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
	return m.GetEventsFunc(ctx, limit, cursor)
}

func (m *mockDB) CreateEvent(ctx context.Context, event events.Event) error {
	return m.CreateEventFunc(ctx, event)
}

func (m *mockDB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	return m.GetEventFunc(ctx, id)
}

func (m *mockDB) UpdateEvent(ctx context.Context, event events.Event) error {
	return m.UpdateEventFunc(ctx, event)
}

func (m *mockDB) CreateRegistration(ctx context.Context, reg registration.Registration, event events.Event) error {
	if m.CreateRegistrationFunc != nil {
		return m.CreateRegistrationFunc(ctx, reg, event)
	}
	return nil
}

func (m *mockDB) CreateRegistrationWithOrder(ctx context.Context, reg registration.Registration, order registration.PaymentOrder, event events.Event) error {
	if m.CreateRegistrationWithOrderFunc != nil {
		return m.CreateRegistrationWithOrderFunc(ctx, reg, order, event)
	}
	return nil
}

func (m *mockDB) GetRegistration(ctx context.Context, eventId uuid.UUID, email string) (registration.Registration, error) {
	if m.GetRegistrationFunc != nil {
		return m.GetRegistrationFunc(ctx, eventId, email)
	}
	return registration.Registration{}, nil
}

func (m *mockDB) GetAllRegistrationsForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error) {
	if m.GetAllRegistrationsForEventFunc != nil {
		return m.GetAllRegistrationsForEventFunc(ctx, eventId, limit, cursor)
	}
	return registration.GetAllRegistrationsResponse{}, nil
}

func (m *mockDB) GetPaymentOrder(ctx context.Context, orderId string) (registration.PaymentOrder, error) {
	if m.GetPaymentOrderFunc != nil {
		return m.GetPaymentOrderFunc(ctx, orderId)
	}
	return registration.PaymentOrder{}, nil
}

func (m *mockDB) SettleRegistration(ctx context.Context, reg registration.Registration, attempt registration.SettlementAttempt) error {
	if m.SettleRegistrationFunc != nil {
		return m.SettleRegistrationFunc(ctx, reg, attempt)
	}
	return nil
}

func (m *mockDB) RecordRejectedAttempt(ctx context.Context, attempt registration.SettlementAttempt) error {
	if m.RecordRejectedAttemptFunc != nil {
		return m.RecordRejectedAttemptFunc(ctx, attempt)
	}
	return nil
}

func (m *mockDB) UpdateRegistrationStatus(ctx context.Context, reg registration.Registration) error {
	if m.UpdateRegistrationStatusFunc != nil {
		return m.UpdateRegistrationStatusFunc(ctx, reg)
	}
	return nil
}

func newTestAPI(db *mockDB, gateway *mockGateway, verifier *mockVerifier) *API {
	return NewAPI(db, noopLogger, LOCAL, gateway, verifier, &mockEmailSender{}, &mockAuthValidator{}, "client-id")
}
