package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/payments"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("github.com/Satish-vaishyar/Collage-Events/registration")

// AttemptRegistration creates a registration for an event. Paid events get a
// gateway order first and the registration lands in CREATED; the registration
// and its order are persisted in one transaction so a gateway timeout or a
// write failure never leaves half-created state. Free events skip the gateway
// entirely and are persisted directly in PAID.
func AttemptRegistration(ctx context.Context, req Registration, eventRepo events.Repository, regRepo Repository, gateway payments.Gateway) (Registration, error) {
	ctx, span := tracer.Start(ctx, "AttemptRegistration")
	defer span.End()

	event, err := eventRepo.GetEvent(ctx, req.EventID)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) {
			switch eventErr.Reason {
			case events.REASON_EVENT_DOES_NOT_EXIST:
				return Registration{}, NewAssociatedEventDoesNotExistError(fmt.Sprintf("Event does not exist with ID %q", req.EventID), err)
			}
		}

		return Registration{}, NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", req.EventID), err)
	}

	if req.RegisteredAt.After(event.RegistrationCloseTime) {
		return Registration{}, NewRegistrationIsClosedError(fmt.Sprintf("Registration closed at %s", event.RegistrationCloseTime))
	}

	event.NumRegistrations++
	event.Version++

	if event.IsFree() {
		req.Status = STATUS_PAID
		settledAt := req.RegisteredAt
		req.SettledAt = &settledAt

		err = regRepo.CreateRegistration(ctx, req, event)
		if err != nil {
			return Registration{}, err
		}
		return req, nil
	}

	req.Status = STATUS_CREATED
	req.Amount = event.TicketPrice

	gwOrder, err := gateway.CreateOrder(ctx, payments.OrderParams{
		Amount:  event.TicketPrice,
		Receipt: req.ID.String(),
		Notes: map[string]string{
			"eventId": event.ID.String(),
			"email":   req.Email,
		},
	})
	if err != nil {
		return Registration{}, NewOrderCreationError(fmt.Sprintf("Failed to create gateway order for event %q", event.ID), err)
	}

	req.OrderID = gwOrder.ID

	order := PaymentOrder{
		ID:        gwOrder.ID,
		EventID:   event.ID,
		Email:     req.Email,
		Amount:    event.TicketPrice,
		CreatedAt: req.RegisteredAt,
	}

	err = regRepo.CreateRegistrationWithOrder(ctx, req, order, event)
	if err != nil {
		return Registration{}, err
	}

	return req, nil
}
