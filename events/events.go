package events

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

type Event struct {
	ID                    uuid.UUID
	Version               int
	Name                  string
	Description           string
	EventCode             string
	EventLocation         Location
	StartTime             time.Time
	RegistrationCloseTime time.Time
	// TicketPrice is nil for free events.
	TicketPrice      *money.Money
	NumRegistrations int
}

// IsFree reports whether registering for the event requires no payment.
func (e Event) IsFree() bool {
	return e.TicketPrice == nil || e.TicketPrice.IsZero()
}

type GetEventsResponse struct {
	Data        []Event
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	GetEvents(ctx context.Context, limit int32, cursor *string) (GetEventsResponse, error)
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
}
