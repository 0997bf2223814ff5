package registration

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	STATUS_CREATED PaymentStatus = "CREATED"
	STATUS_PENDING PaymentStatus = "PENDING"
	STATUS_PAID    PaymentStatus = "PAID"
	STATUS_FAILED  PaymentStatus = "FAILED"
	STATUS_EXPIRED PaymentStatus = "EXPIRED"
)

// IsTerminal reports whether the status accepts no further gateway input.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case STATUS_PAID, STATUS_FAILED, STATUS_EXPIRED:
		return true
	}
	return false
}

type Registration struct {
	ID           uuid.UUID
	Version      int
	EventID      uuid.UUID
	Name         string
	Email        string
	RegisteredAt time.Time
	// Amount is what was owed at order creation time. Nil for free events.
	// It is never mutated after creation; only Status and SettledAt change.
	Amount *money.Money
	// OrderID is the gateway order backing this registration, empty for free events.
	OrderID   string
	Status    PaymentStatus
	SettledAt *time.Time
}

// PaymentOrder is the gateway-side record of the requested charge. Immutable
// once written; settlement validates confirmations against it.
type PaymentOrder struct {
	ID        string
	EventID   uuid.UUID
	Email     string
	Amount    *money.Money
	CreatedAt time.Time
}

type AttemptResult string

const (
	ATTEMPT_ACCEPTED AttemptResult = "ACCEPTED"
	ATTEMPT_REJECTED AttemptResult = "REJECTED"
)

// SettlementAttempt is the write-once idempotency ledger entry for one
// (order, payment) pair. Entries are never updated or removed.
type SettlementAttempt struct {
	OrderID     string
	PaymentID   string
	Result      AttemptResult
	ProcessedAt time.Time
}

type GetAllRegistrationsResponse struct {
	Data        []Registration
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	// CreateRegistration persists a registration with no payment order (free events).
	CreateRegistration(ctx context.Context, reg Registration, event events.Event) error
	// CreateRegistrationWithOrder persists the registration and its payment
	// order in one transaction. Neither is written if the other fails.
	CreateRegistrationWithOrder(ctx context.Context, reg Registration, order PaymentOrder, event events.Event) error
	GetRegistration(ctx context.Context, eventId uuid.UUID, email string) (Registration, error)
	GetAllRegistrationsForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (GetAllRegistrationsResponse, error)
	GetPaymentOrder(ctx context.Context, orderId string) (PaymentOrder, error)
	// SettleRegistration writes the ledger attempt and the new registration
	// status in one transaction. If the (order, payment) pair was already
	// recorded it writes nothing and fails with REASON_ATTEMPT_ALREADY_RECORDED.
	SettleRegistration(ctx context.Context, reg Registration, attempt SettlementAttempt) error
	// RecordRejectedAttempt appends an audit-only ledger entry without touching
	// the registration. Fails with REASON_ATTEMPT_ALREADY_RECORDED on duplicates.
	RecordRejectedAttempt(ctx context.Context, attempt SettlementAttempt) error
	UpdateRegistrationStatus(ctx context.Context, reg Registration) error
}
