package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/payments"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// PaymentConfirmation is one delivery of a gateway outcome, from either the
// client's post-checkout callback or a server-pushed webhook. Nothing in it is
// trusted until the signature check passes.
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
	// Amount is the amount the gateway reports as charged. Nil when the
	// delivery channel doesn't carry one (the client callback); then the
	// stored order amount is authoritative.
	Amount  *money.Money
	Outcome PaymentOutcome
}

type SettlementResult struct {
	Registration Registration
	// Transitioned is false when the confirmation was a duplicate or arrived
	// after the registration reached a terminal status.
	Transitioned bool
}

// VerifyAndSettle authenticates a payment confirmation and drives the
// registration to its outcome exactly once. Check order is binding: signature
// before any ledger write, so forged input can never consume the idempotency
// slot of the legitimate delivery; ledger write and status change commit in
// one transaction, so redelivery after a crash can't double-settle.
func VerifyAndSettle(ctx context.Context, conf PaymentConfirmation, repo Repository, verifier payments.SignatureVerifier) (SettlementResult, error) {
	ctx, span := tracer.Start(ctx, "VerifyAndSettle")
	defer span.End()
	span.SetAttributes(attribute.String("orderId", conf.OrderID))

	order, err := lookupOrder(ctx, conf.OrderID, repo)
	if err != nil {
		return SettlementResult{}, err
	}

	if !verifier.VerifyPayment(conf.OrderID, conf.PaymentID, conf.Signature) {
		return SettlementResult{}, NewSignatureInvalidError(fmt.Sprintf("Signature does not match for order %q", conf.OrderID))
	}

	return settleAuthenticated(ctx, order, conf, repo)
}

// SettleFromWebhook settles a confirmation whose raw delivery body was already
// authenticated by the webhook signature check. Callers must not invoke this
// on an unverified payload.
func SettleFromWebhook(ctx context.Context, conf PaymentConfirmation, repo Repository) (SettlementResult, error) {
	ctx, span := tracer.Start(ctx, "SettleFromWebhook")
	defer span.End()

	order, err := lookupOrder(ctx, conf.OrderID, repo)
	if err != nil {
		return SettlementResult{}, err
	}

	return settleAuthenticated(ctx, order, conf, repo)
}

func lookupOrder(ctx context.Context, orderId string, repo Repository) (PaymentOrder, error) {
	order, err := repo.GetPaymentOrder(ctx, orderId)
	if err != nil {
		var regErr *Error
		if errors.As(err, &regErr) && regErr.Reason == REASON_UNKNOWN_ORDER {
			return PaymentOrder{}, err
		}
		return PaymentOrder{}, NewFailedToFetchError(fmt.Sprintf("Failed to fetch payment order %q", orderId), err)
	}
	return order, nil
}

func settleAuthenticated(ctx context.Context, order PaymentOrder, conf PaymentConfirmation, repo Repository) (SettlementResult, error) {
	reg, err := repo.GetRegistration(ctx, order.EventID, order.Email)
	if err != nil {
		return SettlementResult{}, err
	}

	now := time.Now()
	attempt := SettlementAttempt{
		OrderID:     conf.OrderID,
		PaymentID:   conf.PaymentID,
		ProcessedAt: now,
	}

	// An authentic confirmation whose amount disagrees with what the order
	// was created for is a tamper attempt or an integration bug. It is
	// audited and surfaced, never silently resolved.
	if conf.Amount != nil {
		same, eqErr := conf.Amount.Equals(order.Amount)
		if eqErr != nil || !same {
			attempt.Result = ATTEMPT_REJECTED
			recordRejected(ctx, attempt, repo)
			return SettlementResult{}, NewSettlementMismatchError(
				fmt.Sprintf("Confirmation amount %s does not match order %q amount %s",
					conf.Amount.Display(), order.ID, order.Amount.Display()))
		}
	}

	outcome := conf.Outcome
	if outcome == "" {
		outcome = OUTCOME_CAPTURED
	}

	settled, transitioned := ApplyPaymentOutcome(reg, outcome, now)
	if !transitioned {
		// Terminal already; the gateway retried or raced itself. Leave the
		// registration alone and report where it ended up.
		attempt.Result = ATTEMPT_REJECTED
		recordRejected(ctx, attempt, repo)
		return SettlementResult{Registration: reg, Transitioned: false}, nil
	}

	attempt.Result = ATTEMPT_ACCEPTED
	err = repo.SettleRegistration(ctx, settled, attempt)
	if err != nil {
		var regErr *Error
		if errors.As(err, &regErr) && regErr.Reason == REASON_ATTEMPT_ALREADY_RECORDED {
			// Lost the race against an identical delivery. The winner's
			// transition stands; report the current status.
			current, getErr := repo.GetRegistration(ctx, order.EventID, order.Email)
			if getErr != nil {
				return SettlementResult{}, getErr
			}
			return SettlementResult{Registration: current, Transitioned: false}, nil
		}
		return SettlementResult{}, err
	}

	return SettlementResult{Registration: settled, Transitioned: true}, nil
}

// recordRejected is best effort: the rejected entry is an audit trail, not a
// guard, and a duplicate means the audit line already exists.
func recordRejected(ctx context.Context, attempt SettlementAttempt, repo Repository) {
	err := repo.RecordRejectedAttempt(ctx, attempt)
	if err != nil {
		var regErr *Error
		if errors.As(err, &regErr) && regErr.Reason == REASON_ATTEMPT_ALREADY_RECORDED {
			return
		}
	}
}

// BeginCheckout marks that the attendee opened the gateway checkout. Purely
// informational; a stale or repeated signal is ignored.
func BeginCheckout(ctx context.Context, eventId uuid.UUID, email string, repo Repository) (Registration, bool, error) {
	ctx, span := tracer.Start(ctx, "BeginCheckout")
	defer span.End()

	reg, err := repo.GetRegistration(ctx, eventId, email)
	if err != nil {
		return Registration{}, false, err
	}

	pending, transitioned := MarkCheckoutPending(reg)
	if !transitioned {
		return reg, false, nil
	}

	err = repo.UpdateRegistrationStatus(ctx, pending)
	if err != nil {
		return Registration{}, false, err
	}

	return pending, true, nil
}

// ExpireRegistration applies the time-based EXPIRED transition. The trigger
// is external (operator or scheduler); settlement never expires anything on
// its own, and expiring an already-settled registration is a no-op.
func ExpireRegistration(ctx context.Context, eventId uuid.UUID, email string, repo Repository) (Registration, bool, error) {
	ctx, span := tracer.Start(ctx, "ExpireRegistration")
	defer span.End()

	reg, err := repo.GetRegistration(ctx, eventId, email)
	if err != nil {
		return Registration{}, false, err
	}

	expired, transitioned := MarkExpired(reg, time.Now())
	if !transitioned {
		return reg, false, nil
	}

	err = repo.UpdateRegistrationStatus(ctx, expired)
	if err != nil {
		return Registration{}, false, err
	}

	return expired, true, nil
}
