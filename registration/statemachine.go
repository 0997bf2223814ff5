package registration

import "time"

// PaymentOutcome is what the gateway reported for a single payment attempt.
type PaymentOutcome string

const (
	OUTCOME_CAPTURED PaymentOutcome = "CAPTURED"
	OUTCOME_FAILED   PaymentOutcome = "FAILED"
)

// MarkCheckoutPending records that the client opened the gateway checkout.
// Informational only; settlement accepts confirmations from CREATED as well.
func MarkCheckoutPending(reg Registration) (Registration, bool) {
	if reg.Status != STATUS_CREATED {
		return reg, false
	}

	reg.Status = STATUS_PENDING
	reg.Version++
	return reg, true
}

// ApplyPaymentOutcome transitions the registration for a verified gateway
// outcome. Terminal statuses are left untouched and report no transition;
// duplicate or late gateway input is a no-op by construction.
func ApplyPaymentOutcome(reg Registration, outcome PaymentOutcome, at time.Time) (Registration, bool) {
	if reg.Status.IsTerminal() {
		return reg, false
	}

	switch outcome {
	case OUTCOME_CAPTURED:
		reg.Status = STATUS_PAID
	case OUTCOME_FAILED:
		reg.Status = STATUS_FAILED
	default:
		return reg, false
	}

	reg.SettledAt = &at
	reg.Version++
	return reg, true
}

// MarkExpired ages out an order that never saw a confirmation. Fired by an
// external time-based trigger, never by settlement itself.
func MarkExpired(reg Registration, at time.Time) (Registration, bool) {
	if reg.Status.IsTerminal() {
		return reg, false
	}

	reg.Status = STATUS_EXPIRED
	reg.SettledAt = &at
	reg.Version++
	return reg, true
}
