// Package payments wraps the Razorpay gateway behind interfaces the
// registration flow can be tested against.
package payments

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
)

type OrderParams struct {
	Amount *money.Money
	// Receipt is our reference stored on the gateway order, used to trace
	// an order back to a registration from the gateway dashboard.
	Receipt string
	Notes   map[string]string
}

// Order is the gateway-issued record of a requested charge.
type Order struct {
	ID        string
	Amount    *money.Money
	CreatedAt time.Time
}

type Gateway interface {
	CreateOrder(ctx context.Context, params OrderParams) (Order, error)
}

// SignatureVerifier authenticates gateway confirmations. It is the sole trust
// boundary for payment input: implementations must report false for absent or
// malformed values and must never panic or error on untrusted input.
type SignatureVerifier interface {
	// VerifyPayment checks the per-payment signature the checkout widget
	// hands back to the client after a successful charge.
	VerifyPayment(orderId, paymentId, signature string) bool
	// VerifyWebhook checks the signature the gateway sends over the raw body
	// of a server-pushed webhook delivery.
	VerifyWebhook(body []byte, signature string) bool
}
