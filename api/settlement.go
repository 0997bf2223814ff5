package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/registration"
)

func (a *API) postVerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var req VerifyPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := registration.VerifyAndSettle(ctx, registration.PaymentConfirmation{
		OrderID:   req.RazorpayOrderId,
		PaymentID: req.RazorpayPaymentId,
		Signature: req.RazorpaySignature,
	}, a.db, a.verifier)
	if err != nil {
		logger.Error("Failed to settle payment", "error", err, "orderId", req.RazorpayOrderId)

		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_UNKNOWN_ORDER:
				writeJSONError(w, http.StatusNotFound, NotFound, "No order found for the given order ID")
				return
			case registration.REASON_SIGNATURE_INVALID:
				writeJSONError(w, http.StatusBadRequest, SignatureInvalid, "Payment signature is invalid")
				return
			case registration.REASON_SETTLEMENT_MISMATCH:
				writeJSONError(w, http.StatusConflict, SettlementMismatch, "Payment does not match the order it claims to settle")
				return
			}
		}

		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to verify payment")
		return
	}

	a.sendConfirmationEmail(r, result)

	writeJSON(w, http.StatusOK, VerifyPaymentResponse{Status: string(result.Registration.Status)})
}

// sendConfirmationEmail notifies the attendee after a settle lands in PAID.
// Failures are logged and swallowed; the money already moved.
func (a *API) sendConfirmationEmail(r *http.Request, result registration.SettlementResult) {
	if !result.Transitioned || result.Registration.Status != registration.STATUS_PAID {
		return
	}

	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	event, err := a.db.GetEvent(ctx, result.Registration.EventID)
	if err != nil {
		logger.Error("Failed to fetch event for confirmation email", "error", err, "eventId", result.Registration.EventID)
		return
	}

	err = registration.SendPaymentConfirmationEmail(ctx, a.emailSender, fromEmailAddress, result.Registration, event)
	if err != nil {
		logger.Error("Failed to send confirmation email", "error", err, "email", result.Registration.Email)
	}
}

type webhookPayment struct {
	Id       string `json:"id"`
	OrderId  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// razorpayWebhookMiddleware intercepts gateway deliveries before the OpenAPI
// validator sees them. The raw body signature is the only authentication; a
// delivery that fails it is dropped with a 400 and never reaches settlement.
// Duplicate and late deliveries get a 200 so the gateway stops retrying.
func (a *API) razorpayWebhookMiddleware(path string) middlewareFunc {
	return func(next http.Handler) http.Handler {
		mux := http.NewServeMux()
		mux.HandleFunc("POST "+path, a.handleRazorpayWebhook)
		mux.Handle("/", next)
		return mux
	}
}

func (a *API) handleRazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 65536))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Failed to read webhook body")
		return
	}

	if !a.verifier.VerifyWebhook(body, r.Header.Get("X-Razorpay-Signature")) {
		logger.Warn("Rejected webhook with bad signature")
		writeJSONError(w, http.StatusBadRequest, SignatureInvalid, "Webhook signature is invalid")
		return
	}

	var delivery webhookEvent
	err = json.Unmarshal(body, &delivery)
	if err != nil {
		logger.Error("Failed to parse webhook body", "error", err)
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Webhook body is not valid JSON")
		return
	}

	var outcome registration.PaymentOutcome
	switch delivery.Event {
	case "payment.captured":
		outcome = registration.OUTCOME_CAPTURED
	case "payment.failed":
		outcome = registration.OUTCOME_FAILED
	default:
		// Not an event we act on. Acknowledge so the gateway doesn't retry.
		w.WriteHeader(http.StatusOK)
		return
	}

	payment := delivery.Payload.Payment.Entity
	result, err := registration.SettleFromWebhook(ctx, registration.PaymentConfirmation{
		OrderID:   payment.OrderId,
		PaymentID: payment.Id,
		Amount:    money.New(payment.Amount, payment.Currency),
		Outcome:   outcome,
	}, a.db)
	if err != nil {
		var regErr *registration.Error
		if errors.As(err, &regErr) {
			switch regErr.Reason {
			case registration.REASON_UNKNOWN_ORDER, registration.REASON_SETTLEMENT_MISMATCH:
				// Nothing a retry will fix. The rejected attempt is already in
				// the ledger; acknowledge the delivery.
				logger.Warn("Dropped unsettleable webhook", "error", err, "orderId", payment.OrderId)
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		logger.Error("Failed to settle webhook delivery", "error", err, "orderId", payment.OrderId)
		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to process webhook")
		return
	}

	a.sendConfirmationEmail(r, result)

	w.WriteHeader(http.StatusOK)
}
