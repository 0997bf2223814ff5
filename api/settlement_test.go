package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/email"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settlementMockDB(eventID uuid.UUID, reg *registration.Registration) *mockDB {
	return &mockDB{
		GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
			return events.Event{ID: eventID, Name: "Tech Fest"}, nil
		},
		GetPaymentOrderFunc: func(ctx context.Context, orderId string) (registration.PaymentOrder, error) {
			if orderId != reg.OrderID {
				return registration.PaymentOrder{}, registration.NewUnknownOrderError("no such order", nil)
			}
			return registration.PaymentOrder{
				ID:      reg.OrderID,
				EventID: eventID,
				Email:   reg.Email,
				Amount:  reg.Amount,
			}, nil
		},
		GetRegistrationFunc: func(ctx context.Context, eventId uuid.UUID, emailAddr string) (registration.Registration, error) {
			return *reg, nil
		},
		SettleRegistrationFunc: func(ctx context.Context, r registration.Registration, attempt registration.SettlementAttempt) error {
			*reg = r
			return nil
		},
	}
}

func verifyPaymentBody(t *testing.T, orderId string) *strings.Reader {
	t.Helper()
	jsonBody, err := json.Marshal(VerifyPaymentRequest{
		RazorpayOrderId:   orderId,
		RazorpayPaymentId: "pay_xyz789",
		RazorpaySignature: "sig",
	})
	require.NoError(t, err)
	return strings.NewReader(string(jsonBody))
}

func TestPostVerifyPayment(t *testing.T) {
	eventID := uuid.New()

	newReg := func() registration.Registration {
		return registration.Registration{
			ID:      uuid.New(),
			Version: 1,
			EventID: eventID,
			Email:   "asha@example.com",
			Amount:  money.New(50000, money.INR),
			OrderID: "order_abc123",
			Status:  registration.STATUS_PENDING,
		}
	}

	t.Run("settles and sends the confirmation email", func(t *testing.T) {
		reg := newReg()
		db := settlementMockDB(eventID, &reg)

		emailSent := false
		a := NewAPI(db, noopLogger, LOCAL, &mockGateway{}, &mockVerifier{}, &mockEmailSender{
			SendEmailFunc: func(ctx context.Context, e email.Email) error {
				emailSent = true
				assert.Equal(t, []string{"asha@example.com"}, e.ToAddresses)
				return nil
			},
		}, &mockAuthValidator{}, "client-id")

		w := httptest.NewRecorder()
		a.postVerifyPayment(w, httptest.NewRequest(http.MethodPost, "/registrations/verify-payment", verifyPaymentBody(t, "order_abc123")))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp VerifyPaymentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(registration.STATUS_PAID), resp.Status)
		assert.True(t, emailSent)
	})

	t.Run("unknown order", func(t *testing.T) {
		reg := newReg()
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		a.postVerifyPayment(w, httptest.NewRequest(http.MethodPost, "/registrations/verify-payment", verifyPaymentBody(t, "order_nope")))

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp Error
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, NotFound, resp.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		reg := newReg()
		verifier := &mockVerifier{
			VerifyPaymentFunc: func(orderId, paymentId, signature string) bool {
				return false
			},
		}
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, verifier)

		w := httptest.NewRecorder()
		a.postVerifyPayment(w, httptest.NewRequest(http.MethodPost, "/registrations/verify-payment", verifyPaymentBody(t, "order_abc123")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp Error
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, SignatureInvalid, resp.Code)
		assert.Equal(t, registration.STATUS_PENDING, reg.Status)
	})

	t.Run("duplicate verify reports the settled status without a second email", func(t *testing.T) {
		reg := newReg()
		reg.Status = registration.STATUS_PAID

		emailCount := 0
		a := NewAPI(settlementMockDB(eventID, &reg), noopLogger, LOCAL, &mockGateway{}, &mockVerifier{}, &mockEmailSender{
			SendEmailFunc: func(ctx context.Context, e email.Email) error {
				emailCount++
				return nil
			},
		}, &mockAuthValidator{}, "client-id")

		w := httptest.NewRecorder()
		a.postVerifyPayment(w, httptest.NewRequest(http.MethodPost, "/registrations/verify-payment", verifyPaymentBody(t, "order_abc123")))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp VerifyPaymentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(registration.STATUS_PAID), resp.Status)
		assert.Equal(t, 0, emailCount)
	})
}

func webhookBody(event, orderId string, amount int64) string {
	return fmt.Sprintf(`{"event":%q,"payload":{"payment":{"entity":{"id":"pay_xyz789","order_id":%q,"amount":%d,"currency":"INR"}}}}`, event, orderId, amount)
}

func TestHandleRazorpayWebhook(t *testing.T) {
	eventID := uuid.New()

	newReg := func() registration.Registration {
		return registration.Registration{
			ID:      uuid.New(),
			Version: 1,
			EventID: eventID,
			Email:   "asha@example.com",
			Amount:  money.New(50000, money.INR),
			OrderID: "order_abc123",
			Status:  registration.STATUS_PENDING,
		}
	}

	t.Run("payment.captured settles the registration", func(t *testing.T) {
		reg := newReg()
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(webhookBody("payment.captured", "order_abc123", 50000)))
		req.Header.Set("X-Razorpay-Signature", "sig")
		a.handleRazorpayWebhook(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, registration.STATUS_PAID, reg.Status)
	})

	t.Run("payment.failed marks the registration failed", func(t *testing.T) {
		reg := newReg()
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(webhookBody("payment.failed", "order_abc123", 50000)))
		req.Header.Set("X-Razorpay-Signature", "sig")
		a.handleRazorpayWebhook(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, registration.STATUS_FAILED, reg.Status)
	})

	t.Run("bad signature is dropped before settlement", func(t *testing.T) {
		reg := newReg()
		verifier := &mockVerifier{
			VerifyWebhookFunc: func(body []byte, signature string) bool {
				return false
			},
		}
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, verifier)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(webhookBody("payment.captured", "order_abc123", 50000)))
		req.Header.Set("X-Razorpay-Signature", "forged")
		a.handleRazorpayWebhook(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, registration.STATUS_PENDING, reg.Status)
	})

	t.Run("amount mismatch is acknowledged but not settled", func(t *testing.T) {
		reg := newReg()
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(webhookBody("payment.captured", "order_abc123", 40000)))
		req.Header.Set("X-Razorpay-Signature", "sig")
		a.handleRazorpayWebhook(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, registration.STATUS_PENDING, reg.Status)
	})

	t.Run("unhandled event types are acknowledged", func(t *testing.T) {
		reg := newReg()
		a := newTestAPI(settlementMockDB(eventID, &reg), &mockGateway{}, &mockVerifier{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(webhookBody("order.paid", "order_abc123", 50000)))
		req.Header.Set("X-Razorpay-Signature", "sig")
		a.handleRazorpayWebhook(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, registration.STATUS_PENDING, reg.Status)
	})
}
