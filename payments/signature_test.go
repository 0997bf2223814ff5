package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayment(secret, orderId, paymentId string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderId + "|" + paymentId))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPayment(t *testing.T) {
	verifier := NewHMACVerifier("key-secret", "webhook-secret")

	t.Run("valid signature", func(t *testing.T) {
		sig := signPayment("key-secret", "order_abc123", "pay_xyz789")
		assert.True(t, verifier.VerifyPayment("order_abc123", "pay_xyz789", sig))
	})

	t.Run("tampered payment id", func(t *testing.T) {
		sig := signPayment("key-secret", "order_abc123", "pay_xyz789")
		assert.False(t, verifier.VerifyPayment("order_abc123", "pay_other", sig))
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := signPayment("other-secret", "order_abc123", "pay_xyz789")
		assert.False(t, verifier.VerifyPayment("order_abc123", "pay_xyz789", sig))
	})

	t.Run("malformed signature is rejected, not an error", func(t *testing.T) {
		assert.False(t, verifier.VerifyPayment("order_abc123", "pay_xyz789", "not-hex!"))
		assert.False(t, verifier.VerifyPayment("order_abc123", "pay_xyz789", ""))
	})

	t.Run("empty ids are rejected", func(t *testing.T) {
		sig := signPayment("key-secret", "", "")
		assert.False(t, verifier.VerifyPayment("", "", sig))
	})
}

func TestVerifyWebhook(t *testing.T) {
	verifier := NewHMACVerifier("key-secret", "webhook-secret")
	body := []byte(`{"event":"payment.captured"}`)

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, verifier.VerifyWebhook(body, sig))
	})

	t.Run("tampered body", func(t *testing.T) {
		assert.False(t, verifier.VerifyWebhook([]byte(`{"event":"payment.failed"}`), sig))
	})

	t.Run("payment secret doesn't verify webhooks", func(t *testing.T) {
		wrongMac := hmac.New(sha256.New, []byte("key-secret"))
		wrongMac.Write(body)
		assert.False(t, verifier.VerifyWebhook(body, hex.EncodeToString(wrongMac.Sum(nil))))
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		assert.False(t, verifier.VerifyWebhook(nil, sig))
	})
}
