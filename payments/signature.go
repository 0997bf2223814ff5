package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

var _ SignatureVerifier = &HMACVerifier{}

// HMACVerifier recomputes Razorpay signatures with the shared secrets only the
// server and the gateway hold. Payment signatures are HMAC-SHA256 over
// "orderId|paymentId" with the key secret; webhook signatures are HMAC-SHA256
// over the raw delivery body with the webhook secret.
type HMACVerifier struct {
	keySecret     []byte
	webhookSecret []byte
}

func NewHMACVerifier(keySecret, webhookSecret string) *HMACVerifier {
	return &HMACVerifier{
		keySecret:     []byte(keySecret),
		webhookSecret: []byte(webhookSecret),
	}
}

func (v *HMACVerifier) VerifyPayment(orderId, paymentId, signature string) bool {
	if orderId == "" || paymentId == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.keySecret)
	fmt.Fprintf(mac, "%s|%s", orderId, paymentId)

	return equalHex(mac.Sum(nil), signature)
}

func (v *HMACVerifier) VerifyWebhook(body []byte, signature string) bool {
	if len(body) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, v.webhookSecret)
	mac.Write(body)

	return equalHex(mac.Sum(nil), signature)
}

func equalHex(expected []byte, signature string) bool {
	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	// hmac.Equal is constant time, so a forged signature can't be probed
	// byte by byte.
	return hmac.Equal(expected, supplied)
}
