package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingSecret means the signing secret was never configured. This is a
// deployment problem, not a verification failure, so it surfaces as an error
// instead of a false result.
var ErrMissingSecret = errors.New("signature: signing secret not configured")

// VerifyPaymentSignature checks the checkout signature the gateway hands the
// client: HMAC-SHA256 over "orderID|paymentID" with the key secret, hex encoded.
func VerifyPaymentSignature(orderID, paymentID, sig, secret string) (bool, error) {
	if secret == "" {
		return false, ErrMissingSecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected)), nil
}

// VerifyWebhookSignature checks the webhook signature over the exact raw bytes
// received. The body must never be re-serialized before verification: key order
// and whitespace changes break the digest.
//
// An empty webhook secret fails closed.
func VerifyWebhookSignature(body []byte, sig, secret string) bool {
	if secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected))
}

// Sign computes the hex HMAC-SHA256 of payload with secret. Used by tests and
// by the stub gateway.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
