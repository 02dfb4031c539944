package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA256 the gateway attaches to a
// completed checkout: the mac of "orderID|paymentID" under the
// shared key secret.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a client-supplied signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected, err := hex.DecodeString(Sign(orderID, paymentID, secret))
	if err != nil {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, provided)
}
