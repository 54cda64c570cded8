package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/yeremiapane/tastehub/utils"
)

// SignPayment returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)),
// the signature the gateway attaches to a checkout callback.
func SignPayment(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the callback ids.
// Without a secret it refuses to answer.
func VerifySignature(orderID, paymentID, signature, secret string) (bool, error) {
	if secret == "" {
		return false, utils.ErrGatewayNotConfigured
	}
	expected := SignPayment(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
