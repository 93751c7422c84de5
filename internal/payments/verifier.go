// Package payments verifies payment proofs issued by the external payment
// gateway. Only signature verification lives here; order creation and
// checkout flows belong to the gateway itself.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"stagepass/internal/shared/config"
)

// Proof is the opaque payment payload forwarded by booking clients.
type Proof struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Verifier checks a payment proof against the gateway's signing scheme.
type Verifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type hmacVerifier struct {
	secret []byte
}

// NewVerifier returns a Verifier for the gateway's HMAC-SHA256 scheme: the
// signature is the hex digest of "orderID|paymentID" under the key secret.
func NewVerifier(cfg config.PaymentsConfig) Verifier {
	return &hmacVerifier{secret: []byte(cfg.KeySecret)}
}

func (v *hmacVerifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
