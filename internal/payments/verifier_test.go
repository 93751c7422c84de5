package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"stagepass/internal/shared/config"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	const secret = "test-key-secret"
	verifier := NewVerifier(config.PaymentsConfig{KeySecret: secret})

	t.Run("accepts valid signature", func(t *testing.T) {
		sig := sign(secret, "order_123", "pay_456")
		assert.True(t, verifier.Verify("order_123", "pay_456", sig))
	})

	t.Run("rejects tampered order", func(t *testing.T) {
		sig := sign(secret, "order_123", "pay_456")
		assert.False(t, verifier.Verify("order_999", "pay_456", sig))
	})

	t.Run("rejects tampered payment", func(t *testing.T) {
		sig := sign(secret, "order_123", "pay_456")
		assert.False(t, verifier.Verify("order_123", "pay_999", sig))
	})

	t.Run("rejects signature from a different key", func(t *testing.T) {
		sig := sign("other-secret", "order_123", "pay_456")
		assert.False(t, verifier.Verify("order_123", "pay_456", sig))
	})

	t.Run("rejects garbage signature", func(t *testing.T) {
		assert.False(t, verifier.Verify("order_123", "pay_456", "not-a-signature"))
	})

	t.Run("rejects empty signature", func(t *testing.T) {
		assert.False(t, verifier.Verify("order_123", "pay_456", ""))
	})

	t.Run("field swap changes the message", func(t *testing.T) {
		sig := sign(secret, "pay_456", "order_123")
		assert.False(t, verifier.Verify("order_123", "pay_456", sig))
	})
}
