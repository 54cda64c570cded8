package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/tastehub/utils"
)

func TestSignPayment_MatchesHMAC(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("s3cr3t"))
	mac.Write([]byte("order_1|pay_1"))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, SignPayment("order_1", "pay_1", "s3cr3t"))
}

func TestVerifySignature(t *testing.T) {
	sig := SignPayment("order_1", "pay_1", "s3cr3t")

	ok, err := VerifySignature("order_1", "pay_1", sig, "s3cr3t")
	require.NoError(t, err)
	assert.True(t, ok)

	flip := func(s string, i int) string {
		b := []byte(s)
		b[i] ^= 0x01
		return string(b)
	}

	cases := map[string][4]string{
		"order id":  {flip("order_1", 0), "pay_1", sig, "s3cr3t"},
		"payment":   {"order_1", flip("pay_1", 4), sig, "s3cr3t"},
		"signature": {"order_1", "pay_1", flip(sig, len(sig)-1), "s3cr3t"},
		"secret":    {"order_1", "pay_1", sig, flip("s3cr3t", 2)},
		"empty sig": {"order_1", "pay_1", "", "s3cr3t"},
		"uppercase": {"order_1", "pay_1", hexUpper(sig), "s3cr3t"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := VerifySignature(c[0], c[1], c[2], c[3])
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func hexUpper(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'a' && ch <= 'f' {
			b[i] = ch - 'a' + 'A'
		}
	}
	return string(b)
}

func TestVerifySignature_FailsClosedWithoutSecret(t *testing.T) {
	ok, err := VerifySignature("order_1", "pay_1", "anything", "")
	assert.False(t, ok)
	assert.ErrorIs(t, err, utils.ErrGatewayNotConfigured)
}
