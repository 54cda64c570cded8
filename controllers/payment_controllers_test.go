package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/tastehub/services"
)

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/create-order", map[string]interface{}{"amount": 29900}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{"orderId": "order_1", "amount": float64(29900), "currency": "INR"}, resp)

	attempt, err := env.attempts.Get(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, int64(29900), attempt.Amount)
}

func TestCreateOrder_Failures(t *testing.T) {
	t.Run("unconfigured gateway", func(t *testing.T) {
		env := newTestEnvWith(t, envOptions{})
		w := env.do(t, http.MethodPost, "/create-order", map[string]interface{}{"amount": 100}, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Zero(t, env.gatewayCalls.Load())
	})

	t.Run("unconfigured gateway wins over a bad body", func(t *testing.T) {
		env := newTestEnvWith(t, envOptions{})
		for _, body := range []string{`{"amount":299.5}`, `{"amount":"abc"}`, `[1,2]`} {
			w := env.do(t, http.MethodPost, "/create-order", json.RawMessage(body), "")
			assert.Equal(t, http.StatusServiceUnavailable, w.Code, body)
			assert.JSONEq(t, `{"error":"Razorpay is not configured"}`, w.Body.String())
		}
	})

	t.Run("gateway error", func(t *testing.T) {
		env := newTestEnv(t)
		env.gatewayStatus.Store(http.StatusInternalServerError)
		w := env.do(t, http.MethodPost, "/create-order", map[string]interface{}{"amount": 100}, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to create order"}`, w.Body.String())
	})

	t.Run("fractional amount", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/create-order", map[string]interface{}{"amount": 299.5}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/create-order", map[string]interface{}{"amount": 0}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, env.gatewayCalls.Load())
	})
}

func TestVerifyPayment(t *testing.T) {
	good := services.SignPayment("order_1", "pay_1", testSecret)

	tests := []struct {
		name     string
		secret   string
		body     map[string]string
		wantCode int
		verified bool
	}{
		{
			name:     "matching signature",
			secret:   testSecret,
			body:     map[string]string{"gatewayOrderId": "order_1", "gatewayPaymentId": "pay_1", "signature": good},
			wantCode: http.StatusOK,
			verified: true,
		},
		{
			name:     "checkout callback field names",
			secret:   testSecret,
			body:     map[string]string{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": good},
			wantCode: http.StatusOK,
			verified: true,
		},
		{
			name:     "tampered payment id",
			secret:   testSecret,
			body:     map[string]string{"gatewayOrderId": "order_1", "gatewayPaymentId": "pay_2", "signature": good},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing signature",
			secret:   testSecret,
			body:     map[string]string{"gatewayOrderId": "order_1", "gatewayPaymentId": "pay_1"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "secret absent",
			body:     map[string]string{"gatewayOrderId": "order_1", "gatewayPaymentId": "pay_1", "signature": good},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWith(t, envOptions{gatewaySecret: tt.secret})
			w := env.do(t, http.MethodPost, "/verify-payment", tt.body, "")
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())

			var resp verifyResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.verified, resp.Verified)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestVerifyPayment_Messages(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/verify-payment", map[string]string{
		"gatewayOrderId": "order_1", "gatewayPaymentId": "pay_1", "signature": services.SignPayment("order_1", "pay_1", testSecret),
	}, "")
	assert.JSONEq(t, `{"verified":true,"message":"Payment verified successfully"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/verify-payment", map[string]string{
		"gatewayOrderId": "order_1", "gatewayPaymentId": "pay_1", "signature": "00",
	}, "")
	assert.JSONEq(t, `{"verified":false,"message":"Payment verification failed"}`, w.Body.String())
}

func TestVerifyPayment_UnconfiguredBadBody(t *testing.T) {
	env := newTestEnvWith(t, envOptions{})

	for _, body := range []string{`{"signature":5}`, `"order_1"`} {
		w := env.do(t, http.MethodPost, "/verify-payment", json.RawMessage(body), "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, body)

		var resp verifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Verified)
	}
}
