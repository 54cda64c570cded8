package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/utils"
)

const DefaultRazorpayBaseURL = "https://api.razorpay.com"

// RazorpayConfig holds gateway credentials. An empty key id or secret leaves
// the gateway unconfigured; there are no fallback keys.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

// GatewayOrder is the gateway's answer to an order creation.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayService creates gateway orders and checks callback signatures.
type RazorpayService struct {
	config  RazorpayConfig
	client  *resty.Client
	breaker *CircuitBreaker
}

func NewRazorpayService(config RazorpayConfig) *RazorpayService {
	if config.BaseURL == "" {
		config.BaseURL = DefaultRazorpayBaseURL
	}
	if config.Currency == "" {
		config.Currency = "INR"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetBasicAuth(config.KeyID, config.KeySecret).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &RazorpayService{
		config:  config,
		client:  client,
		breaker: NewCircuitBreaker("razorpay"),
	}
}

func (rs *RazorpayService) Currency() string { return rs.config.Currency }

// SecretConfigured reports whether callbacks can be verified at all.
func (rs *RazorpayService) SecretConfigured() bool { return rs.config.KeySecret != "" }

// ValidateConfig returns a ConfigurationError when a credential is missing.
func (rs *RazorpayService) ValidateConfig() error {
	var missing []string
	if rs.config.KeyID == "" {
		missing = append(missing, "RAZORPAY_KEY_ID")
	}
	if rs.config.KeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}
	if len(missing) > 0 {
		return &utils.ConfigurationError{
			Component: utils.ErrGatewayNotConfigured.Component,
			Message:   strings.Join(missing, ", ") + " not set",
		}
	}
	return nil
}

// CreateOrder registers an amount (in paise) with the gateway.
func (rs *RazorpayService) CreateOrder(ctx context.Context, amount int64, receipt string) (*GatewayOrder, error) {
	if err := rs.ValidateConfig(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, utils.NewValidationError("amount", "amount must be a positive integer in minor units")
	}

	payload := map[string]interface{}{
		"amount":   amount,
		"currency": rs.config.Currency,
		"receipt":  receipt,
	}

	result, err := rs.breaker.Execute(func() (interface{}, error) {
		var order GatewayOrder
		var failure razorpayError
		resp, httpErr := rs.client.R().
			SetContext(ctx).
			SetBody(payload).
			SetResult(&order).
			SetError(&failure).
			Post("/v1/orders")
		if httpErr != nil {
			return nil, &utils.GatewayError{Message: "create order request failed", Err: httpErr}
		}
		if resp.StatusCode() != http.StatusOK {
			msg := failure.Error.Description
			if msg == "" {
				msg = resp.Status()
			}
			return nil, &utils.GatewayError{StatusCode: resp.StatusCode(), Message: msg}
		}
		if order.ID == "" {
			return nil, &utils.GatewayError{StatusCode: resp.StatusCode(), Message: "response without order id"}
		}
		return &order, nil
	})
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"amount":  amount,
			"receipt": receipt,
		}).Errorf("Razorpay create order failed: %v", err)
		return nil, err
	}

	order := result.(*GatewayOrder)
	utils.InfoLogger.WithFields(logrus.Fields{
		"gateway_order_id": order.ID,
		"amount":           order.Amount,
		"currency":         order.Currency,
	}).Info("Gateway order created")
	return order, nil
}

// VerifyPayment checks a checkout callback against the key secret.
func (rs *RazorpayService) VerifyPayment(orderID, paymentID, signature string) (bool, error) {
	if rs.config.KeySecret == "" {
		return false, utils.ErrGatewayNotConfigured
	}
	return VerifySignature(orderID, paymentID, signature, rs.config.KeySecret)
}

// Receipt builds the merchant-side receipt reference sent with an order.
func Receipt(now time.Time) string {
	return fmt.Sprintf("rcpt_%d", now.UnixMilli())
}
