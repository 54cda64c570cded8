package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/metrics"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

// PaymentService menangani siklus hidup payment attempt: dibuat di gateway,
// diverifikasi lewat signature, lalu dipakai oleh satu order atau kedaluwarsa.
type PaymentService struct {
	gateway  *RazorpayService
	attempts *repository.PaymentAttemptRepository
	now      func() time.Time
}

func NewPaymentService(gateway *RazorpayService, attempts *repository.PaymentAttemptRepository) *PaymentService {
	return &PaymentService{gateway: gateway, attempts: attempts, now: time.Now}
}

func (s *PaymentService) Currency() string { return s.gateway.Currency() }

// CreateGatewayOrder creates a gateway order and records it as a payment attempt.
func (s *PaymentService) CreateGatewayOrder(ctx context.Context, amount int64) (*GatewayOrder, error) {
	order, err := s.gateway.CreateOrder(ctx, amount, Receipt(s.now()))
	if err != nil {
		return nil, err
	}
	if order.Amount == 0 {
		order.Amount = amount
	}
	if order.Currency == "" {
		order.Currency = s.gateway.Currency()
	}

	attempt := &models.PaymentAttempt{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return order, nil
}

// Ready reports whether gateway orders can be created. The error is a
// ConfigurationError while credentials are missing.
func (s *PaymentService) Ready() error {
	if err := s.gateway.ValidateConfig(); err != nil {
		metrics.PaymentVerifications.WithLabelValues("unconfigured").Inc()
		return err
	}
	return nil
}

// CanVerify reports whether the signing secret is present.
func (s *PaymentService) CanVerify() bool { return s.gateway.SecretConfigured() }

// VerifyPayment checks the callback signature and records the outcome on
// the payment attempt. A mismatch ends the attempt for good.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	if !s.gateway.SecretConfigured() {
		metrics.PaymentVerifications.WithLabelValues("unconfigured").Inc()
		return false, utils.ErrGatewayNotConfigured
	}

	switch {
	case orderID == "":
		return false, utils.NewValidationError("gatewayOrderId", "gateway order id is required")
	case paymentID == "":
		return false, utils.NewValidationError("gatewayPaymentId", "gateway payment id is required")
	case signature == "":
		return false, utils.NewValidationError("signature", "signature is required")
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"gateway_order_id":   orderID,
		"gateway_payment_id": paymentID,
	})

	verified, err := s.gateway.VerifyPayment(orderID, paymentID, signature)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("unconfigured").Inc()
		return false, err
	}

	if !verified {
		metrics.PaymentVerifications.WithLabelValues("mismatch").Inc()
		if _, err := s.attempts.MarkFailed(ctx, orderID); err != nil {
			utils.ErrorLogger.WithField("gateway_order_id", orderID).Errorf("Failed to mark payment attempt failed: %v", err)
		}
		log.Warn("Payment signature mismatch")
		return false, nil
	}

	metrics.PaymentVerifications.WithLabelValues("verified").Inc()
	marked, err := s.attempts.MarkVerified(ctx, orderID, paymentID)
	if err != nil {
		return false, err
	}
	if !marked {
		log.Warn("Verified payment has no open payment attempt")
	} else {
		log.Info("Payment verified")
	}
	return true, nil
}

// ExpireStale expires attempts created more than ttl ago that never verified.
func (s *PaymentService) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.attempts.ExpireCreatedBefore(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.PaymentAttemptsExpired.Add(float64(n))
		utils.InfoLogger.Printf("Expired %d payment attempts", n)
	}
	return n, nil
}
