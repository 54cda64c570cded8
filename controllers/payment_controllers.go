package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

// PaymentController keeps the gateway's wire contract, so it answers with
// bare JSON objects instead of the {status, message, data} envelope.
type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

type createOrderRequest struct {
	Amount int64 `json:"amount"`
}

type createOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// razorpay_* adalah nama field asli dari callback checkout
type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`

	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (r *verifyPaymentRequest) normalize() {
	if r.GatewayOrderID == "" {
		r.GatewayOrderID = r.RazorpayOrderID
	}
	if r.GatewayPaymentID == "" {
		r.GatewayPaymentID = r.RazorpayPaymentID
	}
	if r.Signature == "" {
		r.Signature = r.RazorpaySignature
	}
}

type verifyPaymentResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// CreateOrder -> POST /create-order
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	// kredensial dicek sebelum body dibaca
	if err := pc.Payments.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Razorpay is not configured"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be an integer in minor units"})
		return
	}

	order, err := pc.Payments.CreateGatewayOrder(c.Request.Context(), req.Amount)
	if err != nil {
		switch utils.StatusFor(err) {
		case http.StatusServiceUnavailable:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Razorpay is not configured"})
		case http.StatusBadRequest:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// gateway error dan repository error sama-sama 500 di kontrak ini
			utils.ErrorLogger.WithField("amount", req.Amount).Errorf("Create gateway order failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	c.JSON(http.StatusOK, createOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	})
}

// VerifyPayment -> POST /verify-payment
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	if !pc.Payments.CanVerify() {
		c.JSON(http.StatusServiceUnavailable, verifyPaymentResponse{Verified: false, Message: "Payment verification is not configured"})
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, verifyPaymentResponse{Verified: false, Message: "invalid request body"})
		return
	}
	req.normalize()

	verified, err := pc.Payments.VerifyPayment(c.Request.Context(), req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		code := utils.StatusFor(err)
		msg := err.Error()
		switch code {
		case http.StatusServiceUnavailable:
			msg = "Payment verification is not configured"
		case http.StatusBadRequest:
		default:
			utils.ErrorLogger.WithField("gateway_order_id", req.GatewayOrderID).Errorf("Verify payment failed: %v", err)
			code, msg = http.StatusInternalServerError, "Failed to verify payment"
		}
		c.JSON(code, verifyPaymentResponse{Verified: false, Message: msg})
		return
	}

	if !verified {
		c.JSON(http.StatusBadRequest, verifyPaymentResponse{Verified: false, Message: "Payment verification failed"})
		return
	}

	c.JSON(http.StatusOK, verifyPaymentResponse{Verified: true, Message: "Payment verified successfully"})
}
