package services

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

// BuildOptions carries the optional parts of a draft.
type BuildOptions struct {
	UserID           string
	GatewayOrderID   string
	GatewayPaymentID string
}

// BuildOrder turns a cart snapshot into an order draft. The table number is
// checked first, then the payment method, then the cart.
//
// Cash drafts start unpaid. Gateway drafts stay pending until a gateway
// payment id is attached, which only happens after verification.
func BuildOrder(c cart.Cart, tableNumber string, method models.PaymentMethod, opts BuildOptions) (*models.OrderDraft, error) {
	tableNumber = strings.TrimSpace(tableNumber)
	if tableNumber == "" {
		return nil, utils.NewValidationError("tableNumber", "table number is required")
	}
	if !method.Valid() {
		return nil, utils.NewValidationError("paymentMethod", fmt.Sprintf("unsupported payment method %q", method))
	}
	if c.IsEmpty() {
		return nil, utils.ErrEmptyCart
	}

	items := c.Items()
	lines := make([]models.OrderLineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.OrderLineItem{
			MenuItemID: it.MenuItem.ID,
			Name:       it.MenuItem.Name,
			Price:      it.MenuItem.Price,
			Quantity:   it.Quantity,
		})
	}

	draft := &models.OrderDraft{
		Items:         lines,
		TableNumber:   tableNumber,
		UserID:        opts.UserID,
		TotalAmount:   c.TotalPrice(),
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusNew,
	}
	if method == models.PaymentMethodCash {
		draft.PaymentStatus = models.PaymentStatusUnpaid
	}
	if opts.GatewayOrderID != "" || opts.GatewayPaymentID != "" {
		draft.AttachPayment(opts.GatewayOrderID, opts.GatewayPaymentID)
	}
	return draft, nil
}
