package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

const maxLineQuantity = 99

type CheckoutLine struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// CheckoutRequest places an order from a session cart or from explicit lines.
// Explicit lines win when both are given.
type CheckoutRequest struct {
	SessionID        string               `json:"sessionId"`
	Items            []CheckoutLine       `json:"items"`
	TableNumber      string               `json:"tableNumber"`
	PaymentMethod    models.PaymentMethod `json:"paymentMethod"`
	GatewayOrderID   string               `json:"gatewayOrderId"`
	GatewayPaymentID string               `json:"gatewayPaymentId"`
	Signature        string               `json:"signature"`
	UserID           string               `json:"-"`
}

type OrderService struct {
	orders   *repository.OrderRepository
	menu     *repository.MenuRepository
	payments *PaymentService
	sessions *cart.Sessions
}

func NewOrderService(orders *repository.OrderRepository, menu *repository.MenuRepository, payments *PaymentService, sessions *cart.Sessions) *OrderService {
	return &OrderService{orders: orders, menu: menu, payments: payments, sessions: sessions}
}

// Checkout reprices the cart against the live menu, verifies gateway
// payments server-side and persists the order. Gateway orders are only
// written as paid after the signature matched.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	var store *cart.Store
	lines := req.Items

	if req.SessionID != "" {
		st, err := s.sessions.Open(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		store = st
		if len(lines) == 0 {
			for _, it := range st.Items() {
				lines = append(lines, CheckoutLine{MenuItemID: it.MenuItem.ID, Quantity: it.Quantity})
			}
		}
		if strings.TrimSpace(req.TableNumber) == "" {
			table, err := st.Table(ctx)
			if err != nil {
				return nil, fmt.Errorf("recall table number: %w", err)
			}
			req.TableNumber = table
		}
	}

	priced, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	draft, err := BuildOrder(priced, req.TableNumber, req.PaymentMethod, BuildOptions{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	if draft.PaymentMethod.ViaGateway() {
		if s.payments == nil {
			return nil, utils.ErrGatewayNotConfigured
		}
		verified, err := s.payments.VerifyPayment(ctx, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, utils.ErrVerificationFailed
		}
		draft.AttachPayment(req.GatewayOrderID, req.GatewayPaymentID)
	}

	id, err := s.orders.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.Clear(ctx); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"order_id":   id,
				"session_id": req.SessionID,
			}).Errorf("Order placed but cart could not be cleared: %v", err)
		}
	}

	return s.orders.Get(ctx, id)
}

// priceLines builds a cart from the requested lines using current menu prices.
func (s *OrderService) priceLines(ctx context.Context, lines []CheckoutLine) (cart.Cart, error) {
	var priced cart.Cart
	if len(lines) == 0 {
		return priced, nil
	}

	quantities := make(map[string]int, len(lines))
	var ids []string
	for _, l := range lines {
		if l.MenuItemID == "" {
			return priced, utils.NewValidationError("items", "menuItemId is required")
		}
		if l.Quantity < 1 {
			return priced, utils.NewValidationError("items", fmt.Sprintf("quantity for %s must be at least 1", l.MenuItemID))
		}
		if _, seen := quantities[l.MenuItemID]; !seen {
			ids = append(ids, l.MenuItemID)
		}
		quantities[l.MenuItemID] += l.Quantity
	}

	menu, err := s.menu.FindByIDs(ctx, ids)
	if err != nil {
		return priced, err
	}

	for _, id := range ids {
		item, ok := menu[id]
		switch {
		case !ok:
			return priced, utils.NewValidationError("items", fmt.Sprintf("menu item %s does not exist", id))
		case !item.Available:
			return priced, utils.NewValidationError("items", fmt.Sprintf("%s is currently unavailable", item.Name))
		case quantities[id] > maxLineQuantity:
			return priced, utils.NewValidationError("items", fmt.Sprintf("at most %d of %s per order", maxLineQuantity, item.Name))
		}
		priced.Add(item)
		priced.SetQuantity(id, quantities[id])
	}
	return priced, nil
}
