package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/kds"
	"github.com/yeremiapane/tastehub/middlewares"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

const sseKeepAlive = 25 * time.Second

type OrderController struct {
	Checkout *services.OrderService
	Orders   *repository.OrderRepository
	Hub      *kds.Hub
	// Cache boleh nil kalau Redis tidak dipakai
	Cache *services.StatusCache
	// Closing ditutup saat server shutdown supaya stream SSE selesai
	Closing <-chan struct{}
}

func NewOrderController(checkout *services.OrderService, orders *repository.OrderRepository, hub *kds.Hub, cache *services.StatusCache) *OrderController {
	return &OrderController{Checkout: checkout, Orders: orders, Hub: hub, Cache: cache}
}

// PlaceOrder -> POST /orders
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if user, ok := middlewares.CurrentUser(c); ok {
		req.UserID = user.UserID
	}

	order, err := oc.Checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"table":          req.TableNumber,
			"payment_method": req.PaymentMethod,
		}).Infof("Checkout rejected: %v", err)
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetOrder -> GET /orders/:order_id
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", order)
}

// GetOrderStatus -> GET /orders/:order_id/status, served from Redis when possible.
func (oc *OrderController) GetOrderStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("order_id")

	if oc.Cache != nil {
		view, ok, err := oc.Cache.Get(ctx, id)
		if err != nil {
			utils.ErrorLogger.WithField("order_id", id).Warnf("Status cache read failed: %v", err)
		} else if ok {
			utils.RespondJSON(c, http.StatusOK, "Order status", view)
			return
		}
	}

	order, err := oc.Orders.Get(ctx, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	view := services.StatusViewOf(*order)
	if oc.Cache != nil {
		if err := oc.Cache.Put(ctx, view); err != nil {
			utils.ErrorLogger.WithField("order_id", id).Warnf("Status cache write failed: %v", err)
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", view)
}

// StreamOrder -> GET /orders/:order_id/stream (server-sent events).
// The stream ends once the order reaches a terminal status.
func (oc *OrderController) StreamOrder(c *gin.Context) {
	id := c.Param("order_id")

	// watch dulu, baru baca; update di antaranya tidak hilang
	watch := oc.Hub.WatchOrder(id)
	defer watch.Close()

	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("order", services.StatusViewOf(*order))
	c.Writer.Flush()
	if order.OrderStatus.Terminal() {
		return
	}

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case updated := <-watch.C:
			c.SSEvent("order", services.StatusViewOf(updated))
			c.Writer.Flush()
			if updated.OrderStatus.Terminal() {
				return
			}
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		case <-oc.Closing:
			return
		}
	}
}
