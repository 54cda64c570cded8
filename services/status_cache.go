package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

const (
	// order_status:{order_id} -> OrderStatusView JSON
	keyOrderStatus = "order_status:%s"

	DefaultStatusCacheTTL = 5 * time.Minute
)

// OrderStatusView is what the customer tracking page polls for.
type OrderStatusView struct {
	OrderID       string               `json:"orderId"`
	OrderStatus   models.OrderStatus   `json:"orderStatus"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func StatusViewOf(order models.Order) OrderStatusView {
	return OrderStatusView{
		OrderID:       order.ID,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		UpdatedAt:     order.UpdatedAt,
	}
}

// StatusCache keeps the latest status of each order in Redis. Writes made
// by this process arrive through the order repository; writes from other
// instances arrive through ChangeMonitor.Forward one poll interval later.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusCacheTTL
	}
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) Put(ctx context.Context, view OrderStatusView) error {
	b, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf(keyOrderStatus, view.OrderID), b, c.ttl).Err()
}

func (c *StatusCache) Get(ctx context.Context, orderID string) (*OrderStatusView, bool, error) {
	s, err := c.client.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var view OrderStatusView
	if err := json.Unmarshal(s, &view); err != nil {
		return nil, false, nil
	}
	return &view, true, nil
}

func (c *StatusCache) OrderChanged(ctx context.Context, order models.Order, _ models.ChangeType) {
	if err := c.Put(ctx, StatusViewOf(order)); err != nil {
		utils.ErrorLogger.WithField("order_id", order.ID).Warnf("Status cache write failed: %v", err)
	}
}
