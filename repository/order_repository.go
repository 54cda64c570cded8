package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/metrics"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

const (
	DefaultRecentLimit = 50
	maxRecentLimit     = 200
)

// OrderListener is notified after an order write has been committed.
type OrderListener interface {
	OrderChanged(ctx context.Context, order models.Order, change models.ChangeType)
}

// OrderListenerFunc adapts a function to OrderListener.
type OrderListenerFunc func(ctx context.Context, order models.Order, change models.ChangeType)

func (f OrderListenerFunc) OrderChanged(ctx context.Context, order models.Order, change models.ChangeType) {
	f(ctx, order, change)
}

// StatusPatch is the only mutation allowed on a stored order.
type StatusPatch struct {
	OrderStatus   *models.OrderStatus   `json:"orderStatus,omitempty"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus,omitempty"`
}

type OrderFilter struct {
	OrderStatus   models.OrderStatus
	PaymentStatus models.PaymentStatus
	UserID        string
	TableNumber   string
}

type OrderStats struct {
	ByOrderStatus   map[models.OrderStatus]int64   `json:"byOrderStatus"`
	ByPaymentStatus map[models.PaymentStatus]int64 `json:"byPaymentStatus"`
	PaidRevenue     decimal.Decimal                `json:"paidRevenue"`
	TotalOrders     int64                          `json:"totalOrders"`
}

// OrderRepository is the sole writer of order identity and timestamps.
type OrderRepository struct {
	db  *gorm.DB
	now func() time.Time

	mu        sync.RWMutex
	listeners []OrderListener
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

// WithClock replaces the time source, used by tests.
func (r *OrderRepository) WithClock(now func() time.Time) *OrderRepository {
	r.now = now
	return r
}

func (r *OrderRepository) AddListener(l OrderListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *OrderRepository) notify(ctx context.Context, order models.Order, change models.ChangeType) {
	r.mu.RLock()
	listeners := append([]OrderListener(nil), r.listeners...)
	r.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	for _, l := range listeners {
		l.OrderChanged(ctx, order, change)
	}
}

// Create persists the draft in one transaction and returns the new id.
// A draft carrying a gateway order id consumes the matching payment attempt
// in the same transaction, so one gateway payment can pay for one order only.
func (r *OrderRepository) Create(ctx context.Context, draft *models.OrderDraft) (string, error) {
	if draft == nil || len(draft.Items) == 0 {
		return "", utils.ErrEmptyCart
	}

	now := r.now()
	order := models.Order{
		ID:            uuid.NewString(),
		TableNumber:   draft.TableNumber,
		TotalAmount:   draft.TotalAmount,
		PaymentMethod: draft.PaymentMethod,
		PaymentStatus: draft.PaymentStatus,
		OrderStatus:   draft.OrderStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if draft.UserID != "" {
		order.UserID = &draft.UserID
	}
	if draft.GatewayOrderID != "" {
		order.GatewayOrderID = &draft.GatewayOrderID
	}
	if draft.GatewayPaymentID != "" {
		order.GatewayPaymentID = &draft.GatewayPaymentID
	}
	for _, it := range draft.Items {
		it.ID = 0
		it.OrderID = order.ID
		order.Items = append(order.Items, it)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.PaymentMethod.ViaGateway() && order.PaymentStatus == models.PaymentStatusPaid {
			if err := consumeAttempt(tx, draft, now); err != nil {
				return err
			}
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrVerificationFailed) {
			return "", err
		}
		return "", &utils.RepositoryError{Op: "create order", Err: err}
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"order_id":       order.ID,
		"table":          order.TableNumber,
		"payment_method": order.PaymentMethod,
		"payment_status": order.PaymentStatus,
		"total":          order.TotalAmount.StringFixed(2),
	}).Info("Order created")

	metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod), string(order.PaymentStatus)).Inc()
	metrics.OrderAmount.Observe(order.TotalAmount.InexactFloat64())

	r.notify(ctx, order, models.ChangeCreated)
	return order.ID, nil
}

func consumeAttempt(tx *gorm.DB, draft *models.OrderDraft, now time.Time) error {
	res := tx.Model(&models.PaymentAttempt{}).
		Where("id = ? AND amount = ? AND status IN ?", draft.GatewayOrderID,
			utils.ToMinorUnits(draft.TotalAmount),
			[]models.AttemptStatus{models.AttemptCreated, models.AttemptVerified}).
		Where("(gateway_payment_id IS NULL OR gateway_payment_id = ?)", draft.GatewayPaymentID).
		Updates(map[string]interface{}{
			"status":             models.AttemptConsumed,
			"gateway_payment_id": draft.GatewayPaymentID,
			"updated_at":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gateway order %s cannot settle this order: %w", draft.GatewayOrderID, utils.ErrVerificationFailed)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, &utils.RepositoryError{Op: "get order", Err: err}
	}
	return &order, nil
}

func orderItemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// ListRecent returns orders newest first.
func (r *OrderRepository) ListRecent(ctx context.Context, limit int, filter OrderFilter) ([]models.Order, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items", orderItemsByID)
	if filter.OrderStatus != "" {
		q = q.Where("order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.TableNumber != "" {
		q = q.Where("table_number = ?", filter.TableNumber)
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Order("created_at DESC").Order("id").Limit(limit).Find(&orders).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Update applies a status patch. Each field must be a valid successor of its
// current value; re-applying the current value is a no-op.
func (r *OrderRepository) Update(ctx context.Context, id string, patch StatusPatch) (*models.Order, error) {
	if patch.OrderStatus == nil && patch.PaymentStatus == nil {
		return nil, utils.NewValidationError("status", "orderStatus or paymentStatus is required")
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if to := patch.OrderStatus; to != nil && *to != current.OrderStatus {
		if !to.Valid() {
			return nil, utils.NewValidationError("orderStatus", fmt.Sprintf("unknown order status %q", *to))
		}
		if !models.CanTransition(current.OrderStatus, *to) {
			return nil, &utils.InvalidTransitionError{Kind: "order status", From: string(current.OrderStatus), To: string(*to)}
		}
		changes["order_status"] = *to
	}
	if to := patch.PaymentStatus; to != nil && *to != current.PaymentStatus {
		if !to.Valid() {
			return nil, utils.NewValidationError("paymentStatus", fmt.Sprintf("unknown payment status %q", *to))
		}
		if !models.CanTransitionPayment(current.PaymentStatus, *to) {
			return nil, &utils.InvalidTransitionError{Kind: "payment status", From: string(current.PaymentStatus), To: string(*to)}
		}
		changes["payment_status"] = *to
	}
	if len(changes) == 0 {
		return current, nil
	}

	now := r.now()
	changes["updated_at"] = now

	// status lama ikut di WHERE supaya dua update bersamaan tidak saling timpa
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND order_status = ? AND payment_status = ?", id, current.OrderStatus, current.PaymentStatus).
		Updates(changes)
	if res.Error != nil {
		return nil, &utils.RepositoryError{Op: "update order", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, &utils.InvalidTransitionError{Kind: "order", From: string(current.OrderStatus), To: "a concurrently modified state"}
	}

	from := current.OrderStatus
	if to, ok := changes["order_status"].(models.OrderStatus); ok {
		current.OrderStatus = to
		metrics.OrderStatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	}
	if to, ok := changes["payment_status"].(models.PaymentStatus); ok {
		current.PaymentStatus = to
	}
	current.UpdatedAt = now

	utils.InfoLogger.WithFields(map[string]interface{}{
		"order_id":       id,
		"order_status":   current.OrderStatus,
		"payment_status": current.PaymentStatus,
	}).Info("Order updated")

	r.notify(ctx, *current, models.ChangeUpdated)
	return current, nil
}

// LatestUpdate returns the newest updated_at across all orders, zero when empty.
func (r *OrderRepository) LatestUpdate(ctx context.Context) (time.Time, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Select("id", "updated_at").Order("updated_at DESC").Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, &utils.RepositoryError{Op: "latest update", Err: err}
	}
	return order.UpdatedAt, nil
}

// UpdatedSince lists orders written after since, oldest write first.
func (r *OrderRepository) UpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items", orderItemsByID).
		Where("updated_at > ?", since).
		Order("updated_at ASC").Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, &utils.RepositoryError{Op: "orders updated since", Err: err}
	}
	return orders, nil
}

func (r *OrderRepository) Stats(ctx context.Context) (*OrderStats, error) {
	stats := &OrderStats{
		ByOrderStatus:   map[models.OrderStatus]int64{},
		ByPaymentStatus: map[models.PaymentStatus]int64{},
		PaidRevenue:     decimal.Zero,
	}

	var byOrder []struct {
		OrderStatus models.OrderStatus
		Count       int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("order_status, COUNT(*) AS count").
		Group("order_status").
		Scan(&byOrder).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "order stats", Err: err}
	}
	for _, row := range byOrder {
		stats.ByOrderStatus[row.OrderStatus] = row.Count
		stats.TotalOrders += row.Count
	}

	var byPayment []struct {
		PaymentStatus models.PaymentStatus
		Count         int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("payment_status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&byPayment).Error; err != nil {
		return nil, &utils.RepositoryError{Op: "order stats", Err: err}
	}
	for _, row := range byPayment {
		stats.ByPaymentStatus[row.PaymentStatus] = row.Count
	}

	row := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", models.PaymentStatusPaid).
		Row()
	if err := row.Scan(&stats.PaidRevenue); err != nil {
		return nil, &utils.RepositoryError{Op: "order stats", Err: err}
	}
	return stats, nil
}
