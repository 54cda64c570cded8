package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/database"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return db
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func cashDraft(table string, price int64, qty int) *models.OrderDraft {
	line := models.OrderLineItem{MenuItemID: "m1", Name: "Margherita", Price: decimal.NewFromInt(price), Quantity: qty}
	return &models.OrderDraft{
		Items:         []models.OrderLineItem{line},
		TableNumber:   table,
		TotalAmount:   line.Subtotal(),
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusUnpaid,
		OrderStatus:   models.OrderStatusNew,
	}
}

func statusPtr(s models.OrderStatus) *models.OrderStatus { return &s }

func paymentPtr(s models.PaymentStatus) *models.PaymentStatus { return &s }

type recordingListener struct {
	mu     sync.Mutex
	events []models.ChangeType
	last   models.Order
}

func (l *recordingListener) OrderChanged(_ context.Context, order models.Order, change models.ChangeType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, change)
	l.last = order
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	clock := &fakeClock{t: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
	repo := NewOrderRepository(db).WithClock(clock.Now)
	listener := &recordingListener{}
	repo.AddListener(listener)
	ctx := context.Background()

	id, err := repo.Create(ctx, cashDraft("5", 299, 1))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	order, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "5", order.TableNumber)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(299)))
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusNew, order.OrderStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Margherita", order.Items[0].Name)
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)

	assert.Equal(t, []models.ChangeType{models.ChangeCreated}, listener.events)
	assert.Equal(t, id, listener.last.ID)
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestOrderRepository_CreateRejectsEmptyDraft(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	_, err := repo.Create(context.Background(), &models.OrderDraft{TableNumber: "1"})
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
}

func TestOrderRepository_ListRecentNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	clock := &fakeClock{t: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
	repo := NewOrderRepository(db).WithClock(clock.Now)
	ctx := context.Background()

	var ids []string
	for _, table := range []string{"1", "2", "1", "3"} {
		id, err := repo.Create(ctx, cashDraft(table, 100, 2))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	orders, err := repo.ListRecent(ctx, 3, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, ids[3], orders[0].ID)
	assert.Equal(t, ids[2], orders[1].ID)
	assert.Equal(t, ids[1], orders[2].ID)
	assert.Len(t, orders[0].Items, 1)

	byTable, err := repo.ListRecent(ctx, 0, OrderFilter{TableNumber: "1"})
	require.NoError(t, err)
	require.Len(t, byTable, 2)
	assert.Equal(t, ids[2], byTable[0].ID)
}

func TestOrderRepository_StatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, cashDraft("5", 299, 1))
	require.NoError(t, err)

	order, err := repo.Update(ctx, id, StatusPatch{OrderStatus: statusPtr(models.OrderStatusPreparing)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.OrderStatus)

	order, err = repo.Update(ctx, id, StatusPatch{OrderStatus: statusPtr(models.OrderStatusServed)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusServed, order.OrderStatus)

	_, err = repo.Update(ctx, id, StatusPatch{OrderStatus: statusPtr(models.OrderStatusNew)})
	var transitionErr *utils.InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, "served", transitionErr.From)
	assert.Equal(t, "new", transitionErr.To)

	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusServed, stored.OrderStatus)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(299)))
}

func TestOrderRepository_SkippingStepIsRejected(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()
	id, err := repo.Create(ctx, cashDraft("2", 50, 1))
	require.NoError(t, err)

	_, err = repo.Update(ctx, id, StatusPatch{OrderStatus: statusPtr(models.OrderStatusServed)})
	assert.Equal(t, 409, utils.StatusFor(err))

	_, err = repo.Update(ctx, id, StatusPatch{OrderStatus: statusPtr("ready")})
	assert.Equal(t, 400, utils.StatusFor(err))
}

func TestOrderRepository_SameStatusIsNoop(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	listener := &recordingListener{}
	repo.AddListener(listener)
	ctx := context.Background()

	id, err := repo.Create(ctx, cashDraft("2", 50, 1))
	require.NoError(t, err)
	before, err := repo.Get(ctx, id)
	require.NoError(t, err)

	after, err := repo.Update(ctx, id, StatusPatch{OrderStatus: statusPtr(models.OrderStatusNew)})
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, []models.ChangeType{models.ChangeCreated}, listener.events)
}

func TestOrderRepository_PaymentReconciliation(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()
	id, err := repo.Create(ctx, cashDraft("9", 120, 2))
	require.NoError(t, err)

	order, err := repo.Update(ctx, id, StatusPatch{PaymentStatus: paymentPtr(models.PaymentStatusPaid)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	_, err = repo.Update(ctx, id, StatusPatch{PaymentStatus: paymentPtr(models.PaymentStatusUnpaid)})
	var transitionErr *utils.InvalidTransitionError
	assert.True(t, errors.As(err, &transitionErr))
}

func TestOrderRepository_GatewayOrderConsumesAttempt(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderRepository(db)
	attempts := NewPaymentAttemptRepository(db)
	ctx := context.Background()

	require.NoError(t, attempts.Create(ctx, &models.PaymentAttempt{ID: "order_1", Amount: 29900, Currency: "INR"}))
	ok, err := attempts.MarkVerified(ctx, "order_1", "pay_1")
	require.NoError(t, err)
	require.True(t, ok)

	draft := cashDraft("5", 299, 1)
	draft.PaymentMethod = models.PaymentMethodUPI
	draft.PaymentStatus = models.PaymentStatusPending
	draft.AttachPayment("order_1", "pay_1")
	require.Equal(t, models.PaymentStatusPaid, draft.PaymentStatus)

	id, err := orders.Create(ctx, draft)
	require.NoError(t, err)
	order, err := orders.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, order.GatewayPaymentID)
	assert.Equal(t, "pay_1", *order.GatewayPaymentID)

	attempt, err := attempts.Get(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptConsumed, attempt.Status)

	// pembayaran yang sama tidak bisa dipakai dua kali
	_, err = orders.Create(ctx, draft)
	assert.ErrorIs(t, err, utils.ErrVerificationFailed)
}

func TestOrderRepository_GatewayAmountMismatchCreatesNothing(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderRepository(db)
	attempts := NewPaymentAttemptRepository(db)
	ctx := context.Background()

	require.NoError(t, attempts.Create(ctx, &models.PaymentAttempt{ID: "order_2", Amount: 100, Currency: "INR"}))

	draft := cashDraft("5", 299, 1)
	draft.PaymentMethod = models.PaymentMethodCard
	draft.AttachPayment("order_2", "pay_2")

	_, err := orders.Create(ctx, draft)
	assert.ErrorIs(t, err, utils.ErrVerificationFailed)

	list, err := orders.ListRecent(ctx, 10, OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	attempt, err := attempts.Get(ctx, "order_2")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptCreated, attempt.Status)
}

func TestOrderRepository_LatestUpdateAndStats(t *testing.T) {
	db := setupTestDB(t)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewOrderRepository(db).WithClock(clock.Now)
	ctx := context.Background()

	latest, err := repo.LatestUpdate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	a, err := repo.Create(ctx, cashDraft("1", 100, 1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, cashDraft("2", 250, 2))
	require.NoError(t, err)
	updated, err := repo.Update(ctx, a, StatusPatch{PaymentStatus: paymentPtr(models.PaymentStatusPaid)})
	require.NoError(t, err)

	latest, err = repo.LatestUpdate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Equal(updated.UpdatedAt))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.ByOrderStatus[models.OrderStatusNew])
	assert.Equal(t, int64(1), stats.ByPaymentStatus[models.PaymentStatusPaid])
	assert.True(t, stats.PaidRevenue.Equal(decimal.NewFromInt(100)), stats.PaidRevenue.String())
}

func TestOrderRepository_UpdatedSince(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	repo := NewOrderRepository(db).WithClock(clock.Now)
	ctx := context.Background()

	a, err := repo.Create(ctx, cashDraft("1", 100, 1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, cashDraft("2", 250, 2))
	require.NoError(t, err)
	mark, err := repo.LatestUpdate(ctx)
	require.NoError(t, err)

	clock.t = start.Add(time.Minute)
	_, err = repo.Update(ctx, a, StatusPatch{OrderStatus: statusPtr(models.OrderStatusPreparing)})
	require.NoError(t, err)

	changed, err := repo.UpdatedSince(ctx, mark, 0)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, a, changed[0].ID)
	assert.Equal(t, models.OrderStatusPreparing, changed[0].OrderStatus)
	assert.Len(t, changed[0].Items, 1)
}

func TestPaymentAttemptRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	now := start
	attempts := NewPaymentAttemptRepository(db).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, attempts.Create(ctx, &models.PaymentAttempt{ID: "order_old", Amount: 500, Currency: "INR"}))
	require.NoError(t, attempts.Create(ctx, &models.PaymentAttempt{ID: "order_bad", Amount: 500, Currency: "INR"}))
	now = start.Add(time.Hour)
	require.NoError(t, attempts.Create(ctx, &models.PaymentAttempt{ID: "order_new", Amount: 500, Currency: "INR"}))

	ok, err := attempts.MarkFailed(ctx, "order_bad")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = attempts.MarkVerified(ctx, "order_bad", "pay_x")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := attempts.ExpireCreatedBefore(ctx, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	old, err := attempts.Get(ctx, "order_old")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptExpired, old.Status)

	fresh, err := attempts.Get(ctx, "order_new")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptCreated, fresh.Status)

	_, err = attempts.Get(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestPaymentAttemptRepository_LatePaymentOnExpiredAttempt(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	now := start
	attempts := NewPaymentAttemptRepository(db).WithClock(func() time.Time { return now })
	orders := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, attempts.Create(ctx, &models.PaymentAttempt{ID: "order_late", Amount: 29900, Currency: "INR"}))
	now = start.Add(time.Hour)
	n, err := attempts.ExpireCreatedBefore(ctx, start.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// pelanggan baru membayar setelah attempt kedaluwarsa
	ok, err := attempts.MarkVerified(ctx, "order_late", "pay_late")
	require.NoError(t, err)
	assert.True(t, ok)

	draft := cashDraft("3", 299, 1)
	draft.PaymentMethod = models.PaymentMethodUPI
	draft.AttachPayment("order_late", "pay_late")
	id, err := orders.Create(ctx, draft)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	attempt, err := attempts.Get(ctx, "order_late")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptConsumed, attempt.Status)
}

func TestMenuRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	menu := NewMenuRepository(db)
	ctx := context.Background()

	_, err := database.SeedMenu(db)
	require.NoError(t, err)

	items, err := menu.List(ctx, MenuFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		ordered := prev.Category < cur.Category || (prev.Category == cur.Category && prev.Name <= cur.Name)
		assert.True(t, ordered, "%s/%s before %s/%s", prev.Category, prev.Name, cur.Category, cur.Name)
	}

	drinks, err := menu.List(ctx, MenuFilter{Category: models.CategoryDrinks})
	require.NoError(t, err)
	assert.Len(t, drinks, 2)

	invalid := &models.MenuItem{Name: "Free Water", Price: decimal.Zero, Category: models.CategoryDrinks}
	assert.Equal(t, 400, utils.StatusFor(menu.Create(ctx, invalid)))

	soda := &models.MenuItem{Name: "Lime Soda", Price: decimal.NewFromInt(90), Category: models.CategoryDrinks, Available: true}
	require.NoError(t, menu.Create(ctx, soda))
	require.NotEmpty(t, soda.ID)

	off, err := menu.SetAvailability(ctx, soda.ID, false)
	require.NoError(t, err)
	assert.False(t, off.Available)

	available, err := menu.List(ctx, MenuFilter{Category: models.CategoryDrinks, AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	found, err := menu.FindByIDs(ctx, []string{soda.ID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.False(t, found[soda.ID].Available)

	soda.Price = decimal.NewFromInt(95)
	soda.Available = true
	saved, err := menu.Save(ctx, soda.ID, soda)
	require.NoError(t, err)
	assert.True(t, saved.Price.Equal(decimal.NewFromInt(95)))

	require.NoError(t, menu.Delete(ctx, soda.ID))
	assert.ErrorIs(t, menu.Delete(ctx, soda.ID), utils.ErrNotFound)
	_, err = menu.Get(ctx, soda.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
