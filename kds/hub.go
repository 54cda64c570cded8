// Package kds serves the kitchen display: a live snapshot of the most recent
// orders, replaced wholesale whenever any order changes.
package kds

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/metrics"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

const EventOrdersSnapshot = "orders_snapshot"

// Message is the envelope written to websocket and SSE clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Snapshot is the full list of recent orders, newest first.
type Snapshot struct {
	Version uint64         `json:"version"`
	At      time.Time      `json:"at"`
	Orders  []models.Order `json:"orders"`
}

type OrderLister interface {
	ListRecent(ctx context.Context, limit int, filter repository.OrderFilter) ([]models.Order, error)
}

// Hub fans order snapshots out to subscribers. Each subscriber holds at
// most one pending snapshot; a newer one replaces it.
type Hub struct {
	orders OrderLister
	limit  int

	refreshMu sync.Mutex

	mu       sync.Mutex
	version  uint64
	latest   *Snapshot
	subs     map[*Subscription]struct{}
	watchers map[string]map[*OrderWatch]struct{}

	AllowedOrigins []string
}

func NewHub(orders OrderLister, limit int) *Hub {
	if limit <= 0 {
		limit = repository.DefaultRecentLimit
	}
	return &Hub{
		orders:   orders,
		limit:    limit,
		subs:     make(map[*Subscription]struct{}),
		watchers: make(map[string]map[*OrderWatch]struct{}),
	}
}

type Subscription struct {
	C    <-chan Snapshot
	ch   chan Snapshot
	hub  *Hub
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		metrics.KDSSubscribers.Dec()
	})
}

// Subscribe registers a subscriber and hands it the current snapshot at once.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	h.mu.Lock()
	loaded := h.latest != nil
	h.mu.Unlock()
	if !loaded {
		if err := h.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	ch := make(chan Snapshot, 1)
	sub := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	if h.latest != nil {
		offer(ch, *h.latest)
	}
	h.mu.Unlock()

	metrics.KDSSubscribers.Inc()
	return sub, nil
}

// Latest returns the last published snapshot, if any.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

// Refresh reloads the recent orders and publishes them to every subscriber.
func (h *Hub) Refresh(ctx context.Context) error {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	orders, err := h.orders.ListRecent(ctx, h.limit, repository.OrderFilter{})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.version++
	snap := Snapshot{Version: h.version, At: time.Now(), Orders: orders}
	h.latest = &snap
	for sub := range h.subs {
		offer(sub.ch, snap)
	}
	return nil
}

// OrderChanged implements repository.OrderListener.
func (h *Hub) OrderChanged(ctx context.Context, order models.Order, change models.ChangeType) {
	h.mu.Lock()
	for w := range h.watchers[order.ID] {
		offer(w.ch, order)
	}
	h.mu.Unlock()

	if err := h.Refresh(ctx); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"change":   change,
		}).Errorf("Live order refresh failed: %v", err)
	}
}

// OrderWatch follows a single order for the customer tracking page.
type OrderWatch struct {
	C    <-chan models.Order
	ch   chan models.Order
	id   string
	hub  *Hub
	once sync.Once
}

func (w *OrderWatch) Close() {
	w.once.Do(func() {
		w.hub.mu.Lock()
		defer w.hub.mu.Unlock()
		delete(w.hub.watchers[w.id], w)
		if len(w.hub.watchers[w.id]) == 0 {
			delete(w.hub.watchers, w.id)
		}
	})
}

func (h *Hub) WatchOrder(orderID string) *OrderWatch {
	ch := make(chan models.Order, 1)
	w := &OrderWatch{C: ch, ch: ch, id: orderID, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[orderID] == nil {
		h.watchers[orderID] = make(map[*OrderWatch]struct{})
	}
	h.watchers[orderID][w] = struct{}{}
	return w
}

// offer replaces whatever is pending in ch with v. Callers hold h.mu, so
// there is a single sender per channel.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
