package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

// Refresher reloads a live view from the database.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// LatestUpdater reports the newest order write.
type LatestUpdater interface {
	LatestUpdate(ctx context.Context) (time.Time, error)
}

// ChangedOrderLister lists orders written after a point in time.
type ChangedOrderLister interface {
	UpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.Order, error)
}

// ChangeMonitor is the periodic re-fetch fallback for the live order view.
// Writes made through this process reach the hub directly; the monitor
// picks up writes from other instances sharing the database.
type ChangeMonitor struct {
	orders   LatestUpdater
	hub      Refresher
	Interval time.Duration

	changed   ChangedOrderLister
	followers []repository.OrderListener

	lastSeen time.Time
	StopChan chan struct{}
	stopOnce sync.Once
}

func NewChangeMonitor(orders LatestUpdater, hub Refresher, interval time.Duration) *ChangeMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ChangeMonitor{
		orders:   orders,
		hub:      hub,
		Interval: interval,
		StopChan: make(chan struct{}),
	}
}

// Forward passes every order changed since the previous check to l, so
// per-order views such as the status cache catch up with other instances.
// Must be called before Start.
func (cm *ChangeMonitor) Forward(source ChangedOrderLister, l repository.OrderListener) {
	cm.changed = source
	cm.followers = append(cm.followers, l)
}

func (cm *ChangeMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges(ctx)
			case <-ctx.Done():
				return
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() { close(cm.StopChan) })
}

// checkChanges refreshes the hub when the newest updated_at moved. Returns
// whether a refresh happened.
func (cm *ChangeMonitor) checkChanges(ctx context.Context) bool {
	latest, err := cm.orders.LatestUpdate(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error checking order changes: %v", err)
		return false
	}
	if !latest.After(cm.lastSeen) {
		return false
	}

	if err := cm.hub.Refresh(ctx); err != nil {
		utils.ErrorLogger.Printf("Error refreshing live orders: %v", err)
		return false
	}
	// run pertama hanya menetapkan titik awal
	if !cm.lastSeen.IsZero() {
		cm.forward(ctx, cm.lastSeen)
	}
	cm.lastSeen = latest
	return true
}

func (cm *ChangeMonitor) forward(ctx context.Context, since time.Time) {
	if cm.changed == nil || len(cm.followers) == 0 {
		return
	}
	orders, err := cm.changed.UpdatedSince(ctx, since, 0)
	if err != nil {
		utils.ErrorLogger.Printf("Error listing changed orders: %v", err)
		return
	}
	for _, o := range orders {
		for _, l := range cm.followers {
			l.OrderChanged(ctx, o, models.ChangeUpdated)
		}
	}
}
