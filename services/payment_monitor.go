package services

import (
	"context"
	"time"

	"github.com/yeremiapane/tastehub/utils"
)

// PaymentMonitor menjalankan pembersihan payment attempt yang tidak pernah
// diverifikasi dalam batas waktu.
type PaymentMonitor struct {
	payments *PaymentService
	ttl      time.Duration
	interval time.Duration
}

func NewPaymentMonitor(payments *PaymentService, ttl time.Duration) *PaymentMonitor {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return &PaymentMonitor{payments: payments, ttl: ttl, interval: interval}
}

// Start memulai goroutine pembersihan sampai ctx dibatalkan.
func (pm *PaymentMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(pm.interval)
		defer ticker.Stop()

		utils.InfoLogger.Printf("Payment monitor started (ttl %s)", pm.ttl)
		for {
			select {
			case <-ticker.C:
				pm.sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (pm *PaymentMonitor) sweep(ctx context.Context) {
	if _, err := pm.payments.ExpireStale(ctx, pm.ttl); err != nil {
		utils.ErrorLogger.Printf("Error expiring payment attempts: %v", err)
	}
}
