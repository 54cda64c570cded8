package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/config"
	"github.com/yeremiapane/tastehub/database"
	"github.com/yeremiapane/tastehub/kds"
	"github.com/yeremiapane/tastehub/middlewares"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/router"
	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

const tokenTTL = 24 * time.Hour

// app holds the wired server and everything that must be stopped on shutdown.
type app struct {
	cfg    config.Config
	db     *gorm.DB
	router *gin.Engine
	orders *repository.OrderRepository
	hub    *kds.Hub

	limiter        *middlewares.RateLimiter
	authLimiter    *middlewares.RateLimiter
	changeMonitor  *services.ChangeMonitor
	paymentMonitor *services.PaymentMonitor
	publisher      *services.OrderEventPublisher
	redis          *redis.Client

	closing   chan struct{}
	closeOnce sync.Once
}

// newApp connects storage, wires services and builds the router. Background
// workers are not started until Start.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	seeded, err := database.SeedMenu(db)
	if err != nil {
		return nil, fmt.Errorf("seed menu: %w", err)
	}
	if seeded > 0 {
		utils.InfoLogger.Printf("Seeded %d menu items", seeded)
	}

	a := &app{cfg: cfg, db: db, closing: make(chan struct{})}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		switch {
		case err == nil:
			a.redis = client
			utils.InfoLogger.Printf("Connected to Redis at %s", cfg.RedisAddr)
		case cfg.CartStore == "redis":
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		default:
			_ = client.Close()
			utils.ErrorLogger.Warnf("Redis unavailable, status cache disabled: %v", err)
		}
	}

	storage, err := a.cartStorage()
	if err != nil {
		return nil, err
	}

	orders := repository.NewOrderRepository(db)
	menu := repository.NewMenuRepository(db)
	attempts := repository.NewPaymentAttemptRepository(db)

	razorpay := services.NewRazorpayService(services.RazorpayConfig{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		BaseURL:   cfg.RazorpayBaseURL,
		Currency:  cfg.Currency,
	})
	if !cfg.GatewayConfigured() {
		utils.ErrorLogger.Warn("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET not set, online payments disabled")
	}
	payments := services.NewPaymentService(razorpay, attempts)
	sessions := cart.NewSessions(storage)
	checkout := services.NewOrderService(orders, menu, payments, sessions)

	hub := kds.NewHub(orders, cfg.RecentOrdersLimit)
	hub.AllowedOrigins = cfg.CORSOrigins
	orders.AddListener(hub)

	var cache *services.StatusCache
	if a.redis != nil {
		cache = services.NewStatusCache(a.redis, services.DefaultStatusCacheTTL)
		orders.AddListener(cache)
	}
	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = services.NewKafkaOrderPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 0)
		orders.AddListener(a.publisher)
		utils.InfoLogger.Printf("Publishing order events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, tokenTTL)

	a.orders = orders
	a.hub = hub
	a.limiter = middlewares.NewRateLimiter(rateLimit(cfg.RateLimit), cfg.RateBurst)
	a.authLimiter = middlewares.NewStrictRateLimiter()
	a.changeMonitor = services.NewChangeMonitor(orders, hub, cfg.ChangePollInterval)
	if cache != nil {
		a.changeMonitor.Forward(orders, cache)
	}
	a.paymentMonitor = services.NewPaymentMonitor(payments, cfg.PaymentAttemptTTL)

	a.router = router.SetupRouter(router.Deps{
		DB:          db,
		Tokens:      tokens,
		Orders:      orders,
		Menu:        menu,
		Payments:    payments,
		Checkout:    checkout,
		Sessions:    sessions,
		Hub:         hub,
		Receipts:    services.NewReceiptService(cfg.RestaurantName),
		QR:          services.NewTableQRGenerator(cfg.PublicBaseURL),
		StatusCache: cache,
		AdminEmail:  cfg.AdminEmail,
		RecentLimit: cfg.RecentOrdersLimit,
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: a.limiter,
		AuthLimiter: a.authLimiter,
		Closing:     a.closing,
	})
	return a, nil
}

func (a *app) cartStorage() (cart.Storage, error) {
	switch a.cfg.CartStore {
	case "redis":
		return cart.NewRedisStorage(a.redis, a.cfg.CartTTL), nil
	case "memory":
		return cart.NewMemoryStorage(), nil
	default:
		s, err := cart.NewFileStorage(a.cfg.CartDir)
		if err != nil {
			return nil, fmt.Errorf("cart dir %s: %w", a.cfg.CartDir, err)
		}
		return s, nil
	}
}

// Start runs the background workers until ctx is cancelled.
func (a *app) Start(ctx context.Context) {
	if err := a.hub.Refresh(ctx); err != nil {
		utils.ErrorLogger.Warnf("Initial order snapshot failed: %v", err)
	}
	if a.publisher != nil {
		// publisher hidup sampai Close, setelah request terakhir selesai
		a.publisher.Start(context.Background())
	}
	a.changeMonitor.Start(ctx)
	a.paymentMonitor.Start(ctx)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.limiter.Cleanup()
				a.authLimiter.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StopStreams ends open SSE streams so a graceful shutdown does not wait on them.
func (a *app) StopStreams() {
	a.closeOnce.Do(func() { close(a.closing) })
}

// Close flushes pending events and releases connections. Call it after the
// HTTP server has shut down.
func (a *app) Close() {
	a.StopStreams()
	a.changeMonitor.Stop()
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
