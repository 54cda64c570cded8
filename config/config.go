package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	AdminEmail string

	// kosong berarti gateway belum dikonfigurasi; tidak ada nilai default
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Currency          string

	CartStore string
	CartDir   string
	CartTTL   time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	PublicBaseURL     string
	RestaurantName    string
	CORSOrigins       []string
	RecentOrdersLimit int

	ChangePollInterval time.Duration
	PaymentAttemptTTL  time.Duration

	RateLimit float64
	RateBurst int

	LogLevel  string
	LogFormat string
}

// Load reads the environment, falling back to development defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "debug"),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "tastehub.db"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AdminEmail: strings.ToLower(getenv("ADMIN_EMAIL", "admin@restaurant.com")),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		Currency:          strings.ToUpper(getenv("CURRENCY", "INR")),

		CartStore: strings.ToLower(getenv("CART_STORE", "file")),
		CartDir:   getenv("CART_DIR", "data/carts"),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "tastehub.orders"),

		PublicBaseURL:  strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		RestaurantName: getenv("RESTAURANT_NAME", "TasteHub"),
		CORSOrigins:    splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000")),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.CartTTL, err = getDuration("CART_TTL", 7*24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.ChangePollInterval, err = getDuration("CHANGE_POLL_INTERVAL", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.PaymentAttemptTTL, err = getDuration("PAYMENT_ATTEMPT_TTL", 30*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.RecentOrdersLimit, err = getInt("RECENT_ORDERS_LIMIT", 50); err != nil {
		return cfg, err
	}
	if cfg.RateBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return cfg, err
	}
	if cfg.RateLimit, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.CartStore {
	case "file", "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("CART_STORE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("CART_STORE must be file, redis or memory, got %q", c.CartStore)
	}
	if c.RecentOrdersLimit <= 0 {
		return fmt.Errorf("RECENT_ORDERS_LIMIT must be positive")
	}
	return nil
}

// GatewayConfigured reports whether both Razorpay credentials are present.
func (c Config) GatewayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
