package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/controllers"
	"github.com/yeremiapane/tastehub/database"
	"github.com/yeremiapane/tastehub/kds"
	"github.com/yeremiapane/tastehub/middlewares"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

const (
	testSecret     = "s3cr3t"
	testAdminEmail = "admin@restaurant.com"
)

type envOptions struct {
	gatewaySecret string
	withCache     bool
	closing       chan struct{}
}

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	tokens   *utils.TokenIssuer
	orders   *repository.OrderRepository
	menu     *repository.MenuRepository
	attempts *repository.PaymentAttemptRepository
	cache    *services.StatusCache
	redis    *miniredis.Miniredis
	pizza    models.MenuItem
	lassi    models.MenuItem

	// status yang dikembalikan gateway palsu
	gatewayStatus atomic.Int32
	gatewayCalls  atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, envOptions{gatewaySecret: testSecret})
}

func newTestEnvWith(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SilenceLoggers()

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		tokens:   utils.NewTokenIssuer("jwt-test-secret", time.Hour),
		orders:   repository.NewOrderRepository(db),
		menu:     repository.NewMenuRepository(db),
		attempts: repository.NewPaymentAttemptRepository(db),
	}
	env.gatewayStatus.Store(http.StatusOK)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.gatewayCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		status := int(env.gatewayStatus.Load())
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":"SERVER_ERROR","description":"gateway exploded"}}`))
			return
		}
		var body struct {
			Amount int64 `json:"amount"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "order_1", "amount": body.Amount, "currency": "INR", "receipt": "r", "status": "created",
		})
	}))
	t.Cleanup(gateway.Close)

	keyID := ""
	if opts.gatewaySecret != "" {
		keyID = "rzp_test"
	}
	razorpay := services.NewRazorpayService(services.RazorpayConfig{KeyID: keyID, KeySecret: opts.gatewaySecret, BaseURL: gateway.URL})
	payments := services.NewPaymentService(razorpay, env.attempts)
	sessions := cart.NewSessions(cart.NewMemoryStorage())
	checkout := services.NewOrderService(env.orders, env.menu, payments, sessions)

	hub := kds.NewHub(env.orders, 20)
	env.orders.AddListener(hub)

	if opts.withCache {
		env.redis = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: env.redis.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		env.cache = services.NewStatusCache(client, time.Minute)
		env.orders.AddListener(env.cache)
	}

	paymentCtrl := controllers.NewPaymentController(payments)
	orderCtrl := controllers.NewOrderController(checkout, env.orders, hub, env.cache)
	orderCtrl.Closing = opts.closing
	receiptCtrl := controllers.NewReceiptController(env.orders, services.NewReceiptService("TasteHub"))
	cartCtrl := controllers.NewCartController(sessions, env.menu)
	menuCtrl := controllers.NewMenuController(env.menu)
	adminCtrl := controllers.NewAdminOrderController(env.orders, 50)
	tableCtrl := controllers.NewTableController(db, services.NewTableQRGenerator("http://localhost:3000"))
	userCtrl := controllers.NewUserController(db, env.tokens, env.orders, env.menu, testAdminEmail)

	r := gin.New()
	r.POST("/create-order", paymentCtrl.CreateOrder)
	r.POST("/verify-payment", paymentCtrl.VerifyPayment)
	r.POST("/register", userCtrl.Register)
	r.POST("/login", userCtrl.Login)
	r.GET("/menu", menuCtrl.ListMenu)
	r.GET("/menu/:item_id", menuCtrl.GetMenuItem)
	r.GET("/tables/:table_number/qr", tableCtrl.TableQR)

	r.GET("/cart/:session_id", cartCtrl.GetCart)
	r.DELETE("/cart/:session_id", cartCtrl.ClearCart)
	r.POST("/cart/:session_id/items", cartCtrl.AddItem)
	r.PATCH("/cart/:session_id/items/:item_id", cartCtrl.UpdateQuantity)
	r.DELETE("/cart/:session_id/items/:item_id", cartCtrl.RemoveItem)
	r.PUT("/cart/:session_id/table", cartCtrl.SetTable)

	r.POST("/orders", middlewares.OptionalAuth(env.tokens), orderCtrl.PlaceOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrder)
	r.GET("/orders/:order_id/status", orderCtrl.GetOrderStatus)
	r.GET("/orders/:order_id/stream", orderCtrl.StreamOrder)
	r.GET("/orders/:order_id/receipt", receiptCtrl.DownloadReceipt)

	profile := r.Group("/profile", middlewares.AuthMiddleware(env.tokens))
	profile.GET("", userCtrl.GetProfile)
	profile.PATCH("", userCtrl.UpdateProfile)
	profile.POST("/wishlist/:item_id", userCtrl.ToggleWishlist)
	profile.GET("/orders", userCtrl.MyOrders)
	profile.POST("/store", userCtrl.RegisterStore)

	admin := r.Group("/admin", middlewares.AuthMiddleware(env.tokens), middlewares.StaffOnly())
	admin.GET("/orders", adminCtrl.ListOrders)
	admin.GET("/orders/stats", adminCtrl.Stats)
	admin.GET("/orders/:order_id", adminCtrl.GetOrder)
	admin.PATCH("/orders/:order_id", adminCtrl.UpdateOrderStatus)
	admin.POST("/menu", menuCtrl.CreateMenuItem)
	admin.PUT("/menu/:item_id", menuCtrl.UpdateMenuItem)
	admin.PATCH("/menu/:item_id/availability", menuCtrl.SetAvailability)
	admin.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)
	admin.GET("/tables", tableCtrl.ListTables)
	admin.POST("/tables", tableCtrl.CreateTable)
	env.router = r

	ctx := context.Background()
	env.pizza = models.MenuItem{Name: "Margherita", Price: decimal.NewFromInt(299), Category: models.CategoryMainCourse, Available: true}
	require.NoError(t, env.menu.Create(ctx, &env.pizza))
	env.lassi = models.MenuItem{Name: "Mango Lassi", Price: decimal.RequireFromString("89.50"), Category: models.CategoryDrinks, Available: true}
	require.NoError(t, env.menu.Create(ctx, &env.lassi))
	return env
}

func (e *testEnv) token(t *testing.T, subject string, role models.UserRole) string {
	t.Helper()
	tok, err := e.tokens.GenerateToken(subject, subject+"@example.com", string(role), "")
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// placeCashOrder places one pizza for table 7 and returns the order.
func (e *testEnv) placeCashOrder(t *testing.T) models.Order {
	t.Helper()
	w := e.do(t, http.MethodPost, "/orders", map[string]interface{}{
		"items":         []map[string]interface{}{{"menuItemId": e.pizza.ID, "quantity": 1}},
		"tableNumber":   "7",
		"paymentMethod": "cash",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decode(t, w, &order)
	return order
}
