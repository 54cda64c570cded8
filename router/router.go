package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/controllers"
	"github.com/yeremiapane/tastehub/kds"
	"github.com/yeremiapane/tastehub/metrics"
	"github.com/yeremiapane/tastehub/middlewares"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

// Deps is everything the HTTP layer needs. StatusCache and the limiters are optional.
type Deps struct {
	DB       *gorm.DB
	Tokens   *utils.TokenIssuer
	Orders   *repository.OrderRepository
	Menu     *repository.MenuRepository
	Payments *services.PaymentService
	Checkout *services.OrderService
	Sessions *cart.Sessions
	Hub      *kds.Hub
	Receipts *services.ReceiptService
	QR       *services.TableQRGenerator

	StatusCache *services.StatusCache

	AdminEmail     string
	RecentLimit    int
	CORSOrigins    []string
	TrustedProxies []string
	// Closing ends long-lived streams on shutdown
	Closing <-chan struct{}

	RateLimiter *middlewares.RateLimiter
	AuthLimiter *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		utils.ErrorLogger.Warnf("Invalid trusted proxies %v: %v", d.TrustedProxies, err)
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(metrics.PrometheusMiddleware(metrics.ServiceName))

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.RateLimit())
	}

	paymentCtrl := controllers.NewPaymentController(d.Payments)
	orderCtrl := controllers.NewOrderController(d.Checkout, d.Orders, d.Hub, d.StatusCache)
	orderCtrl.Closing = d.Closing
	receiptCtrl := controllers.NewReceiptController(d.Orders, d.Receipts)
	cartCtrl := controllers.NewCartController(d.Sessions, d.Menu)
	menuCtrl := controllers.NewMenuController(d.Menu)
	adminCtrl := controllers.NewAdminOrderController(d.Orders, d.RecentLimit)
	tableCtrl := controllers.NewTableController(d.DB, d.QR)
	userCtrl := controllers.NewUserController(d.DB, d.Tokens, d.Orders, d.Menu, d.AdminEmail)
	kdsCtrl := controllers.NewKDSController(d.Hub)

	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "pong", nil)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth
	auth := r.Group("/")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.RateLimit())
	}
	auth.POST("/register", userCtrl.Register)
	auth.POST("/login", userCtrl.Login)

	// Menu & meja (public)
	r.GET("/menu", menuCtrl.ListMenu)
	r.GET("/menu/:item_id", menuCtrl.GetMenuItem)
	r.GET("/tables/:table_number/qr", tableCtrl.TableQR)

	// Cart per sesi tamu
	cartGroup := r.Group("/cart/:session_id")
	{
		cartGroup.GET("", cartCtrl.GetCart)
		cartGroup.DELETE("", cartCtrl.ClearCart)
		cartGroup.POST("/items", cartCtrl.AddItem)
		cartGroup.PATCH("/items/:item_id", cartCtrl.UpdateQuantity)
		cartGroup.DELETE("/items/:item_id", cartCtrl.RemoveItem)
		cartGroup.PUT("/table", cartCtrl.SetTable)
	}

	// Payment gateway
	payment := r.Group("/", middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	{
		payment.POST("/create-order", paymentCtrl.CreateOrder)
		payment.POST("/verify-payment", paymentCtrl.VerifyPayment)
	}

	// Orders
	orders := r.Group("/orders")
	{
		orders.POST("", middlewares.OptionalAuth(d.Tokens), orderCtrl.PlaceOrder)
		orders.GET("/:order_id", orderCtrl.GetOrder)
		orders.GET("/:order_id/status", orderCtrl.GetOrderStatus)
		orders.GET("/:order_id/stream", orderCtrl.StreamOrder)
		orders.GET("/:order_id/receipt", middlewares.ReceiptLoggerMiddleware(), receiptCtrl.DownloadReceipt)
	}

	// Profile (login)
	profile := r.Group("/profile", middlewares.AuthMiddleware(d.Tokens))
	{
		profile.GET("", userCtrl.GetProfile)
		profile.PATCH("", userCtrl.UpdateProfile)
		profile.POST("/wishlist/:item_id", userCtrl.ToggleWishlist)
		profile.GET("/orders", userCtrl.MyOrders)
		profile.POST("/store", userCtrl.RegisterStore)
	}

	// Staff: admin dan pemilik toko
	admin := r.Group("/admin", middlewares.AuthMiddleware(d.Tokens), middlewares.StaffOnly())
	{
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
	}

	// WebSocket dashboard dapur
	r.GET("/ws/orders", middlewares.WebSocketAuthMiddleware(d.Tokens), kdsCtrl.KDSHandler)

	return r
}
