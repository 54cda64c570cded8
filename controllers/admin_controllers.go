package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/tastehub/middlewares"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/utils"
)

// AdminOrderController dipakai dashboard dapur dan admin.
type AdminOrderController struct {
	Orders       *repository.OrderRepository
	DefaultLimit int
}

func NewAdminOrderController(orders *repository.OrderRepository, defaultLimit int) *AdminOrderController {
	if defaultLimit <= 0 {
		defaultLimit = repository.DefaultRecentLimit
	}
	return &AdminOrderController{Orders: orders, DefaultLimit: defaultLimit}
}

// adminOrderView: Next adalah tombol utama dashboard, AllowedNext semua opsi.
type adminOrderView struct {
	models.Order
	Next        *models.OrderStatus  `json:"next"`
	AllowedNext []models.OrderStatus `json:"allowedNext"`
}

func viewForStaff(o models.Order) adminOrderView {
	view := adminOrderView{Order: o, AllowedNext: models.AllowedNext(o.OrderStatus)}
	if view.AllowedNext == nil {
		view.AllowedNext = []models.OrderStatus{}
	}
	if next, ok := models.NextStatus(o.OrderStatus); ok {
		view.Next = &next
	}
	return view
}

// ListOrders -> GET /admin/orders?limit=&orderStatus=&paymentStatus=&table=
func (ac *AdminOrderController) ListOrders(c *gin.Context) {
	limit := ac.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.RespondAppError(c, utils.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	filter := repository.OrderFilter{
		OrderStatus:   models.OrderStatus(c.Query("orderStatus")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		TableNumber:   c.Query("table"),
	}
	if filter.OrderStatus != "" && !filter.OrderStatus.Valid() {
		utils.RespondAppError(c, utils.NewValidationError("orderStatus", "unknown order status"))
		return
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		utils.RespondAppError(c, utils.NewValidationError("paymentStatus", "unknown payment status"))
		return
	}

	orders, err := ac.Orders.ListRecent(c.Request.Context(), limit, filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	views := make([]adminOrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, viewForStaff(o))
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", views)
}

// GetOrder -> GET /admin/orders/:order_id
func (ac *AdminOrderController) GetOrder(c *gin.Context) {
	order, err := ac.Orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", viewForStaff(*order))
}

// UpdateOrderStatus -> PATCH /admin/orders/:order_id {orderStatus?, paymentStatus?}
func (ac *AdminOrderController) UpdateOrderStatus(c *gin.Context) {
	var patch repository.StatusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	id := c.Param("order_id")
	order, err := ac.Orders.Update(c.Request.Context(), id, patch)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	fields := logrus.Fields{"order_id": id, "order_status": order.OrderStatus, "payment_status": order.PaymentStatus}
	if user, ok := middlewares.CurrentUser(c); ok {
		fields["by"] = user.UserID
	}
	utils.InfoLogger.WithFields(fields).Info("Order status updated")

	utils.RespondJSON(c, http.StatusOK, "Order updated", viewForStaff(*order))
}

// Stats -> GET /admin/orders/stats
func (ac *AdminOrderController) Stats(c *gin.Context) {
	stats, err := ac.Orders.Stats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order statistics", stats)
}
