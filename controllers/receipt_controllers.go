package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/tastehub/repository"
	"github.com/yeremiapane/tastehub/services"
	"github.com/yeremiapane/tastehub/utils"
)

type ReceiptController struct {
	Orders   *repository.OrderRepository
	Receipts *services.ReceiptService
}

func NewReceiptController(orders *repository.OrderRepository, receipts *services.ReceiptService) *ReceiptController {
	return &ReceiptController{Orders: orders, Receipts: receipts}
}

// DownloadReceipt -> GET /orders/:order_id/receipt
// Struk hanya tersedia untuk order yang sudah dibayar.
func (rc *ReceiptController) DownloadReceipt(c *gin.Context) {
	order, err := rc.Orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	pdf, err := rc.Receipts.Generate(order)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	filename := fmt.Sprintf("receipt-%s.pdf", order.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
