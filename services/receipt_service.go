package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

type ReceiptService struct {
	RestaurantName string
}

func NewReceiptService(restaurantName string) *ReceiptService {
	if restaurantName == "" {
		restaurantName = "TasteHub"
	}
	return &ReceiptService{RestaurantName: restaurantName}
}

// ReceiptNumber mengikuti format RCP/<tanggal>/<8 karakter awal id order>.
func ReceiptNumber(order *models.Order) string {
	short := strings.ToUpper(strings.ReplaceAll(order.ID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("RCP/%s/%s", order.CreatedAt.Format("20060102"), short)
}

// Generate renders a receipt PDF. Only paid orders get a receipt.
func (rs *ReceiptService) Generate(order *models.Order) ([]byte, error) {
	if order.PaymentStatus != models.PaymentStatusPaid {
		return nil, utils.NewValidationError("paymentStatus", "receipt is available once the order is paid")
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Receipt "+ReceiptNumber(order), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, rs.RestaurantName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Receipt "+ReceiptNumber(order), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Table "+order.TableNumber, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range order.Items {
		pdf.CellFormat(70, 7, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(0, 7, utils.FormatCurrencyINR(line.Subtotal()), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(85, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, utils.FormatCurrencyINR(order.TotalAmount), "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Paid by "+strings.ToUpper(string(order.PaymentMethod)), "", 1, "L", false, 0, "")
	if order.GatewayPaymentID != nil {
		pdf.CellFormat(0, 6, "Reference "+*order.GatewayPaymentID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	pdf.CellFormat(0, 6, "Thank you for dining with us!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
