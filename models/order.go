package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodCash:
		return true
	}
	return false
}

// ViaGateway reports whether the method is settled through the payment gateway.
func (m PaymentMethod) ViaGateway() bool {
	return m == PaymentMethodUPI || m == PaymentMethodCard
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
)

// Order adalah pesanan yang sudah tersimpan. TotalAmount tidak pernah diubah
// setelah insert; hanya OrderStatus, PaymentStatus dan UpdatedAt yang berubah.
type Order struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Items            []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"items"`
	TableNumber      string          `gorm:"type:varchar(50);not null;index" json:"tableNumber"`
	UserID           *string         `gorm:"type:varchar(64);index" json:"userId,omitempty"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaymentMethod    PaymentMethod   `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(10);not null" json:"paymentStatus"`
	OrderStatus      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"orderStatus"`
	GatewayOrderID   *string         `gorm:"type:varchar(64);uniqueIndex" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID *string         `gorm:"type:varchar(64)" json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"not null;index" json:"updatedAt"`
}

// OrderLineItem is a snapshot of a menu item at order time, decoupled from
// the live MenuItem record.
type OrderLineItem struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	OrderID    string          `gorm:"type:varchar(36);not null;index" json:"-"`
	MenuItemID string          `gorm:"type:varchar(36);not null" json:"menuItemId"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
}

func (l OrderLineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderDraft is an order candidate that has not been persisted yet.
// Identity and timestamps are assigned by the repository.
type OrderDraft struct {
	Items            []OrderLineItem
	TableNumber      string
	UserID           string
	TotalAmount      decimal.Decimal
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	OrderStatus      OrderStatus
	GatewayOrderID   string
	GatewayPaymentID string
}

// AttachPayment records gateway identifiers on the draft. A non-cash draft
// only becomes paid once a gateway payment id is attached.
func (d *OrderDraft) AttachPayment(gatewayOrderID, gatewayPaymentID string) {
	d.GatewayOrderID = gatewayOrderID
	d.GatewayPaymentID = gatewayPaymentID
	if d.PaymentMethod.ViaGateway() && gatewayPaymentID != "" {
		d.PaymentStatus = PaymentStatusPaid
	}
}

// ChangeType describes why an order listener is being notified.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)
