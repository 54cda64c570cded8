package models

import "time"

type AttemptStatus string

const (
	AttemptCreated  AttemptStatus = "created"
	AttemptVerified AttemptStatus = "verified"
	AttemptFailed   AttemptStatus = "failed"
	AttemptExpired  AttemptStatus = "expired"
	AttemptConsumed AttemptStatus = "consumed"
)

// PaymentAttempt mencatat satu order gateway yang dibuat lewat /create-order.
// ID adalah order id dari gateway.
type PaymentAttempt struct {
	ID               string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(3);not null" json:"currency"`
	Receipt          string        `gorm:"type:varchar(64)" json:"receipt"`
	Status           AttemptStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	GatewayPaymentID *string       `gorm:"type:varchar(64)" json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;index" json:"createdAt"`
	UpdatedAt        time.Time     `gorm:"not null" json:"updatedAt"`
}
