package models

import "time"

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleStoreOwner UserRole = "store_owner"
	RoleAdmin      UserRole = "admin"
)

// IsStaff reports whether the role may use the kitchen dashboard.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleStoreOwner
}

type DeliveryAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	State   string `json:"state"`
}

// UserProfile is keyed by the auth subject id.
type UserProfile struct {
	ID              string           `gorm:"primaryKey;type:varchar(64)" json:"uid"`
	Email           string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName     string           `gorm:"type:varchar(255)" json:"displayName"`
	PhoneNumber     string           `gorm:"type:varchar(32)" json:"phoneNumber,omitempty"`
	DeliveryAddress *DeliveryAddress `gorm:"serializer:json" json:"deliveryAddress,omitempty"`
	PasswordHash    string           `gorm:"type:varchar(255)" json:"-"`
	Role            UserRole         `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	StoreID         *string          `gorm:"type:varchar(36)" json:"storeId,omitempty"`
	Wishlist        []string         `gorm:"serializer:json" json:"wishlist"`
	CreatedAt       time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updatedAt"`
}

// ToggleWishlist adds the item when absent and removes it when present.
// Returns true when the item ends up in the wishlist.
func (p *UserProfile) ToggleWishlist(itemID string) bool {
	for i, id := range p.Wishlist {
		if id == itemID {
			p.Wishlist = append(p.Wishlist[:i:i], p.Wishlist[i+1:]...)
			return false
		}
	}
	p.Wishlist = append(p.Wishlist, itemID)
	return true
}
