package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/utils"
)

func init() {
	// harga dikirim sebagai angka JSON, bukan string
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryStarters   Category = "starters"
	CategoryMainCourse Category = "main-course"
	CategoryDrinks     Category = "drinks"
	CategoryDesserts   Category = "desserts"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStarters, CategoryMainCourse, CategoryDrinks, CategoryDesserts:
		return true
	}
	return false
}

type MenuItem struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    Category        `gorm:"type:varchar(32);not null;index" json:"category"`
	Image       string          `gorm:"type:varchar(512)" json:"image"`
	Available   bool            `gorm:"not null" json:"available"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

func (MenuItem) TableName() string { return "menu_items" }

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Validate checks the fields staff can edit.
func (m *MenuItem) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return utils.NewValidationError("name", "name is required")
	}
	if !m.Price.IsPositive() {
		return utils.NewValidationError("price", "price must be greater than zero")
	}
	if !m.Category.Valid() {
		return utils.NewValidationError("category", "category must be one of starters, main-course, drinks, desserts")
	}
	return nil
}
