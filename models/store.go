package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID      string    `gorm:"type:varchar(64);not null;index" json:"ownerId"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     []string  `gorm:"serializer:json" json:"category"`
	Address      string    `gorm:"type:varchar(512)" json:"address"`
	PhoneNumber  string    `gorm:"type:varchar(32)" json:"phoneNumber"`
	DeliveryTime string    `gorm:"type:varchar(32)" json:"deliveryTime"`
	IsOpen       bool      `gorm:"not null" json:"isOpen"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Table struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"tableNumber"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
