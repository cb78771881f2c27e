package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is buyer feedback tied to exactly one completed order. The composite
// unique index is the backstop against concurrent duplicate submissions.
type Review struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	OrderID   string    `gorm:"column:order_id;type:char(36);uniqueIndex:idx_order_buyer;not null"`
	BuyerID   string    `gorm:"column:buyer_id;type:varchar(128);uniqueIndex:idx_order_buyer;not null"`
	FarmerID  string    `gorm:"column:farmer_id;type:varchar(128);index;not null"`
	ListingID string    `gorm:"column:listing_id;type:char(36);index;not null"`
	Rating    int       `gorm:"not null"`
	Title     string    `gorm:"size:255;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
