package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ListingID string    `gorm:"column:listing_id;type:char(36);index:idx_listing_buyer,unique" json:"listingId"`
	BuyerID   string    `gorm:"column:buyer_id;type:varchar(128);index:idx_listing_buyer,unique" json:"buyerId"`
	FarmerID  string    `gorm:"column:farmer_id;type:varchar(128);index" json:"farmerId"`
	Subject   string    `gorm:"size:255" json:"subject"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
