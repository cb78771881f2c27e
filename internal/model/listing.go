package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusInactive ListingStatus = "inactive"
)

type Listing struct {
	ID            string          `gorm:"type:char(36);primaryKey"`
	FarmerID      string          `gorm:"column:farmer_id;type:varchar(128);index;not null"`
	Title         string          `gorm:"size:255;not null"`
	GrainType     string          `gorm:"column:grain_type;size:64;index;not null"`
	FarmingMethod string          `gorm:"column:farming_method;size:64;index"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity      int             `gorm:"not null"`
	QuantityUnit  string          `gorm:"column:quantity_unit;size:32;not null"`
	MinimumOrder  *int            `gorm:"column:minimum_order"`
	HarvestDate   *time.Time      `gorm:"column:harvest_date"`
	Location      string          `gorm:"size:255"`
	City          string          `gorm:"size:128"`
	State         string          `gorm:"size:128"`
	Country       string          `gorm:"size:128"`
	Featured      bool            `gorm:"default:false"`
	ViewCount     int64           `gorm:"column:view_count;default:0"`
	Images        string          `gorm:"type:json"`
	Status        ListingStatus   `gorm:"size:16;index;not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "grain_listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
