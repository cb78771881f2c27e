package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is one payment record against an order. Only rows with status
// "paid" count toward the confirmed paid total.
type Transaction struct {
	ID                   string            `gorm:"type:char(36);primaryKey"`
	OrderID              string            `gorm:"column:order_id;type:char(36);index;not null"`
	Amount               decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	PaymentMethod        string            `gorm:"column:payment_method;size:64"`
	TransactionReference string            `gorm:"column:transaction_reference;size:128"`
	Status               TransactionStatus `gorm:"size:16;index;not null"`
	Notes                string            `gorm:"type:text"`
	CreatedAt            time.Time         `gorm:"autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
