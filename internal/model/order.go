package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// nextStatus is the forward edge of the fulfilment state machine. Cancellation
// is handled separately since it is reachable from every non-terminal state.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusReady,
	OrderStatusReady:      OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
	OrderStatusDelivered:  OrderStatusCompleted,
}

var validOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
	OrderStatusReady:      true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCompleted:  true,
	OrderStatusCancelled:  true,
}

func (s OrderStatus) Valid() bool {
	return validOrderStatuses[s]
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to the
// next. Forward movement is one step at a time; cancellation is allowed from
// any non-terminal state.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return !s.Terminal()
	}
	return nextStatus[s] == to
}

type Order struct {
	ID              string          `gorm:"type:char(36);primaryKey"`
	ListingID       string          `gorm:"column:listing_id;type:char(36);index;not null"`
	BuyerID         string          `gorm:"column:buyer_id;type:varchar(128);index;not null"`
	FarmerID        string          `gorm:"column:farmer_id;type:varchar(128);index;not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null"`
	Status          OrderStatus     `gorm:"size:16;index;not null"`
	PaymentStatus   PaymentStatus   `gorm:"column:payment_status;size:16;not null"`
	PaymentMethod   string          `gorm:"column:payment_method;size:64"`
	ShippingAddress string          `gorm:"column:shipping_address;size:255;not null"`
	ShippingCity    string          `gorm:"column:shipping_city;size:128;not null"`
	ShippingState   string          `gorm:"column:shipping_state;size:128;not null"`
	ShippingZip     string          `gorm:"column:shipping_zip;size:16;not null"`
	ShippingNotes   string          `gorm:"column:shipping_notes;type:text"`
	Notes           string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderHistory is an append-only audit trail. Writes are best-effort and must
// never fail the parent operation.
type OrderHistory struct {
	ID            string        `gorm:"type:char(36);primaryKey"`
	OrderID       string        `gorm:"column:order_id;type:char(36);index;not null"`
	Status        OrderStatus   `gorm:"size:16;not null"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;size:16;not null"`
	Notes         string        `gorm:"type:text"`
	CreatedBy     string        `gorm:"column:created_by;type:varchar(128);not null"`
	CreatedAt     time.Time     `gorm:"autoCreateTime"`
}

func (OrderHistory) TableName() string {
	return "order_history"
}

func (h *OrderHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
