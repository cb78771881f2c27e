package repository

import (
	"context"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Order, error)
	CreateHistory(ctx context.Context, h *model.OrderHistory) error
	ListHistory(ctx context.Context, orderID string) ([]model.OrderHistory, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListByFarmer(ctx context.Context, farmerID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) CreateHistory(ctx context.Context, h *model.OrderHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *orderRepository) ListHistory(ctx context.Context, orderID string) ([]model.OrderHistory, error) {
	var list []model.OrderHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
