package repository

import (
	"context"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	ListByOrder(ctx context.Context, orderID string) ([]model.Transaction, error)
	ListPaidByOrder(ctx context.Context, orderID string) ([]model.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) ListByOrder(ctx context.Context, orderID string) ([]model.Transaction, error) {
	var list []model.Transaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *transactionRepository) ListPaidByOrder(ctx context.Context, orderID string) ([]model.Transaction, error) {
	var list []model.Transaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, model.TransactionStatusPaid).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}
