package repository

import (
	"context"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *model.Review) error
	FindByOrderAndBuyer(ctx context.Context, orderID, buyerID string) (*model.Review, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Review, error)
	ListByListing(ctx context.Context, listingID string) ([]model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepository) FindByOrderAndBuyer(ctx context.Context, orderID, buyerID string) (*model.Review, error) {
	var rv model.Review
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND buyer_id = ?", orderID, buyerID).
		First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) ListByFarmer(ctx context.Context, farmerID string) ([]model.Review, error) {
	var list []model.Review
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *reviewRepository) ListByListing(ctx context.Context, listingID string) ([]model.Review, error) {
	var list []model.Review
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
