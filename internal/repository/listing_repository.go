package repository

import (
	"context"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListingFilter narrows the marketplace browse query. Zero values mean "no
// constraint".
type ListingFilter struct {
	GrainType     string
	FarmingMethod string
	Status        model.ListingStatus
	FarmerID      string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Limit         int
	Offset        int
}

type ListingRepository interface {
	Create(ctx context.Context, l *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	Update(ctx context.Context, l *model.Listing) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListingFilter) ([]model.Listing, int64, error)
	IncrementViewCount(ctx context.Context, id string) error
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, l *model.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *model.Listing) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Listing{}).Error
}

func (r *listingRepository) List(ctx context.Context, f ListingFilter) ([]model.Listing, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Listing{})
	if f.GrainType != "" {
		q = q.Where("grain_type = ?", f.GrainType)
	}
	if f.FarmingMethod != "" {
		q = q.Where("farming_method = ?", f.FarmingMethod)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FarmerID != "" {
		q = q.Where("farmer_id = ?", f.FarmerID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []model.Listing
	if err := q.Order("created_at desc").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// IncrementViewCount bumps the persisted counter atomically in SQL. The redis
// ViewCounter is layered on top when configured; this is the durable fallback.
func (r *listingRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
