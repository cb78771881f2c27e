package repository

import (
	"context"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	Update(ctx context.Context, p *model.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
