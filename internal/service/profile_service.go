package service

import (
	"context"
	"errors"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	FullName    string
	CompanyName string
	Phone       string
	Bio         string
	Website     string
	Address     string
	City        string
	State       string
	ZipCode     string
	Country     string
}

type ProfileService interface {
	Get(ctx context.Context, id string) (*model.Profile, error)
	Update(ctx context.Context, id string, in UpdateProfileInput) (*model.Profile, error)
}

type profileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, id string, in UpdateProfileInput) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.FullName = in.FullName
	p.CompanyName = in.CompanyName
	p.Phone = in.Phone
	p.Bio = in.Bio
	p.Website = in.Website
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.ZipCode = in.ZipCode
	p.Country = in.Country
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
