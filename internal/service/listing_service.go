package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateListingInput struct {
	Title         string
	GrainType     string
	FarmingMethod string
	Description   string
	Price         decimal.Decimal
	Quantity      int
	QuantityUnit  string
	MinimumOrder  *int
	HarvestDate   *time.Time
	Location      string
	City          string
	State         string
	Country       string
	Featured      bool
}

type ListingService interface {
	Create(ctx context.Context, farmerID string, in CreateListingInput) (*model.Listing, error)
	Get(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, f repository.ListingFilter) ([]model.Listing, int64, error)
	Update(ctx context.Context, id, farmerID string, in CreateListingInput) (*model.Listing, error)
	Delete(ctx context.Context, id, farmerID string) error
	AddImage(ctx context.Context, id, farmerID, filename, contentType string, data []byte) (string, error)
}

type listingService struct {
	repo        repository.ListingRepository
	profileRepo repository.ProfileRepository
	views       repository.ViewCounter
	uploader    storage.Uploader
	log         *zap.Logger
}

func NewListingService(
	repo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	views repository.ViewCounter,
	uploader storage.Uploader,
	log *zap.Logger,
) ListingService {
	return &listingService{repo: repo, profileRepo: profileRepo, views: views, uploader: uploader, log: log}
}

func (s *listingService) Create(ctx context.Context, farmerID string, in CreateListingInput) (*model.Listing, error) {
	profile, err := s.profileRepo.FindByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbidden("only farmers can create listings")
		}
		return nil, err
	}
	if profile.UserType != model.UserTypeFarmer {
		return nil, forbidden("only farmers can create listings")
	}
	if err := validateListing(in); err != nil {
		return nil, err
	}

	country := in.Country
	if country == "" {
		country = "United States"
	}
	listing := &model.Listing{
		FarmerID:      farmerID,
		Title:         strings.TrimSpace(in.Title),
		GrainType:     in.GrainType,
		FarmingMethod: in.FarmingMethod,
		Description:   in.Description,
		Price:         in.Price,
		Quantity:      in.Quantity,
		QuantityUnit:  in.QuantityUnit,
		MinimumOrder:  in.MinimumOrder,
		HarvestDate:   in.HarvestDate,
		Location:      in.Location,
		City:          in.City,
		State:         in.State,
		Country:       country,
		Featured:      in.Featured,
		Images:        "[]",
		Status:        model.ListingStatusActive,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get fetches a listing and counts the page view. The counter goes through
// redis when configured; the SQL column is the durable fallback. Either way a
// counting failure never fails the read.
func (s *listingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.views != nil {
		if n, err := s.views.Increment(ctx, id); err != nil {
			s.log.Warn("view count increment failed", zap.String("listing_id", id), zap.Error(err))
		} else {
			listing.ViewCount = n
		}
	} else if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.log.Warn("view count increment failed", zap.String("listing_id", id), zap.Error(err))
	}
	return listing, nil
}

func (s *listingService) List(ctx context.Context, f repository.ListingFilter) ([]model.Listing, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *listingService) Update(ctx context.Context, id, farmerID string, in CreateListingInput) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.FarmerID != farmerID {
		return nil, forbidden("you can only edit your own listings")
	}
	if err := validateListing(in); err != nil {
		return nil, err
	}

	listing.Title = strings.TrimSpace(in.Title)
	listing.GrainType = in.GrainType
	listing.FarmingMethod = in.FarmingMethod
	listing.Description = in.Description
	listing.Price = in.Price
	listing.Quantity = in.Quantity
	listing.QuantityUnit = in.QuantityUnit
	listing.MinimumOrder = in.MinimumOrder
	listing.HarvestDate = in.HarvestDate
	listing.Location = in.Location
	listing.City = in.City
	listing.State = in.State
	if in.Country != "" {
		listing.Country = in.Country
	}
	listing.Featured = in.Featured
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Delete(ctx context.Context, id, farmerID string) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if listing.FarmerID != farmerID {
		return forbidden("you can only delete your own listings")
	}
	return s.repo.Delete(ctx, id)
}

// AddImage uploads a photo to object storage and appends its public URL to
// the listing's image set.
func (s *listingService) AddImage(ctx context.Context, id, farmerID, filename, contentType string, data []byte) (string, error) {
	if s.uploader == nil {
		return "", invalid("image uploads are not enabled")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if listing.FarmerID != farmerID {
		return "", forbidden("you can only add images to your own listings")
	}

	url, err := s.uploader.Upload(ctx, "listings/"+id+"/"+filename, contentType, data)
	if err != nil {
		return "", err
	}

	var images []string
	if listing.Images != "" {
		if err := json.Unmarshal([]byte(listing.Images), &images); err != nil {
			images = nil
		}
	}
	images = append(images, url)
	raw, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	listing.Images = string(raw)
	if err := s.repo.Update(ctx, listing); err != nil {
		return "", err
	}
	return url, nil
}

func validateListing(in CreateListingInput) error {
	if strings.TrimSpace(in.Title) == "" || in.GrainType == "" || in.QuantityUnit == "" {
		return invalid("missing required fields")
	}
	if in.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if in.Quantity <= 0 {
		return invalid("quantity must be positive")
	}
	if in.MinimumOrder != nil && *in.MinimumOrder <= 0 {
		return invalid("minimum order must be positive")
	}
	return nil
}
