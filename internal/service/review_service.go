package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	OrderID   string
	FarmerID  string
	ListingID string
	Rating    int
	Title     string
	Content   string
}

type ReviewService interface {
	Create(ctx context.Context, buyerID string, in CreateReviewInput) (*model.Review, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Review, error)
	ListByListing(ctx context.Context, listingID string) ([]model.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	publisher  events.Publisher
	log        *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	log *zap.Logger,
) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, orderRepo: orderRepo, publisher: publisher, log: log}
}

// Create enforces the review gate: the caller must be the order's buyer, the
// order must be completed, and the (order, buyer) pair must not have a review
// yet. Checks run in that order; the first failure wins. The check-then-insert
// is racy on its own, so the unique index is the backstop and a duplicate-key
// error from the insert maps to the same conflict.
func (s *reviewService) Create(ctx context.Context, buyerID string, in CreateReviewInput) (*model.Review, error) {
	if in.OrderID == "" || in.FarmerID == "" || in.ListingID == "" ||
		strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, invalid("missing required fields")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}

	order, err := s.orderRepo.FindByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, forbidden("you can only review orders you've purchased")
	}
	if order.Status != model.OrderStatusCompleted {
		return nil, invalid("you can only review completed orders")
	}

	if _, err := s.reviewRepo.FindByOrderAndBuyer(ctx, in.OrderID, buyerID); err == nil {
		return nil, conflict("you have already reviewed this order")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &model.Review{
		OrderID:   in.OrderID,
		BuyerID:   buyerID,
		FarmerID:  in.FarmerID,
		ListingID: in.ListingID,
		Rating:    in.Rating,
		Title:     in.Title,
		Content:   in.Content,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("you have already reviewed this order")
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.SubjectReviewCreated, review); err != nil {
		s.log.Warn("event publish failed",
			zap.String("subject", events.SubjectReviewCreated),
			zap.String("review_id", review.ID),
			zap.Error(err))
	}
	return review, nil
}

func (s *reviewService) ListByFarmer(ctx context.Context, farmerID string) ([]model.Review, error) {
	return s.reviewRepo.ListByFarmer(ctx, farmerID)
}

func (s *reviewService) ListByListing(ctx context.Context, listingID string) ([]model.Review, error) {
	return s.reviewRepo.ListByListing(ctx, listingID)
}
