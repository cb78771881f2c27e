package service

import (
	"context"
	"testing"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db          *gorm.DB
	orders      repository.OrderRepository
	listings    repository.ListingRepository
	profiles    repository.ProfileRepository
	txns        repository.TransactionRepository
	reviews     repository.ReviewRepository
	orderSvc    OrderService
	paymentSvc  PaymentService
	reviewSvc   ReviewService
	listingSvc  ListingService
	buyerID     string
	farmerID    string
	listingID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Profile{},
		&model.Listing{},
		&model.Order{},
		&model.OrderHistory{},
		&model.Transaction{},
		&model.Review{},
		&model.Conversation{},
		&model.Message{},
	))

	f := &fixture{
		db:       db,
		orders:   repository.NewOrderRepository(db),
		listings: repository.NewListingRepository(db),
		profiles: repository.NewProfileRepository(db),
		txns:     repository.NewTransactionRepository(db),
		reviews:  repository.NewReviewRepository(db),
		buyerID:  "buyer-1",
		farmerID: "farmer-1",
	}
	log := zap.NewNop()
	pub := events.NopPublisher{}
	f.orderSvc = NewOrderService(f.orders, f.listings, f.profiles, f.txns, pub, log)
	f.paymentSvc = NewPaymentService(f.orders, f.txns, pub, log)
	f.reviewSvc = NewReviewService(f.reviews, f.orders, pub, log)
	f.listingSvc = NewListingService(f.listings, f.profiles, nil, nil, log)

	ctx := context.Background()
	require.NoError(t, f.profiles.Create(ctx, &model.Profile{ID: f.buyerID, UserType: model.UserTypeBuyer}))
	require.NoError(t, f.profiles.Create(ctx, &model.Profile{ID: f.farmerID, UserType: model.UserTypeFarmer}))

	min := 10
	listing := &model.Listing{
		FarmerID:     f.farmerID,
		Title:        "Hard Red Winter Wheat",
		GrainType:    "wheat",
		Price:        decimal.RequireFromString("8.50"),
		Quantity:     500,
		QuantityUnit: "bushel",
		MinimumOrder: &min,
		Images:       "[]",
		Status:       model.ListingStatusActive,
	}
	require.NoError(t, f.listings.Create(ctx, listing))
	f.listingID = listing.ID
	return f
}

func (f *fixture) createOrderInput() CreateOrderInput {
	return CreateOrderInput{
		ListingID:       f.listingID,
		FarmerID:        f.farmerID,
		UnitPrice:       decimal.RequireFromString("8.50"),
		Quantity:        50,
		PaymentMethod:   "bank_transfer",
		ShippingAddress: "1 Mill Rd",
		ShippingCity:    "Topeka",
		ShippingState:   "KS",
		ShippingZip:     "66603",
	}
}

func (f *fixture) mustCreateOrder(t *testing.T) *model.Order {
	t.Helper()
	order, err := f.orderSvc.Create(context.Background(), f.buyerID, f.createOrderInput())
	require.NoError(t, err)
	return order
}

// completeOrder walks an order through the full fulfilment chain.
func (f *fixture) completeOrder(t *testing.T, orderID string) {
	t.Helper()
	ctx := context.Background()
	chain := []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusReady,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
		model.OrderStatusCompleted,
	}
	for _, st := range chain {
		_, err := f.orderSvc.UpdateStatus(ctx, orderID, f.farmerID, st, "")
		require.NoError(t, err)
	}
}
