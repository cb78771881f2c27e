package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateOrderInput struct {
	ListingID       string
	FarmerID        string
	UnitPrice       decimal.Decimal
	Quantity        int
	PaymentMethod   string
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string
	ShippingNotes   string
	Notes           string
}

// OrderDetail bundles everything the order page needs in one response.
type OrderDetail struct {
	Order            model.Order
	Transactions     []model.Transaction
	History          []model.OrderHistory
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
}

type OrderService interface {
	Create(ctx context.Context, buyerID string, in CreateOrderInput) (*model.Order, error)
	Cancel(ctx context.Context, orderID, buyerID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID, actorID string, status model.OrderStatus, notes string) (*model.Order, error)
	GetDetail(ctx context.Context, orderID, userID string) (*OrderDetail, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	txnRepo     repository.TransactionRepository
	publisher   events.Publisher
	log         *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	txnRepo repository.TransactionRepository,
	publisher events.Publisher,
	log *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		txnRepo:     txnRepo,
		publisher:   publisher,
		log:         log,
	}
}

// Create runs every precondition before any write. The order row is the only
// mandatory write; the history entry and the event publish are best-effort.
func (s *orderService) Create(ctx context.Context, buyerID string, in CreateOrderInput) (*model.Order, error) {
	profile, err := s.profileRepo.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbidden("only buyers can create orders")
		}
		return nil, err
	}
	if profile.UserType != model.UserTypeBuyer {
		return nil, forbidden("only buyers can create orders")
	}

	if in.ListingID == "" || in.FarmerID == "" ||
		strings.TrimSpace(in.ShippingAddress) == "" ||
		strings.TrimSpace(in.ShippingCity) == "" ||
		strings.TrimSpace(in.ShippingState) == "" ||
		strings.TrimSpace(in.ShippingZip) == "" {
		return nil, invalid("missing required fields")
	}
	if in.Quantity <= 0 || !in.UnitPrice.IsPositive() {
		return nil, invalid("missing required fields")
	}

	listing, err := s.listingRepo.FindByID(ctx, in.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.Status != model.ListingStatusActive {
		return nil, invalid("this listing is no longer available")
	}
	if in.Quantity > listing.Quantity {
		return nil, invalid("requested quantity exceeds available quantity")
	}
	if listing.MinimumOrder != nil && in.Quantity < *listing.MinimumOrder {
		return nil, invalid(fmt.Sprintf("minimum order quantity is %d", *listing.MinimumOrder))
	}
	if listing.FarmerID == buyerID {
		return nil, invalid("cannot order from your own listing")
	}

	// Price and farmer are snapshotted here; later listing edits must not
	// affect this order.
	order := &model.Order{
		ListingID:       listing.ID,
		BuyerID:         buyerID,
		FarmerID:        listing.FarmerID,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		TotalPrice:      in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		ShippingCity:    in.ShippingCity,
		ShippingState:   in.ShippingState,
		ShippingZip:     in.ShippingZip,
		ShippingNotes:   in.ShippingNotes,
		Notes:           in.Notes,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.writeHistory(ctx, order, buyerID, "Order created")
	s.publish(ctx, events.SubjectOrderCreated, order)
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID, buyerID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, forbidden("you can only cancel your own orders")
	}
	if order.Status != model.OrderStatusPending {
		return nil, invalid("only pending orders can be cancelled")
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = model.OrderStatusCancelled

	s.writeHistory(ctx, order, buyerID, "Order cancelled by buyer")
	s.publish(ctx, events.SubjectOrderStatus, order)
	return order, nil
}

// UpdateStatus is the farmer-side transition. The target value is checked
// against the enum before anything is read, and against the transition table
// before anything is written.
func (s *orderService) UpdateStatus(ctx context.Context, orderID, actorID string, status model.OrderStatus, notes string) (*model.Order, error) {
	if !status.Valid() {
		return nil, invalid("invalid status")
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.FarmerID != actorID {
		return nil, forbidden("you can only update orders for your listings")
	}
	if !order.Status.CanTransition(status) {
		return nil, invalid(fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}
	order.Status = status

	historyNotes := notes
	if historyNotes == "" {
		historyNotes = fmt.Sprintf("Status changed to %s", status)
	}
	s.writeHistory(ctx, order, actorID, historyNotes)
	s.publish(ctx, events.SubjectOrderStatus, order)
	return order, nil
}

func (s *orderService) GetDetail(ctx context.Context, orderID, userID string) (*OrderDetail, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if userID != order.BuyerID && userID != order.FarmerID {
		return nil, forbidden("you are not a party to this order")
	}
	txns, err := s.txnRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.orderRepo.ListHistory(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	// Remaining balance is always recomputed from confirmed transactions,
	// never stored.
	totalPaid := decimal.Zero
	for _, t := range txns {
		if t.Status == model.TransactionStatusPaid {
			totalPaid = totalPaid.Add(t.Amount)
		}
	}
	return &OrderDetail{
		Order:            *order,
		Transactions:     txns,
		History:          history,
		TotalPaid:        totalPaid,
		RemainingBalance: order.TotalPrice.Sub(totalPaid),
	}, nil
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	return s.orderRepo.ListByBuyer(ctx, buyerID)
}

func (s *orderService) ListByFarmer(ctx context.Context, farmerID string) ([]model.Order, error) {
	return s.orderRepo.ListByFarmer(ctx, farmerID)
}

// writeHistory appends an audit row. Failures are logged and swallowed; the
// audit trail must never fail the primary operation.
func (s *orderService) writeHistory(ctx context.Context, order *model.Order, actorID, notes string) {
	h := &model.OrderHistory{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Notes:         notes,
		CreatedBy:     actorID,
	}
	if err := s.orderRepo.CreateHistory(ctx, h); err != nil {
		s.log.Warn("order history write failed",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

func (s *orderService) publish(ctx context.Context, subject string, order *model.Order) {
	if err := s.publisher.Publish(ctx, subject, order); err != nil {
		s.log.Warn("event publish failed",
			zap.String("subject", subject),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
