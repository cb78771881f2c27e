package service

import (
	"context"
	"errors"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DerivePaymentStatus maps a paid total onto the order's payment status. It is
// a pure function of the summed amount and the order total, so re-deriving
// from the same transaction set always gives the same answer regardless of
// summation order.
func DerivePaymentStatus(totalPaid, totalPrice decimal.Decimal) model.PaymentStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(totalPrice):
		return model.PaymentStatusPaid
	case totalPaid.IsPositive():
		return model.PaymentStatusPartiallyPaid
	default:
		return model.PaymentStatusPending
	}
}

type RecordPaymentInput struct {
	Amount               decimal.Decimal
	PaymentMethod        string
	TransactionReference string
	Notes                string
}

type PaymentResult struct {
	Transaction   model.Transaction
	PaymentStatus model.PaymentStatus
}

type PaymentService interface {
	RecordPayment(ctx context.Context, orderID, buyerID string, in RecordPaymentInput) (*PaymentResult, error)
	ConfirmPayment(ctx context.Context, orderID, transactionID, farmerID string) (*PaymentResult, error)
}

type paymentService struct {
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	publisher events.Publisher
	log       *zap.Logger
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	txnRepo repository.TransactionRepository,
	publisher events.Publisher,
	log *zap.Logger,
) PaymentService {
	return &paymentService{orderRepo: orderRepo, txnRepo: txnRepo, publisher: publisher, log: log}
}

// RecordPayment inserts a pending transaction, then re-derives the order's
// payment status. The just-recorded amount is counted toward the paid total
// before confirmation, so the order shows as paid the moment the buyer submits
// a covering payment. Kept intentionally; see DESIGN.md.
func (s *paymentService) RecordPayment(ctx context.Context, orderID, buyerID string, in RecordPaymentInput) (*PaymentResult, error) {
	if !in.Amount.IsPositive() {
		return nil, invalid("invalid amount")
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, forbidden("only the buyer can record payments")
	}

	txn := &model.Transaction{
		OrderID:              order.ID,
		Amount:               in.Amount,
		PaymentMethod:        in.PaymentMethod,
		TransactionReference: in.TransactionReference,
		Status:               model.TransactionStatusPending,
		Notes:                in.Notes,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	totalPaid, err := s.paidTotal(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	candidate := totalPaid.Add(in.Amount)
	status := DerivePaymentStatus(candidate, order.TotalPrice)
	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}

	s.publishPayment(ctx, order.ID, txn, status)
	return &PaymentResult{Transaction: *txn, PaymentStatus: status}, nil
}

// ConfirmPayment is the farmer-side settlement step: one pending transaction
// becomes paid and the order's payment status is re-derived from confirmed
// rows only.
func (s *paymentService) ConfirmPayment(ctx context.Context, orderID, transactionID, farmerID string) (*PaymentResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.FarmerID != farmerID {
		return nil, forbidden("only the farmer can confirm payments")
	}
	txn, err := s.txnRepo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if txn.OrderID != order.ID {
		return nil, ErrNotFound
	}
	if txn.Status != model.TransactionStatusPending {
		return nil, invalid("transaction is already settled")
	}
	if err := s.txnRepo.UpdateStatus(ctx, txn.ID, model.TransactionStatusPaid); err != nil {
		return nil, err
	}
	txn.Status = model.TransactionStatusPaid

	totalPaid, err := s.paidTotal(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	status := DerivePaymentStatus(totalPaid, order.TotalPrice)
	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}

	s.publishPayment(ctx, order.ID, txn, status)
	return &PaymentResult{Transaction: *txn, PaymentStatus: status}, nil
}

func (s *paymentService) paidTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	paid, err := s.txnRepo.ListPaidByOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range paid {
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (s *paymentService) publishPayment(ctx context.Context, orderID string, txn *model.Transaction, status model.PaymentStatus) {
	payload := map[string]interface{}{
		"orderId":       orderID,
		"transactionId": txn.ID,
		"amount":        txn.Amount,
		"paymentStatus": status,
	}
	if err := s.publisher.Publish(ctx, events.SubjectPaymentRecorded, payload); err != nil {
		s.log.Warn("event publish failed",
			zap.String("subject", events.SubjectPaymentRecorded),
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
