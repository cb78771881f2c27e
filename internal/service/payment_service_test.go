package service

import (
	"context"
	"testing"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.RequireFromString("425.00")
	tests := []struct {
		paid string
		want model.PaymentStatus
	}{
		{"0", model.PaymentStatusPending},
		{"0.01", model.PaymentStatusPartiallyPaid},
		{"200.00", model.PaymentStatusPartiallyPaid},
		{"424.99", model.PaymentStatusPartiallyPaid},
		{"425.00", model.PaymentStatusPaid},
		{"500.00", model.PaymentStatusPaid},
	}
	for _, tt := range tests {
		got := DerivePaymentStatus(decimal.RequireFromString(tt.paid), total)
		assert.Equal(t, tt.want, got, "paid=%s", tt.paid)
	}

	// Re-deriving from the same set is idempotent no matter the order the
	// amounts are summed in.
	a := decimal.RequireFromString("100.10")
	b := decimal.RequireFromString("324.90")
	assert.Equal(t, DerivePaymentStatus(a.Add(b), total), DerivePaymentStatus(b.Add(a), total))
}

func TestRecordPayment(t *testing.T) {
	t.Run("covering payment marks the order paid immediately", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)

		res, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount:        decimal.RequireFromString("425.00"),
			PaymentMethod: "bank_transfer",
		})
		require.NoError(t, err)

		// Status flips on the optimistic total even though the transaction
		// itself has not been confirmed yet.
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
		assert.Equal(t, model.TransactionStatusPending, res.Transaction.Status)

		got, err := f.orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	})

	t.Run("partial payment", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)

		res, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("200.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPartiallyPaid, res.PaymentStatus)
	})

	t.Run("confirmed and fresh amounts combine", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)

		first, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("200.00"),
		})
		require.NoError(t, err)
		_, err = f.paymentSvc.ConfirmPayment(ctx, order.ID, first.Transaction.ID, f.farmerID)
		require.NoError(t, err)

		res, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("225.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newFixture(t)
		order := f.mustCreateOrder(t)
		_, err := f.paymentSvc.RecordPayment(context.Background(), order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.Zero,
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "invalid amount", ve.Msg)
	})

	t.Run("only the buyer may record", func(t *testing.T) {
		f := newFixture(t)
		order := f.mustCreateOrder(t)
		_, err := f.paymentSvc.RecordPayment(context.Background(), order.ID, f.farmerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("10.00"),
		})
		var fe *ForbiddenError
		require.ErrorAs(t, err, &fe)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.paymentSvc.RecordPayment(context.Background(), "missing", f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("10.00"),
		})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConfirmPayment(t *testing.T) {
	t.Run("settles the transaction and re-derives from paid rows", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)

		rec, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("425.00"),
		})
		require.NoError(t, err)

		res, err := f.paymentSvc.ConfirmPayment(ctx, order.ID, rec.Transaction.ID, f.farmerID)
		require.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPaid, res.Transaction.Status)
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
	})

	t.Run("only the farmer may confirm", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)
		rec, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("50.00"),
		})
		require.NoError(t, err)

		_, err = f.paymentSvc.ConfirmPayment(ctx, order.ID, rec.Transaction.ID, f.buyerID)
		var fe *ForbiddenError
		require.ErrorAs(t, err, &fe)
	})

	t.Run("transaction must belong to the order", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)
		other := f.mustCreateOrder(t)
		rec, err := f.paymentSvc.RecordPayment(ctx, other.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("50.00"),
		})
		require.NoError(t, err)

		_, err = f.paymentSvc.ConfirmPayment(ctx, order.ID, rec.Transaction.ID, f.farmerID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("double confirmation is rejected", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		order := f.mustCreateOrder(t)
		rec, err := f.paymentSvc.RecordPayment(ctx, order.ID, f.buyerID, RecordPaymentInput{
			Amount: decimal.RequireFromString("50.00"),
		})
		require.NoError(t, err)

		_, err = f.paymentSvc.ConfirmPayment(ctx, order.ID, rec.Transaction.ID, f.farmerID)
		require.NoError(t, err)
		_, err = f.paymentSvc.ConfirmPayment(ctx, order.ID, rec.Transaction.ID, f.farmerID)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "transaction is already settled", ve.Msg)
	})
}
