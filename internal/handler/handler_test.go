package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerFixture struct {
	e       *echo.Echo
	orders  *OrderHandler
	reviews *ReviewHandler

	orderSvc  service.OrderService
	buyerID   string
	farmerID  string
	listingID string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
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
	))

	profiles := repository.NewProfileRepository(db)
	listings := repository.NewListingRepository(db)
	orders := repository.NewOrderRepository(db)
	txns := repository.NewTransactionRepository(db)
	reviews := repository.NewReviewRepository(db)

	log := zap.NewNop()
	pub := events.NopPublisher{}
	orderSvc := service.NewOrderService(orders, listings, profiles, txns, pub, log)
	paymentSvc := service.NewPaymentService(orders, txns, pub, log)
	reviewSvc := service.NewReviewService(reviews, orders, pub, log)

	f := &handlerFixture{
		orders:   NewOrderHandler(orderSvc, paymentSvc),
		reviews:  NewReviewHandler(reviewSvc),
		orderSvc: orderSvc,
		buyerID:  "buyer-1",
		farmerID: "farmer-1",
	}
	f.e = echo.New()
	f.e.Validator = NewRequestValidator()

	ctx := context.Background()
	require.NoError(t, profiles.Create(ctx, &model.Profile{ID: f.buyerID, UserType: model.UserTypeBuyer}))
	require.NoError(t, profiles.Create(ctx, &model.Profile{ID: f.farmerID, UserType: model.UserTypeFarmer}))

	listing := &model.Listing{
		FarmerID:     f.farmerID,
		Title:        "Malting Barley",
		GrainType:    "barley",
		Price:        decimal.RequireFromString("8.50"),
		Quantity:     500,
		QuantityUnit: "bushel",
		Images:       "[]",
		Status:       model.ListingStatusActive,
	}
	require.NoError(t, listings.Create(ctx, listing))
	f.listingID = listing.ID
	return f
}

// formContext builds an echo context for a form POST with the given uid
// already resolved, the way the auth middleware would leave it.
func (f *handlerFixture) formContext(uid, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	return c, rec
}

func (f *handlerFixture) jsonContext(uid, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	return c, rec
}

func (f *handlerFixture) orderForm() url.Values {
	return url.Values{
		"listing_id":       {f.listingID},
		"farmer_id":        {f.farmerID},
		"unit_price":       {"8.50"},
		"quantity":         {"50"},
		"payment_method":   {"bank_transfer"},
		"shipping_address": {"1 Mill Rd"},
		"shipping_city":    {"Topeka"},
		"shipping_state":   {"KS"},
		"shipping_zip":     {"66603"},
	}
}

func (f *handlerFixture) mustCreateOrder(t *testing.T) *model.Order {
	t.Helper()
	order, err := f.orderSvc.Create(context.Background(), f.buyerID, service.CreateOrderInput{
		ListingID:       f.listingID,
		FarmerID:        f.farmerID,
		UnitPrice:       decimal.RequireFromString("8.50"),
		Quantity:        50,
		ShippingAddress: "1 Mill Rd",
		ShippingCity:    "Topeka",
		ShippingState:   "KS",
		ShippingZip:     "66603",
	})
	require.NoError(t, err)
	return order
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestOrderCreateHandler(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		f := newHandlerFixture(t)
		c, rec := f.formContext("", "/api/orders/create", f.orderForm())
		require.NoError(t, f.orders.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Error.Code)
	})

	t.Run("redirects to confirmation", func(t *testing.T) {
		f := newHandlerFixture(t)
		c, rec := f.formContext(f.buyerID, "/api/orders/create", f.orderForm())
		require.NoError(t, f.orders.Create(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc := rec.Header().Get(echo.HeaderLocation)
		assert.True(t, strings.HasPrefix(loc, "/dashboard/orders/"))
		assert.True(t, strings.HasSuffix(loc, "/confirmation"))
	})

	t.Run("missing required fields", func(t *testing.T) {
		f := newHandlerFixture(t)
		form := f.orderForm()
		form.Del("shipping_address")
		c, rec := f.formContext(f.buyerID, "/api/orders/create", form)
		require.NoError(t, f.orders.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad unit price", func(t *testing.T) {
		f := newHandlerFixture(t)
		form := f.orderForm()
		form.Set("unit_price", "eight fifty")
		c, rec := f.formContext(f.buyerID, "/api/orders/create", form)
		require.NoError(t, f.orders.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid unit price", decodeError(t, rec).Error.Message)
	})

	t.Run("farmer is forbidden", func(t *testing.T) {
		f := newHandlerFixture(t)
		c, rec := f.formContext(f.farmerID, "/api/orders/create", f.orderForm())
		require.NoError(t, f.orders.Create(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestOrderUpdateStatusHandler(t *testing.T) {
	t.Run("farmer advances the order", func(t *testing.T) {
		f := newHandlerFixture(t)
		order := f.mustCreateOrder(t)
		c, rec := f.jsonContext(f.farmerID, "/api/orders/update-status?id="+order.ID, `{"status":"confirmed"}`)
		require.NoError(t, f.orders.UpdateStatus(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("buyer is forbidden", func(t *testing.T) {
		f := newHandlerFixture(t)
		order := f.mustCreateOrder(t)
		c, rec := f.jsonContext(f.buyerID, "/api/orders/update-status?id="+order.ID, `{"status":"confirmed"}`)
		require.NoError(t, f.orders.UpdateStatus(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("skipping ahead", func(t *testing.T) {
		f := newHandlerFixture(t)
		order := f.mustCreateOrder(t)
		c, rec := f.jsonContext(f.farmerID, "/api/orders/update-status?id="+order.ID, `{"status":"completed"}`)
		require.NoError(t, f.orders.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing order id", func(t *testing.T) {
		f := newHandlerFixture(t)
		c, rec := f.jsonContext(f.farmerID, "/api/orders/update-status", `{"status":"confirmed"}`)
		require.NoError(t, f.orders.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newHandlerFixture(t)
		c, rec := f.jsonContext(f.farmerID, "/api/orders/update-status?id=missing", `{"status":"confirmed"}`)
		require.NoError(t, f.orders.UpdateStatus(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "order not found", decodeError(t, rec).Error.Message)
	})
}

func TestRecordPaymentHandler(t *testing.T) {
	f := newHandlerFixture(t)
	order := f.mustCreateOrder(t)

	t.Run("success", func(t *testing.T) {
		c, rec := f.jsonContext(f.buyerID, "/api/orders/record-payment?id="+order.ID,
			`{"amount":425.00,"payment_method":"bank_transfer"}`)
		require.NoError(t, f.orders.RecordPayment(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("malformed amount", func(t *testing.T) {
		c, rec := f.jsonContext(f.buyerID, "/api/orders/record-payment?id="+order.ID, `{"amount":"lots"}`)
		require.NoError(t, f.orders.RecordPayment(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("farmer cannot record", func(t *testing.T) {
		c, rec := f.jsonContext(f.farmerID, "/api/orders/record-payment?id="+order.ID, `{"amount":10}`)
		require.NoError(t, f.orders.RecordPayment(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestReviewCreateHandler(t *testing.T) {
	completeOrder := func(t *testing.T, f *handlerFixture, orderID string) {
		t.Helper()
		ctx := context.Background()
		for _, st := range []model.OrderStatus{
			model.OrderStatusConfirmed, model.OrderStatusProcessing, model.OrderStatusReady,
			model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCompleted,
		} {
			_, err := f.orderSvc.UpdateStatus(ctx, orderID, f.farmerID, st, "")
			require.NoError(t, err)
		}
	}
	reviewBody := func(f *handlerFixture, orderID string) string {
		b, _ := json.Marshal(map[string]interface{}{
			"order_id":   orderID,
			"farmer_id":  f.farmerID,
			"listing_id": f.listingID,
			"rating":     5,
			"title":      "Great barley",
			"content":    "Would buy again.",
		})
		return string(b)
	}

	t.Run("created", func(t *testing.T) {
		f := newHandlerFixture(t)
		order := f.mustCreateOrder(t)
		completeOrder(t, f, order.ID)
		c, rec := f.jsonContext(f.buyerID, "/api/reviews/create", reviewBody(f, order.ID))
		require.NoError(t, f.reviews.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		f := newHandlerFixture(t)
		order := f.mustCreateOrder(t)
		completeOrder(t, f, order.ID)
		c, _ := f.jsonContext(f.buyerID, "/api/reviews/create", reviewBody(f, order.ID))
		require.NoError(t, f.reviews.Create(c))

		c, rec := f.jsonContext(f.buyerID, "/api/reviews/create", reviewBody(f, order.ID))
		require.NoError(t, f.reviews.Create(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "you have already reviewed this order", decodeError(t, rec).Error.Message)
	})

	t.Run("order not completed", func(t *testing.T) {
		f := newHandlerFixture(t)
		order := f.mustCreateOrder(t)
		c, rec := f.jsonContext(f.buyerID, "/api/reviews/create", reviewBody(f, order.ID))
		require.NoError(t, f.reviews.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newHandlerFixture(t)
		c, rec := f.jsonContext(f.buyerID, "/api/reviews/create", reviewBody(f, "missing"))
		require.NoError(t, f.reviews.Create(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
