package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	svc      service.OrderService
	payments service.PaymentService
}

func NewOrderHandler(svc service.OrderService, payments service.PaymentService) *OrderHandler {
	return &OrderHandler{svc: svc, payments: payments}
}

type createOrderForm struct {
	ListingID       string `form:"listing_id" validate:"required"`
	FarmerID        string `form:"farmer_id" validate:"required"`
	UnitPrice       string `form:"unit_price" validate:"required"`
	Quantity        int    `form:"quantity" validate:"required,gt=0"`
	PaymentMethod   string `form:"payment_method"`
	ShippingAddress string `form:"shipping_address" validate:"required"`
	ShippingCity    string `form:"shipping_city" validate:"required"`
	ShippingState   string `form:"shipping_state" validate:"required"`
	ShippingZip     string `form:"shipping_zip" validate:"required"`
	ShippingNotes   string `form:"shipping_notes"`
	Notes           string `form:"notes"`
}

// Create handles the order form: validate, run the workflow engine, then 303
// to the confirmation page like the rest of the form-submitting flows.
func (h *OrderHandler) Create(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var form createOrderForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid form"))
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing required fields"))
	}
	unitPrice, err := decimal.NewFromString(form.UnitPrice)
	if err != nil || !unitPrice.IsPositive() {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid unit price"))
	}

	order, err := h.svc.Create(c.Request().Context(), uid, service.CreateOrderInput{
		ListingID:       form.ListingID,
		FarmerID:        form.FarmerID,
		UnitPrice:       unitPrice,
		Quantity:        form.Quantity,
		PaymentMethod:   form.PaymentMethod,
		ShippingAddress: form.ShippingAddress,
		ShippingCity:    form.ShippingCity,
		ShippingState:   form.ShippingState,
		ShippingZip:     form.ShippingZip,
		ShippingNotes:   form.ShippingNotes,
		Notes:           form.Notes,
	})
	if err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/orders/"+order.ID+"/confirmation")
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "order id is required"))
	}
	if _, err := h.svc.Cancel(c.Request().Context(), id, uid); err != nil {
		return writeServiceError(c, err, "order not found")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/orders")
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "order id is required"))
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status is required"))
	}
	if _, err := h.svc.UpdateStatus(c.Request().Context(), id, uid, model.OrderStatus(req.Status), req.Notes); err != nil {
		return writeServiceError(c, err, "order not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type recordPaymentRequest struct {
	Amount               json.Number `json:"amount" validate:"required"`
	PaymentMethod        string      `json:"payment_method"`
	TransactionReference string      `json:"transaction_reference"`
	Notes                string      `json:"notes"`
}

func (h *OrderHandler) RecordPayment(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "order id is required"))
	}
	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid amount"))
	}
	if _, err := h.payments.RecordPayment(c.Request().Context(), id, uid, service.RecordPaymentInput{
		Amount:               amount,
		PaymentMethod:        req.PaymentMethod,
		TransactionReference: req.TransactionReference,
		Notes:                req.Notes,
	}); err != nil {
		return writeServiceError(c, err, "order not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type confirmPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "order id is required"))
	}
	var req confirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "transaction_id is required"))
	}
	res, err := h.payments.ConfirmPayment(c.Request().Context(), id, req.TransactionID, uid)
	if err != nil {
		return writeServiceError(c, err, "transaction not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"payment_status": res.PaymentStatus,
	})
}

type OrderResponse struct {
	ID              string `json:"id"`
	ListingID       string `json:"listingId"`
	BuyerID         string `json:"buyerId"`
	FarmerID        string `json:"farmerId"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unitPrice"`
	TotalPrice      string `json:"totalPrice"`
	Status          string `json:"status"`
	PaymentStatus   string `json:"paymentStatus"`
	PaymentMethod   string `json:"paymentMethod,omitempty"`
	ShippingAddress string `json:"shippingAddress"`
	ShippingCity    string `json:"shippingCity"`
	ShippingState   string `json:"shippingState"`
	ShippingZip     string `json:"shippingZip"`
	ShippingNotes   string `json:"shippingNotes,omitempty"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		ListingID:       o.ListingID,
		BuyerID:         o.BuyerID,
		FarmerID:        o.FarmerID,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice.StringFixed(2),
		TotalPrice:      o.TotalPrice.StringFixed(2),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		ShippingState:   o.ShippingState,
		ShippingZip:     o.ShippingZip,
		ShippingNotes:   o.ShippingNotes,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
}

type TransactionResponse struct {
	ID                   string `json:"id"`
	Amount               string `json:"amount"`
	PaymentMethod        string `json:"paymentMethod,omitempty"`
	TransactionReference string `json:"transactionReference,omitempty"`
	Status               string `json:"status"`
	Notes                string `json:"notes,omitempty"`
	CreatedAt            string `json:"createdAt"`
}

type HistoryResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	Notes         string `json:"notes,omitempty"`
	CreatedBy     string `json:"createdBy"`
	CreatedAt     string `json:"createdAt"`
}

type OrderDetailResponse struct {
	Order            OrderResponse         `json:"order"`
	Transactions     []TransactionResponse `json:"transactions"`
	History          []HistoryResponse     `json:"history"`
	TotalPaid        string                `json:"totalPaid"`
	RemainingBalance string                `json:"remainingBalance"`
}

func (h *OrderHandler) Get(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	detail, err := h.svc.GetDetail(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeServiceError(c, err, "order not found")
	}
	resp := OrderDetailResponse{
		Order:            toOrderResponse(&detail.Order),
		Transactions:     make([]TransactionResponse, 0, len(detail.Transactions)),
		History:          make([]HistoryResponse, 0, len(detail.History)),
		TotalPaid:        detail.TotalPaid.StringFixed(2),
		RemainingBalance: detail.RemainingBalance.StringFixed(2),
	}
	for _, t := range detail.Transactions {
		resp.Transactions = append(resp.Transactions, TransactionResponse{
			ID:                   t.ID,
			Amount:               t.Amount.StringFixed(2),
			PaymentMethod:        t.PaymentMethod,
			TransactionReference: t.TransactionReference,
			Status:               string(t.Status),
			Notes:                t.Notes,
			CreatedAt:            t.CreatedAt.Format(time.RFC3339),
		})
	}
	for _, hst := range detail.History {
		resp.History = append(resp.History, HistoryResponse{
			Status:        string(hst.Status),
			PaymentStatus: string(hst.PaymentStatus),
			Notes:         hst.Notes,
			CreatedBy:     hst.CreatedBy,
			CreatedAt:     hst.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByFarmer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sales"))
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func toOrderResponses(list []model.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return resp
}
