package handler

import (
	"net/http"
	"time"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type createReviewRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	FarmerID  string `json:"farmer_id" validate:"required"`
	ListingID string `json:"listing_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

type ReviewResponse struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	BuyerID   string `json:"buyerId"`
	FarmerID  string `json:"farmerId"`
	ListingID string `json:"listingId"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func toReviewResponse(rv *model.Review) ReviewResponse {
	return ReviewResponse{
		ID:        rv.ID,
		OrderID:   rv.OrderID,
		BuyerID:   rv.BuyerID,
		FarmerID:  rv.FarmerID,
		ListingID: rv.ListingID,
		Rating:    rv.Rating,
		Title:     rv.Title,
		Content:   rv.Content,
		CreatedAt: rv.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing required fields"))
	}
	review, err := h.svc.Create(c.Request().Context(), uid, service.CreateReviewInput{
		OrderID:   req.OrderID,
		FarmerID:  req.FarmerID,
		ListingID: req.ListingID,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		return writeServiceError(c, err, "order not found")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"review":  toReviewResponse(review),
	})
}

func (h *ReviewHandler) List(c echo.Context) error {
	farmerID := c.QueryParam("farmer_id")
	listingID := c.QueryParam("listing_id")

	var (
		reviews []model.Review
		err     error
	)
	switch {
	case farmerID != "":
		reviews, err = h.svc.ListByFarmer(c.Request().Context(), farmerID)
	case listingID != "":
		reviews, err = h.svc.ListByListing(c.Request().Context(), listingID)
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "farmer_id or listing_id is required"))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch reviews"))
	}
	resp := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, toReviewResponse(&reviews[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
