package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type listingForm struct {
	Title         string `form:"title" validate:"required"`
	GrainType     string `form:"grain_type" validate:"required"`
	FarmingMethod string `form:"farming_method"`
	Description   string `form:"description"`
	Price         string `form:"price" validate:"required"`
	Quantity      int    `form:"quantity" validate:"required,gt=0"`
	QuantityUnit  string `form:"quantity_unit" validate:"required"`
	MinimumOrder  string `form:"minimum_order"`
	HarvestDate   string `form:"harvest_date"`
	Location      string `form:"location"`
	City          string `form:"city"`
	State         string `form:"state"`
	Country       string `form:"country"`
	Featured      string `form:"featured"`
}

func (f *listingForm) toInput() (service.CreateListingInput, error) {
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		return service.CreateListingInput{}, err
	}
	in := service.CreateListingInput{
		Title:         f.Title,
		GrainType:     f.GrainType,
		FarmingMethod: f.FarmingMethod,
		Description:   f.Description,
		Price:         price,
		Quantity:      f.Quantity,
		QuantityUnit:  f.QuantityUnit,
		Location:      f.Location,
		City:          f.City,
		State:         f.State,
		Country:       f.Country,
		Featured:      f.Featured == "true",
	}
	if f.MinimumOrder != "" {
		min, err := strconv.Atoi(f.MinimumOrder)
		if err != nil {
			return service.CreateListingInput{}, err
		}
		in.MinimumOrder = &min
	}
	if f.HarvestDate != "" {
		d, err := time.Parse("2006-01-02", f.HarvestDate)
		if err != nil {
			return service.CreateListingInput{}, err
		}
		in.HarvestDate = &d
	}
	return in, nil
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var form listingForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid form"))
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing required fields"))
	}
	in, err := form.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid field value"))
	}
	if _, err := h.svc.Create(c.Request().Context(), uid, in); err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/listings")
}

func (h *ListingHandler) Update(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var form listingForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid form"))
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing required fields"))
	}
	in, err := form.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid field value"))
	}
	listing, err := h.svc.Update(c.Request().Context(), c.Param("id"), uid, in)
	if err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "listing id is required"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/listings")
}

func (h *ListingHandler) Get(c echo.Context) error {
	listing, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
}

func (h *ListingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	f := repository.ListingFilter{
		GrainType:     c.QueryParam("grain_type"),
		FarmingMethod: c.QueryParam("farming_method"),
		Status:        model.ListingStatus(c.QueryParam("status")),
		FarmerID:      c.QueryParam("farmer_id"),
		Limit:         limit,
		Offset:        offset,
	}
	if v := c.QueryParam("min_price"); v != "" {
		if p, err := decimal.NewFromString(v); err == nil {
			f.MinPrice = &p
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if p, err := decimal.NewFromString(v); err == nil {
			f.MaxPrice = &p
		}
	}
	listings, total, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(listings)),
		Total:    total,
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// UploadImage accepts one multipart file and stores it alongside the listing.
func (h *ListingHandler) UploadImage(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable image file"))
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable image file"))
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := h.svc.AddImage(c.Request().Context(), c.Param("id"), uid, filepath.Base(fh.Filename), contentType, data)
	if err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}

type ListingResponse struct {
	ID            string   `json:"id"`
	FarmerID      string   `json:"farmerId"`
	Title         string   `json:"title"`
	GrainType     string   `json:"grainType"`
	FarmingMethod string   `json:"farmingMethod,omitempty"`
	Description   string   `json:"description,omitempty"`
	Price         string   `json:"price"`
	Quantity      int      `json:"quantity"`
	QuantityUnit  string   `json:"quantityUnit"`
	MinimumOrder  *int     `json:"minimumOrder,omitempty"`
	HarvestDate   *string  `json:"harvestDate,omitempty"`
	Location      string   `json:"location,omitempty"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	Country       string   `json:"country,omitempty"`
	Featured      bool     `json:"featured"`
	ViewCount     int64    `json:"viewCount"`
	Images        []string `json:"images"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func toListingResponse(l *model.Listing) ListingResponse {
	var harvest *string
	if l.HarvestDate != nil {
		v := l.HarvestDate.Format("2006-01-02")
		harvest = &v
	}
	images := []string{}
	if l.Images != "" {
		_ = json.Unmarshal([]byte(l.Images), &images)
	}
	return ListingResponse{
		ID:            l.ID,
		FarmerID:      l.FarmerID,
		Title:         l.Title,
		GrainType:     l.GrainType,
		FarmingMethod: l.FarmingMethod,
		Description:   l.Description,
		Price:         l.Price.StringFixed(2),
		Quantity:      l.Quantity,
		QuantityUnit:  l.QuantityUnit,
		MinimumOrder:  l.MinimumOrder,
		HarvestDate:   harvest,
		Location:      l.Location,
		City:          l.City,
		State:         l.State,
		Country:       l.Country,
		Featured:      l.Featured,
		ViewCount:     l.ViewCount,
		Images:        images,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.Format(time.RFC3339),
	}
}
