package handler

import (
	"net/http"
	"time"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type profileForm struct {
	FullName    string `form:"full_name"`
	CompanyName string `form:"company_name"`
	Phone       string `form:"phone"`
	Bio         string `form:"bio"`
	Website     string `form:"website"`
	Address     string `form:"address"`
	City        string `form:"city"`
	State       string `form:"state"`
	ZipCode     string `form:"zip_code"`
	Country     string `form:"country"`
}

func (h *ProfileHandler) Update(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var form profileForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid form"))
	}
	if _, err := h.svc.Update(c.Request().Context(), uid, service.UpdateProfileInput{
		FullName:    form.FullName,
		CompanyName: form.CompanyName,
		Phone:       form.Phone,
		Bio:         form.Bio,
		Website:     form.Website,
		Address:     form.Address,
		City:        form.City,
		State:       form.State,
		ZipCode:     form.ZipCode,
		Country:     form.Country,
	}); err != nil {
		return writeServiceError(c, err, "profile not found")
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

type ProfileResponse struct {
	ID          string `json:"id"`
	UserType    string `json:"userType"`
	FullName    string `json:"fullName,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Website     string `json:"website,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (h *ProfileHandler) GetMe(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	p, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err, "profile not found")
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

func toProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		UserType:    string(p.UserType),
		FullName:    p.FullName,
		CompanyName: p.CompanyName,
		Phone:       p.Phone,
		Bio:         p.Bio,
		Website:     p.Website,
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
