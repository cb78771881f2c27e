package handler

import (
	"net/http"
	"time"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type startConversationForm struct {
	ListingID string `form:"listing_id" validate:"required"`
	FarmerID  string `form:"farmer_id" validate:"required"`
	Subject   string `form:"subject" validate:"required"`
	Message   string `form:"message" validate:"required"`
}

func (h *ConversationHandler) Create(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var form startConversationForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid form"))
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing required fields"))
	}
	cv, err := h.svc.Start(c.Request().Context(), uid, form.ListingID, form.FarmerID, form.Subject, form.Message)
	if err != nil {
		return writeServiceError(c, err, "listing not found")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/messages/"+cv.ID)
}

func (h *ConversationHandler) Reply(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	conversationID := c.QueryParam("conversation_id")
	if conversationID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "conversation id is required"))
	}
	message := c.FormValue("message")
	if message == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "message is required"))
	}
	if _, err := h.svc.Reply(c.Request().Context(), uid, conversationID, message); err != nil {
		return writeServiceError(c, err, "conversation not found")
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/messages/"+conversationID)
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.List(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversations"))
	}
	return c.JSON(http.StatusOK, list)
}

type MessageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"createdAt"`
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return writeServiceError(c, err, "conversation not found")
	}
	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) UnreadCount(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	n, err := h.svc.CountUnread(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to count unread messages"))
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread": n})
}

func toMessageResponse(m model.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}
