package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/handler"
	appmw "github.com/ProgrammerOm1407/farm-marketplace/internal/middleware"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/service"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the route table needs. Publisher, Views and
// Uploader may be nil; the corresponding features degrade gracefully.
type Deps struct {
	DB        *gorm.DB
	Auth      *appmw.AuthMiddleware
	Publisher events.Publisher
	Views     repository.ViewCounter
	Uploader  storage.Uploader
	Log       *zap.Logger
}

type Server struct {
	e *echo.Echo
}

func New(d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin,
	}))

	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}

	profileRepo := repository.NewProfileRepository(d.DB)
	listingRepo := repository.NewListingRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	txnRepo := repository.NewTransactionRepository(d.DB)
	reviewRepo := repository.NewReviewRepository(d.DB)
	convRepo := repository.NewConversationRepository(d.DB)

	listingSvc := service.NewListingService(listingRepo, profileRepo, d.Views, d.Uploader, d.Log)
	orderSvc := service.NewOrderService(orderRepo, listingRepo, profileRepo, txnRepo, d.Publisher, d.Log)
	paymentSvc := service.NewPaymentService(orderRepo, txnRepo, d.Publisher, d.Log)
	reviewSvc := service.NewReviewService(reviewRepo, orderRepo, d.Publisher, d.Log)
	convSvc := service.NewConversationService(convRepo, listingRepo, d.Publisher, d.Log)
	profileSvc := service.NewProfileService(profileRepo)

	listingHandler := handler.NewListingHandler(listingSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, paymentSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	convHandler := handler.NewConversationHandler(convSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	requireAuth := passthrough
	if d.Auth != nil {
		requireAuth = d.Auth.RequireAuth
	}

	api := e.Group("/api")

	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/reviews", reviewHandler.List)

	api.POST("/listings/create", listingHandler.Create, requireAuth)
	api.PUT("/listings/:id", listingHandler.Update, requireAuth)
	api.POST("/listings/delete", listingHandler.Delete, requireAuth)
	api.POST("/listings/:id/images", listingHandler.UploadImage, requireAuth)

	api.POST("/orders/create", orderHandler.Create, requireAuth)
	api.POST("/orders/cancel", orderHandler.Cancel, requireAuth)
	api.POST("/orders/update-status", orderHandler.UpdateStatus, requireAuth)
	api.POST("/orders/record-payment", orderHandler.RecordPayment, requireAuth)
	api.POST("/orders/confirm-payment", orderHandler.ConfirmPayment, requireAuth)
	api.GET("/orders/:id", orderHandler.Get, requireAuth)
	api.GET("/me/orders", orderHandler.ListMine, requireAuth)
	api.GET("/me/sales", orderHandler.ListSales, requireAuth)

	api.POST("/reviews/create", reviewHandler.Create, requireAuth)

	api.POST("/messages/create", convHandler.Create, requireAuth)
	api.POST("/messages/reply", convHandler.Reply, requireAuth)
	api.GET("/conversations", convHandler.List, requireAuth)
	api.GET("/conversations/:id/messages", convHandler.ListMessages, requireAuth)
	api.GET("/me/unread-count", convHandler.UnreadCount, requireAuth)

	api.POST("/profile", profileHandler.Update, requireAuth)
	api.GET("/me/profile", profileHandler.GetMe, requireAuth)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Echo returns the underlying router, used by handler tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}

func allowOrigin(origin string) (bool, error) {
	low := strings.ToLower(origin)
	if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
		strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
		return true, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}
	if strings.HasSuffix(u.Hostname(), "vercel.app") {
		return true, nil
	}
	return false, nil
}
