package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/brandreg/crm-api/internal/api/handler"
	"github.com/brandreg/crm-api/internal/api/middleware"
	"github.com/brandreg/crm-api/internal/core/domain"
)

// Handlers groups the constructed handlers the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Jobs          *handler.JobHandler
	Messages      *handler.MessageHandler
	Notifications *handler.NotificationHandler
	Users         *handler.UserHandler
	Health        *handler.HealthHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h Handlers, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crm"))

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Health.Readiness)

	// --- Auth routes ---
	// Register accepts an optional token: the very first admin is created
	// anonymously, every later account requires an admin's token.
	e.POST("/auth/register", h.Auth.Register, middleware.AuthOptional(jwtSecret))
	e.POST("/auth/login", h.Auth.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(jwtSecret))
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	jobs := v1.Group("/jobs")
	jobs.POST("", h.Jobs.Create)
	jobs.GET("", h.Jobs.List)
	jobs.GET("/:id", h.Jobs.Get)
	jobs.PATCH("/:id", h.Jobs.Update)
	jobs.DELETE("/:id", h.Jobs.Delete, adminOnly)
	jobs.POST("/:id/transition", h.Jobs.Transition)
	jobs.POST("/:id/documents", h.Jobs.UploadDocuments)
	jobs.POST("/:id/power-of-attorney", h.Jobs.GeneratePowerOfAttorney)
	jobs.POST("/:id/invoices", h.Jobs.AddInvoice, adminOnly)
	jobs.POST("/:id/invoices/:index/receipt", h.Jobs.AttachReceipt, middleware.RBAC(domain.RoleOperator, domain.RoleAdmin))
	jobs.POST("/:id/invoices/:index/paid", h.Jobs.MarkInvoicePaid, adminOnly)
	jobs.GET("/:id/messages", h.Messages.List)
	jobs.POST("/:id/messages", h.Messages.Post)

	notifications := v1.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.POST("/:id/read", h.Notifications.MarkRead)

	users := v1.Group("/users", adminOnly)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)

	return e
}
