package handlers

import (
	"servicelink/internal/app"
	analyticsController "servicelink/internal/controllers/analytics"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	Handler
	analyticsController analyticsController.AnalyticsControllerInterface
	authService         *services.AuthService
}

func NewAnalyticsHandler(app app.App, router fiber.Router) *AnalyticsHandler {
	log := logger.New("handlers").File("analytics_handler")
	return &AnalyticsHandler{
		analyticsController: app.Controllers.Analytics,
		authService:         app.Services.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AnalyticsHandler) Register() {
	analytics := h.router.Group("/analytics", h.middleware.RequireAuth(h.authService))
	analytics.Get("/dashboard", h.getDashboardStats)
}

func (h *AnalyticsHandler) getDashboardStats(c *fiber.Ctx) error {
	stats, err := h.analyticsController.GetDashboardStats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get dashboard stats",
		})
	}

	return c.JSON(fiber.Map{
		"data": stats,
	})
}
