package handlers

import (
	"errors"
	"time"

	"servicelink/internal/app"
	requestController "servicelink/internal/controllers/requests"
	"servicelink/internal/handlers/middleware"
	"servicelink/internal/models"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type RequestHandler struct {
	Handler
	requestController requestController.RequestControllerInterface
	authService       *services.AuthService
}

func NewRequestHandler(app app.App, router fiber.Router) *RequestHandler {
	log := logger.New("handlers").File("request_handler")
	return &RequestHandler{
		requestController: app.Controllers.Request,
		authService:       app.Services.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RequestHandler) Register() {
	requests := h.router.Group("/requests", h.middleware.RequireAuth(h.authService))

	// Registered before the :id routes so "bulk-update" never parses as an id
	requests.Patch("/bulk-update", h.middleware.RequireAdmin(), h.bulkUpdate)

	requests.Get("", h.listRequests)
	requests.Post("", h.createRequest)
	requests.Get("/:id", h.getRequest)
	requests.Patch("/:id", h.middleware.RequireAdmin(), h.updateRequest)
	requests.Delete("/:id", h.middleware.RequireAdmin(), h.deleteRequest)
	requests.Patch("/:id/status", h.updateStatus)
	requests.Patch("/:id/assign", h.middleware.RequireAdmin(), h.assignTechnician)
	requests.Get("/:id/comments", h.listComments)
	requests.Post("/:id/comments", h.addComment)
	requests.Get("/:id/history", h.listHistory)
}

func parseListFilters(c *fiber.Ctx) (*requestController.ListRequestsRequest, error) {
	req := &requestController.ListRequestsRequest{
		Status:   models.RequestStatus(c.Query("status")),
		Category: c.Query("category"),
		Urgency:  models.RequestUrgency(c.Query("urgency")),
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}

	if from := c.Query("dateFrom"); from != "" {
		parsed, err := parseQueryDate(from)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &parsed
	}

	if to := c.Query("dateTo"); to != "" {
		parsed, err := parseQueryDate(to)
		if err != nil {
			return nil, err
		}
		req.DateTo = &parsed
	}

	return req, nil
}

// parseQueryDate accepts RFC3339 timestamps or bare dates
func parseQueryDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected RFC3339 or YYYY-MM-DD")
	}

	return parsed, nil
}

func (h *RequestHandler) listRequests(c *fiber.Ctx) error {
	req, err := parseListFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	response, err := h.requestController.ListRequests(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, requestController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list requests",
		})
	}

	return c.JSON(fiber.Map{
		"data": response,
	})
}

func (h *RequestHandler) getRequest(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	request, err := h.requestController.GetRequest(c.UserContext(), id)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to get request")
	}

	return c.JSON(fiber.Map{
		"data": request,
	})
}

func (h *RequestHandler) createRequest(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req requestController.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.requestController.CreateRequest(c.UserContext(), user, &req)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to create request")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":    request,
		"message": "Request created",
	})
}

func (h *RequestHandler) updateRequest(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req requestController.UpdateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.requestController.UpdateRequest(c.UserContext(), user, id, &req)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to update request")
	}

	return c.JSON(fiber.Map{
		"data":    request,
		"message": "Request updated",
	})
}

func (h *RequestHandler) updateStatus(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req requestController.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.requestController.UpdateStatus(c.UserContext(), user, id, &req)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to update status")
	}

	return c.JSON(fiber.Map{
		"data":    request,
		"message": "Status updated",
	})
}

func (h *RequestHandler) assignTechnician(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req requestController.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.requestController.AssignTechnician(c.UserContext(), user, id, &req)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to assign technician")
	}

	return c.JSON(fiber.Map{
		"data":    request,
		"message": "Technician assigned",
	})
}

func (h *RequestHandler) deleteRequest(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	if err := h.requestController.DeleteRequest(c.UserContext(), user, id); err != nil {
		return h.mapRequestError(c, err, "Failed to delete request")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *RequestHandler) bulkUpdate(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req requestController.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.requestController.BulkUpdate(c.UserContext(), user, &req)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to bulk update requests")
	}

	return c.JSON(fiber.Map{
		"data":    response,
		"message": "Requests updated",
	})
}

func (h *RequestHandler) addComment(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req requestController.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	comment, err := h.requestController.AddComment(c.UserContext(), user, id, &req)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to add comment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":    comment,
		"message": "Comment added",
	})
}

func (h *RequestHandler) listComments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	comments, err := h.requestController.ListComments(c.UserContext(), id)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to list comments")
	}

	return c.JSON(fiber.Map{
		"data": comments,
	})
}

func (h *RequestHandler) listHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	history, err := h.requestController.ListHistory(c.UserContext(), id)
	if err != nil {
		return h.mapRequestError(c, err, "Failed to list history")
	}

	return c.JSON(fiber.Map{
		"data": history,
	})
}

func (h *RequestHandler) mapRequestError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, requestController.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, requestController.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	case errors.Is(err, requestController.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not allowed to modify this request",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
