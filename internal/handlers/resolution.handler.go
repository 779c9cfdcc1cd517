package handlers

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"servicelink/internal/app"
	resolutionController "servicelink/internal/controllers/resolutions"
	"servicelink/internal/handlers/middleware"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ResolutionHandler struct {
	Handler
	resolutionController resolutionController.ResolutionControllerInterface
	authService          *services.AuthService
}

func NewResolutionHandler(app app.App, router fiber.Router) *ResolutionHandler {
	log := logger.New("handlers").File("resolution_handler")
	return &ResolutionHandler{
		resolutionController: app.Controllers.Resolution,
		authService:          app.Services.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ResolutionHandler) Register() {
	resolution := h.router.Group(
		"/requests/:id/resolution",
		h.middleware.RequireAuth(h.authService),
	)

	resolution.Post("", h.middleware.RequireTechnician(), h.createResolution)
	resolution.Get("", h.getResolution)
	resolution.Patch("", h.middleware.RequireTechnician(), h.updateResolution)
	resolution.Get("/images", h.getResolutionImages)
	resolution.Delete("/images/:imageId", h.middleware.RequireTechnician(), h.deleteResolutionImage)
}

// parseResolutionForm reads the resolution fields and image files from a
// multipart form, falling back to a JSON body when no files are attached.
func parseResolutionForm(
	c *fiber.Ctx,
) (*resolutionController.CreateResolutionRequest, []*multipart.FileHeader, error) {
	contentType := c.Get(fiber.HeaderContentType)

	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		var req resolutionController.CreateResolutionRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	req := &resolutionController.CreateResolutionRequest{
		ResolutionNotes: c.FormValue("resolutionNotes"),
	}

	if value := c.FormValue("sendNotification"); value != "" {
		req.SendNotification, _ = strconv.ParseBool(value)
	}

	if value := c.FormValue("markRecurring"); value != "" {
		req.MarkRecurring, _ = strconv.ParseBool(value)
	}

	if value := c.FormValue("schedulePreventive"); value != "" {
		req.SchedulePreventive, _ = strconv.ParseBool(value)
	}

	if value := c.FormValue("cost"); value != "" {
		cost, err := decimal.NewFromString(value)
		if err != nil {
			return nil, nil, errors.New("invalid cost")
		}
		req.Cost = &cost
	}

	return req, form.File["images"], nil
}

func (h *ResolutionHandler) createResolution(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requestID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	req, files, err := parseResolutionForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	response, err := h.resolutionController.CreateResolution(
		c.UserContext(),
		user,
		requestID,
		req,
		files,
	)
	if err != nil {
		return h.mapResolutionError(c, err, "Failed to create resolution")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":    response,
		"message": "Request resolved",
	})
}

func (h *ResolutionHandler) getResolution(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	resolution, err := h.resolutionController.GetResolution(c.UserContext(), requestID)
	if err != nil {
		return h.mapResolutionError(c, err, "Failed to get resolution")
	}

	return c.JSON(fiber.Map{
		"data": resolution,
	})
}

func (h *ResolutionHandler) updateResolution(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requestID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	parsed, files, err := parseResolutionForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	req := resolutionController.UpdateResolutionRequest{
		ResolutionNotes: parsed.ResolutionNotes,
	}

	resolution, err := h.resolutionController.UpdateResolution(c.UserContext(), user, requestID, &req, files)
	if err != nil {
		return h.mapResolutionError(c, err, "Failed to update resolution")
	}

	return c.JSON(fiber.Map{
		"data":    resolution,
		"message": "Resolution updated",
	})
}

func (h *ResolutionHandler) getResolutionImages(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	images, err := h.resolutionController.GetResolutionImages(c.UserContext(), requestID)
	if err != nil {
		return h.mapResolutionError(c, err, "Failed to get resolution images")
	}

	return c.JSON(fiber.Map{
		"data": images,
	})
}

func (h *ResolutionHandler) deleteResolutionImage(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	requestID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	imageID, err := c.ParamsInt("imageId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image ID",
		})
	}

	err = h.resolutionController.DeleteResolutionImage(c.UserContext(), user, requestID, imageID)
	if err != nil {
		return h.mapResolutionError(c, err, "Failed to delete resolution image")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ResolutionHandler) mapResolutionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, resolutionController.ErrValidation),
		errors.Is(err, services.ErrTooManyFiles),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrNotAnImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, resolutionController.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, resolutionController.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Request already has a resolution",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
