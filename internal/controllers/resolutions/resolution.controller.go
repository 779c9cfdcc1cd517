package resolutionController

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"time"

	"servicelink/config"
	"servicelink/internal/database"
	"servicelink/internal/events"
	. "servicelink/internal/models"
	"servicelink/internal/repositories"
	"servicelink/internal/services"
	"servicelink/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const MaxResolutionNotesLength = 5000

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("request already resolved")
)

// transactionExecutor is the slice of TransactionService the workflow needs
type transactionExecutor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

type ResolutionController struct {
	resolutionRepo     repositories.ResolutionRepository
	requestRepo        repositories.RequestRepository
	historyRepo        repositories.HistoryRepository
	userRepo           repositories.UserRepository
	analyticsRepo      repositories.AnalyticsRepository
	transactionService transactionExecutor
	uploadService      *services.UploadService
	emailService       *services.EmailService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type CreateResolutionRequest struct {
	ResolutionNotes    string           `json:"resolutionNotes"`
	SendNotification   bool             `json:"sendNotification,omitempty"`
	MarkRecurring      bool             `json:"markRecurring,omitempty"`
	SchedulePreventive bool             `json:"schedulePreventive,omitempty"`
	Cost               *decimal.Decimal `json:"cost,omitempty"`
}

type CreateResolutionResponse struct {
	Resolution     *Resolution `json:"resolution"`
	ImagesUploaded int         `json:"imagesUploaded"`
}

type UpdateResolutionRequest struct {
	ResolutionNotes string `json:"resolutionNotes"`
}

type ResolutionControllerInterface interface {
	CreateResolution(
		ctx context.Context,
		user *User,
		requestID int,
		request *CreateResolutionRequest,
		files []*multipart.FileHeader,
	) (*CreateResolutionResponse, error)
	GetResolution(ctx context.Context, requestID int) (*Resolution, error)
	UpdateResolution(
		ctx context.Context,
		user *User,
		requestID int,
		request *UpdateResolutionRequest,
		files []*multipart.FileHeader,
	) (*Resolution, error)
	GetResolutionImages(ctx context.Context, requestID int) ([]*ResolutionImage, error)
	DeleteResolutionImage(ctx context.Context, user *User, requestID, imageID int) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) ResolutionControllerInterface {
	return &ResolutionController{
		resolutionRepo:     repos.Resolution,
		requestRepo:        repos.Request,
		historyRepo:        repos.History,
		userRepo:           repos.User,
		analyticsRepo:      repos.Analytics,
		transactionService: services.Transaction,
		uploadService:      services.Upload,
		emailService:       services.Email,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("resolutionController"),
	}
}

// CreateResolution runs the resolution workflow: validate, stage the image
// files, then commit the resolution row, its image rows, and the request
// status flip as one transaction. A failed transaction removes every staged
// file. The submitter email goes out only after the commit.
func (c *ResolutionController) CreateResolution(
	ctx context.Context,
	user *User,
	requestID int,
	request *CreateResolutionRequest,
	files []*multipart.FileHeader,
) (*CreateResolutionResponse, error) {
	log := c.log.Function("CreateResolution").TraceFromContext(ctx)

	if requestID <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	request.ResolutionNotes = utils.SanitizeText(request.ResolutionNotes)
	if request.ResolutionNotes == "" {
		return nil, log.ErrorWithType(ErrValidation, "resolutionNotes is required")
	}

	if len(request.ResolutionNotes) > MaxResolutionNotesLength {
		return nil, log.ErrorWithType(
			ErrValidation,
			"resolutionNotes exceed maximum length",
			"length", len(request.ResolutionNotes),
			"max", MaxResolutionNotesLength,
		)
	}

	if request.Cost != nil && request.Cost.IsNegative() {
		return nil, log.ErrorWithType(ErrValidation, "cost cannot be negative")
	}

	if err := c.uploadService.ValidateAttachments(files); err != nil {
		return nil, log.ErrorWithType(ErrValidation, "invalid attachments", "error", err)
	}

	targetRequest, err := c.requestRepo.GetByID(ctx, c.db.SQL, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", requestID)
		}
		return nil, err
	}

	if _, err = c.resolutionRepo.GetByRequestID(ctx, c.db.SQL, requestID); err == nil {
		return nil, log.ErrorWithType(ErrConflict, "request already has a resolution", "requestID", requestID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	staged, err := c.uploadService.Stage(files)
	if err != nil {
		return nil, err
	}

	resolvedAt := time.Now()
	resolution := &Resolution{
		RequestID:          requestID,
		ResolvedBy:         user.ID,
		ResolutionNotes:    request.ResolutionNotes,
		ResolvedAt:         resolvedAt,
		MarkRecurring:      request.MarkRecurring,
		SchedulePreventive: request.SchedulePreventive,
		Cost:               request.Cost,
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.resolutionRepo.Create(ctx, tx, resolution); err != nil {
			return err
		}

		if len(staged) > 0 {
			images := make([]*ResolutionImage, 0, len(staged))
			for _, file := range staged {
				images = append(images, &ResolutionImage{
					ResolutionID: resolution.ID,
					ImageURL:     file.ImageURL,
					Filename:     filepath.Base(file.Path),
					Size:         file.Size,
					UploadedAt:   resolvedAt,
				})
			}

			if err := c.resolutionRepo.AddImages(ctx, tx, images); err != nil {
				return err
			}
		}

		if _, err := c.requestRepo.UpdateStatus(ctx, tx, requestID, StatusResolved, &resolvedAt); err != nil {
			return err
		}

		return c.historyRepo.Record(ctx, tx, requestID, &user.ID, HistoryResolved, map[string]any{
			"resolutionId": resolution.ID,
			"images":       len(staged),
		})
	})
	if err != nil {
		c.uploadService.Remove(staged)

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, log.ErrorWithType(ErrConflict, "request already has a resolution", "requestID", requestID)
		}
		return nil, err
	}

	log.Info(
		"Resolution created",
		"requestID", requestID,
		"resolutionID", resolution.ID,
		"images", len(staged),
	)

	if request.SendNotification {
		go c.notifySubmitter(targetRequest, resolution)
	}

	c.analyticsRepo.InvalidateDashboardStats(context.Background())
	if err := c.eventBus.PublishRequestEvent(events.REQUEST_RESOLVED, requestID, map[string]any{
		"resolutionId": resolution.ID,
	}); err != nil {
		log.Warn("failed to publish resolution event", "requestID", requestID, "error", err)
	}
	if err := c.eventBus.PublishStatsChanged(); err != nil {
		log.Warn("failed to publish stats event", "error", err)
	}

	return &CreateResolutionResponse{
		Resolution:     resolution,
		ImagesUploaded: len(staged),
	}, nil
}

func (c *ResolutionController) GetResolution(
	ctx context.Context,
	requestID int,
) (*Resolution, error) {
	log := c.log.Function("GetResolution").TraceFromContext(ctx)

	if requestID <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	resolution, err := c.resolutionRepo.GetByRequestID(ctx, c.db.SQL, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "resolution not found", "requestID", requestID)
		}
		return nil, err
	}

	return resolution, nil
}

// UpdateResolution appends notes and/or new images; earlier notes and
// existing images are part of the audit trail and are never removed here.
func (c *ResolutionController) UpdateResolution(
	ctx context.Context,
	user *User,
	requestID int,
	request *UpdateResolutionRequest,
	files []*multipart.FileHeader,
) (*Resolution, error) {
	log := c.log.Function("UpdateResolution").TraceFromContext(ctx)

	if requestID <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	request.ResolutionNotes = utils.SanitizeText(request.ResolutionNotes)
	if request.ResolutionNotes == "" && len(files) == 0 {
		return nil, log.ErrorWithType(ErrValidation, "resolutionNotes or images are required")
	}

	if len(request.ResolutionNotes) > MaxResolutionNotesLength {
		return nil, log.ErrorWithType(
			ErrValidation,
			"resolutionNotes exceed maximum length",
			"length", len(request.ResolutionNotes),
			"max", MaxResolutionNotesLength,
		)
	}

	if err := c.uploadService.ValidateAttachments(files); err != nil {
		return nil, log.ErrorWithType(ErrValidation, err.Error())
	}

	resolution, err := c.resolutionRepo.GetByRequestID(ctx, c.db.SQL, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "resolution not found", "requestID", requestID)
		}
		return nil, err
	}

	staged, err := c.uploadService.Stage(files)
	if err != nil {
		return nil, err
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if request.ResolutionNotes != "" {
			if err := c.resolutionRepo.AppendNotes(ctx, tx, resolution.ID, request.ResolutionNotes); err != nil {
				return err
			}
		}

		if len(staged) == 0 {
			return nil
		}

		now := time.Now()
		images := make([]*ResolutionImage, 0, len(staged))
		for _, file := range staged {
			images = append(images, &ResolutionImage{
				ResolutionID: resolution.ID,
				ImageURL:     file.ImageURL,
				Filename:     filepath.Base(file.Path),
				Size:         file.Size,
				UploadedAt:   now,
			})
		}

		return c.resolutionRepo.AddImages(ctx, tx, images)
	})
	if err != nil {
		c.uploadService.Remove(staged)
		return nil, err
	}

	log.Info(
		"Resolution updated",
		"requestID", requestID,
		"resolutionID", resolution.ID,
		"imagesAdded", len(staged),
		"userID", user.ID,
	)

	return c.resolutionRepo.GetByRequestID(ctx, c.db.SQL, requestID)
}

func (c *ResolutionController) GetResolutionImages(
	ctx context.Context,
	requestID int,
) ([]*ResolutionImage, error) {
	log := c.log.Function("GetResolutionImages").TraceFromContext(ctx)

	if requestID <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	resolution, err := c.resolutionRepo.GetByRequestID(ctx, c.db.SQL, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "resolution not found", "requestID", requestID)
		}
		return nil, err
	}

	return c.resolutionRepo.GetImages(ctx, c.db.SQL, resolution.ID)
}

// DeleteResolutionImage removes the database row first; the row is the
// authoritative record and a leftover file is only an orphan for the
// cleanup job, never the other way around.
func (c *ResolutionController) DeleteResolutionImage(
	ctx context.Context,
	user *User,
	requestID, imageID int,
) error {
	log := c.log.Function("DeleteResolutionImage").TraceFromContext(ctx)

	if requestID <= 0 || imageID <= 0 {
		return log.ErrorWithType(ErrValidation, "request id and image id are required")
	}

	resolution, err := c.resolutionRepo.GetByRequestID(ctx, c.db.SQL, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return log.ErrorWithType(ErrNotFound, "resolution not found", "requestID", requestID)
		}
		return err
	}

	image, err := c.resolutionRepo.GetImage(ctx, c.db.SQL, resolution.ID, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return log.ErrorWithType(ErrNotFound, "resolution image not found", "imageID", imageID)
		}
		return err
	}

	if err := c.resolutionRepo.DeleteImage(ctx, c.db.SQL, imageID); err != nil {
		return err
	}

	if err := c.uploadService.RemoveByURL(image.ImageURL); err != nil {
		log.Warn("failed to remove image file, leaving for cleanup job", "imageURL", image.ImageURL, "error", err)
	}

	log.Info("Resolution image deleted", "requestID", requestID, "imageID", imageID, "userID", user.ID)

	return nil
}

// notifySubmitter emails the request submitter after the commit. Failures
// are logged and never surfaced to the resolving technician.
func (c *ResolutionController) notifySubmitter(request *Request, resolution *Resolution) {
	log := c.log.Function("notifySubmitter")

	if !c.emailService.Enabled() {
		return
	}

	submitter := request.Submitter
	if submitter == nil {
		var err error
		submitter, err = c.userRepo.GetByID(context.Background(), c.db.SQL, request.SubmittedBy)
		if err != nil {
			log.Er("failed to load submitter for notification", err, "requestID", request.ID)
			return
		}
	}

	if submitter.Email == "" {
		return
	}

	err := c.emailService.SendResolutionNotice(
		submitter.Email,
		submitter.Name,
		request.Title,
		resolution.ResolutionNotes,
	)
	if err != nil {
		log.Er("failed to send resolution notice", err, "requestID", request.ID, "to", submitter.Email)
	}
}
