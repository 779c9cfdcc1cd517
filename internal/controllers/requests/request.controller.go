package requestController

import (
	"context"
	"errors"
	"time"

	"servicelink/config"
	"servicelink/internal/database"
	"servicelink/internal/events"
	. "servicelink/internal/models"
	"servicelink/internal/repositories"
	"servicelink/internal/services"
	"servicelink/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxTitleLength   = 200
	MaxCommentLength = 2000
	MaxBulkIDs       = 100
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type RequestController struct {
	requestRepo        repositories.RequestRepository
	commentRepo        repositories.CommentRepository
	historyRepo        repositories.HistoryRepository
	userRepo           repositories.UserRepository
	analyticsRepo      repositories.AnalyticsRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type CreateRequestRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category"`
	Location    string         `json:"location,omitempty"`
	Urgency     RequestUrgency `json:"urgency,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
}

// UpdateRequestRequest carries the only fields a caller may change. Column
// names are never taken from the request body.
type UpdateRequestRequest struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Location    *string         `json:"location,omitempty"`
	Urgency     *RequestUrgency `json:"urgency,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
}

type UpdateStatusRequest struct {
	Status RequestStatus `json:"status"`
}

type AssignRequest struct {
	TechnicianID uuid.UUID `json:"technicianId"`
}

type BulkUpdateRequest struct {
	IDs     []int                `json:"ids"`
	Updates BulkUpdateFieldsBody `json:"updates"`
}

type BulkUpdateFieldsBody struct {
	Status     *RequestStatus  `json:"status,omitempty"`
	Urgency    *RequestUrgency `json:"urgency,omitempty"`
	AssignedTo *uuid.UUID      `json:"assignedTo,omitempty"`
	Category   *string         `json:"category,omitempty"`
}

type BulkUpdateResponse struct {
	Requests []*Request `json:"requests"`
	Updated  int64      `json:"updated"`
}

type ListRequestsRequest struct {
	Status   RequestStatus
	Category string
	Urgency  RequestUrgency
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type ListRequestsResponse struct {
	Requests []*Request `json:"requests"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type AddCommentRequest struct {
	Comment string `json:"comment"`
}

type RequestControllerInterface interface {
	ListRequests(ctx context.Context, request *ListRequestsRequest) (*ListRequestsResponse, error)
	GetRequest(ctx context.Context, id int) (*Request, error)
	CreateRequest(ctx context.Context, user *User, request *CreateRequestRequest) (*Request, error)
	UpdateRequest(ctx context.Context, user *User, id int, request *UpdateRequestRequest) (*Request, error)
	UpdateStatus(ctx context.Context, user *User, id int, request *UpdateStatusRequest) (*Request, error)
	AssignTechnician(ctx context.Context, user *User, id int, request *AssignRequest) (*Request, error)
	DeleteRequest(ctx context.Context, user *User, id int) error
	BulkUpdate(ctx context.Context, user *User, request *BulkUpdateRequest) (*BulkUpdateResponse, error)
	AddComment(ctx context.Context, user *User, id int, request *AddCommentRequest) (*RequestComment, error)
	ListComments(ctx context.Context, id int) ([]*RequestComment, error)
	ListHistory(ctx context.Context, id int) ([]*RequestHistory, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) RequestControllerInterface {
	return &RequestController{
		requestRepo:        repos.Request,
		commentRepo:        repos.Comment,
		historyRepo:        repos.History,
		userRepo:           repos.User,
		analyticsRepo:      repos.Analytics,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("requestController"),
	}
}

func (c *RequestController) ListRequests(
	ctx context.Context,
	request *ListRequestsRequest,
) (*ListRequestsResponse, error) {
	log := c.log.Function("ListRequests").TraceFromContext(ctx)

	if request.Status != "" && !ValidStatus(request.Status) {
		return nil, log.ErrorWithType(ErrValidation, "invalid status filter", "status", request.Status)
	}

	if request.Urgency != "" && !ValidUrgency(request.Urgency) {
		return nil, log.ErrorWithType(ErrValidation, "invalid urgency filter", "urgency", request.Urgency)
	}

	if request.DateFrom != nil && request.DateTo != nil && request.DateTo.Before(*request.DateFrom) {
		return nil, log.ErrorWithType(ErrValidation, "dateTo is before dateFrom")
	}

	filter := repositories.RequestFilter{
		Status:   request.Status,
		Category: request.Category,
		Urgency:  request.Urgency,
		DateFrom: request.DateFrom,
		DateTo:   request.DateTo,
		Limit:    request.Limit,
		Offset:   request.Offset,
	}

	requests, total, err := c.requestRepo.List(ctx, c.db.SQL, filter)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = repositories.DefaultRequestPageSize
	}

	return &ListRequestsResponse{
		Requests: requests,
		Total:    total,
		Limit:    limit,
		Offset:   filter.Offset,
	}, nil
}

func (c *RequestController) GetRequest(ctx context.Context, id int) (*Request, error) {
	log := c.log.Function("GetRequest").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	request, err := c.requestRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return nil, err
	}

	return request, nil
}

func (c *RequestController) CreateRequest(
	ctx context.Context,
	user *User,
	request *CreateRequestRequest,
) (*Request, error) {
	log := c.log.Function("CreateRequest").TraceFromContext(ctx)

	request.Title = utils.SanitizeText(request.Title)
	request.Description = utils.SanitizeText(request.Description)
	request.Location = utils.SanitizeText(request.Location)

	if request.Title == "" {
		return nil, log.ErrorWithType(ErrValidation, "title is required")
	}

	if len(request.Title) > MaxTitleLength {
		return nil, log.ErrorWithType(
			ErrValidation,
			"title exceeds maximum length",
			"length", len(request.Title),
			"max", MaxTitleLength,
		)
	}

	if request.Category == "" {
		return nil, log.ErrorWithType(ErrValidation, "category is required")
	}

	if request.Urgency != "" && !ValidUrgency(request.Urgency) {
		return nil, log.ErrorWithType(ErrValidation, "invalid urgency", "urgency", request.Urgency)
	}

	newRequest := &Request{
		Title:       request.Title,
		Description: request.Description,
		Category:    request.Category,
		Location:    request.Location,
		Urgency:     request.Urgency,
		Status:      StatusPending,
		SubmittedBy: user.ID,
		ImageURL:    request.ImageURL,
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.requestRepo.Create(ctx, tx, newRequest); err != nil {
			return err
		}

		return c.historyRepo.Record(ctx, tx, newRequest.ID, &user.ID, HistoryCreated, map[string]any{
			"title":    newRequest.Title,
			"category": newRequest.Category,
			"urgency":  newRequest.Urgency,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info("Request created", "requestID", newRequest.ID, "submittedBy", user.ID)

	c.afterRequestChange(events.REQUEST_CREATED, newRequest.ID, map[string]any{
		"status": newRequest.Status,
	})

	return newRequest, nil
}

func (c *RequestController) UpdateRequest(
	ctx context.Context,
	user *User,
	id int,
	request *UpdateRequestRequest,
) (*Request, error) {
	log := c.log.Function("UpdateRequest").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	_, err := c.requestRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, log.ErrorWithType(ErrForbidden, "only admins may update requests", "requestID", id)
	}

	updates := make(map[string]any)

	if request.Title != nil {
		*request.Title = utils.SanitizeText(*request.Title)
		if *request.Title == "" {
			return nil, log.ErrorWithType(ErrValidation, "title cannot be empty")
		}
		if len(*request.Title) > MaxTitleLength {
			return nil, log.ErrorWithType(
				ErrValidation,
				"title exceeds maximum length",
				"length", len(*request.Title),
				"max", MaxTitleLength,
			)
		}
		updates["title"] = *request.Title
	}

	if request.Description != nil {
		updates["description"] = utils.SanitizeText(*request.Description)
	}

	if request.Category != nil {
		if *request.Category == "" {
			return nil, log.ErrorWithType(ErrValidation, "category cannot be empty")
		}
		updates["category"] = *request.Category
	}

	if request.Location != nil {
		updates["location"] = utils.SanitizeText(*request.Location)
	}

	if request.Urgency != nil {
		if !ValidUrgency(*request.Urgency) {
			return nil, log.ErrorWithType(ErrValidation, "invalid urgency", "urgency", *request.Urgency)
		}
		updates["urgency"] = *request.Urgency
	}

	if request.ImageURL != nil {
		updates["image_url"] = *request.ImageURL
	}

	if len(updates) == 0 {
		return nil, log.ErrorWithType(ErrValidation, "no fields to update")
	}

	var updated *Request
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		updated, err = c.requestRepo.Update(ctx, tx, id, updates)
		if err != nil {
			return err
		}

		fields := make([]string, 0, len(updates))
		for field := range updates {
			fields = append(fields, field)
		}

		return c.historyRepo.Record(ctx, tx, id, &user.ID, HistoryUpdated, map[string]any{
			"fields": fields,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return nil, err
	}

	log.Info("Request updated", "requestID", id, "fields", len(updates))

	c.afterRequestChange(events.REQUEST_UPDATED, id, map[string]any{
		"status": updated.Status,
	})

	return updated, nil
}

func (c *RequestController) UpdateStatus(
	ctx context.Context,
	user *User,
	id int,
	request *UpdateStatusRequest,
) (*Request, error) {
	log := c.log.Function("UpdateStatus").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	if !ValidStatus(request.Status) {
		return nil, log.ErrorWithType(ErrValidation, "invalid status", "status", request.Status)
	}

	existing, err := c.requestRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return nil, err
	}

	if !existing.CanTransitionTo(request.Status, user.IsAdmin()) {
		return nil, log.ErrorWithType(
			ErrValidation,
			"status cannot move backwards",
			"from", existing.Status,
			"to", request.Status,
		)
	}

	var resolvedAt *time.Time
	if request.Status == StatusResolved {
		now := time.Now()
		resolvedAt = &now
	}

	var updated *Request
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		updated, err = c.requestRepo.UpdateStatus(ctx, tx, id, request.Status, resolvedAt)
		if err != nil {
			return err
		}

		return c.historyRepo.Record(ctx, tx, id, &user.ID, HistoryStatusSet, map[string]any{
			"from": existing.Status,
			"to":   request.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info("Request status updated", "requestID", id, "from", existing.Status, "to", request.Status)

	c.afterRequestChange(events.REQUEST_UPDATED, id, map[string]any{
		"status": updated.Status,
	})

	return updated, nil
}

func (c *RequestController) AssignTechnician(
	ctx context.Context,
	user *User,
	id int,
	request *AssignRequest,
) (*Request, error) {
	log := c.log.Function("AssignTechnician").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	if request.TechnicianID == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "technicianId is required")
	}

	technician, err := c.userRepo.GetByID(ctx, c.db.SQL, request.TechnicianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "technician not found", "technicianID", request.TechnicianID)
		}
		return nil, err
	}

	if !technician.IsTechnician() && !technician.IsAdmin() {
		return nil, log.ErrorWithType(
			ErrValidation,
			"assignee is not a technician",
			"technicianID", request.TechnicianID,
			"role", technician.Role,
		)
	}

	var updated *Request
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		updated, err = c.requestRepo.AssignTechnician(ctx, tx, id, request.TechnicianID)
		if err != nil {
			return err
		}

		return c.historyRepo.Record(ctx, tx, id, &user.ID, HistoryAssigned, map[string]any{
			"technicianId":   request.TechnicianID,
			"technicianName": technician.Name,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return nil, err
	}

	log.Info("Technician assigned", "requestID", id, "technicianID", request.TechnicianID)

	c.afterRequestChange(events.REQUEST_ASSIGNED, id, map[string]any{
		"technicianId": request.TechnicianID,
		"status":       updated.Status,
	})

	return updated, nil
}

func (c *RequestController) DeleteRequest(ctx context.Context, user *User, id int) error {
	log := c.log.Function("DeleteRequest").TraceFromContext(ctx)

	if id <= 0 {
		return log.ErrorWithType(ErrValidation, "request id is required")
	}

	if err := c.requestRepo.Delete(ctx, c.db.SQL, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return err
	}

	log.Info("Request deleted", "requestID", id, "deletedBy", user.ID)

	c.afterRequestChange(events.REQUEST_UPDATED, id, map[string]any{
		"deleted": true,
	})

	return nil
}

func (c *RequestController) BulkUpdate(
	ctx context.Context,
	user *User,
	request *BulkUpdateRequest,
) (*BulkUpdateResponse, error) {
	log := c.log.Function("BulkUpdate").TraceFromContext(ctx)

	if len(request.IDs) == 0 {
		return nil, log.ErrorWithType(ErrValidation, "ids are required")
	}

	if len(request.IDs) > MaxBulkIDs {
		return nil, log.ErrorWithType(
			ErrValidation,
			"too many ids",
			"count", len(request.IDs),
			"max", MaxBulkIDs,
		)
	}

	for _, id := range request.IDs {
		if id <= 0 {
			return nil, log.ErrorWithType(ErrValidation, "invalid request id", "requestID", id)
		}
	}

	updates := make(map[string]any)

	if request.Updates.Status != nil {
		if !ValidStatus(*request.Updates.Status) {
			return nil, log.ErrorWithType(ErrValidation, "invalid status", "status", *request.Updates.Status)
		}
		updates["status"] = *request.Updates.Status
		if *request.Updates.Status == StatusResolved {
			updates["resolved_at"] = time.Now()
		}
	}

	if request.Updates.Urgency != nil {
		if !ValidUrgency(*request.Updates.Urgency) {
			return nil, log.ErrorWithType(ErrValidation, "invalid urgency", "urgency", *request.Updates.Urgency)
		}
		updates["urgency"] = *request.Updates.Urgency
	}

	if request.Updates.AssignedTo != nil {
		updates["assigned_to"] = *request.Updates.AssignedTo
	}

	if request.Updates.Category != nil {
		if *request.Updates.Category == "" {
			return nil, log.ErrorWithType(ErrValidation, "category cannot be empty")
		}
		updates["category"] = *request.Updates.Category
	}

	if len(updates) == 0 {
		return nil, log.ErrorWithType(ErrValidation, "no fields to update")
	}

	var updated []*Request
	var count int64
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		updated, count, err = c.requestRepo.BulkUpdate(ctx, tx, request.IDs, updates)
		if err != nil {
			return err
		}

		fields := make([]string, 0, len(updates))
		for field := range updates {
			fields = append(fields, field)
		}

		for _, row := range updated {
			err = c.historyRepo.Record(ctx, tx, row.ID, &user.ID, HistoryBulkUpdate, map[string]any{
				"fields": fields,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Bulk update completed", "requested", len(request.IDs), "updated", count)

	c.afterRequestChange(events.REQUEST_UPDATED, 0, map[string]any{
		"bulk":    true,
		"updated": count,
	})

	return &BulkUpdateResponse{
		Requests: updated,
		Updated:  count,
	}, nil
}

func (c *RequestController) AddComment(
	ctx context.Context,
	user *User,
	id int,
	request *AddCommentRequest,
) (*RequestComment, error) {
	log := c.log.Function("AddComment").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	request.Comment = utils.SanitizeText(request.Comment)
	if request.Comment == "" {
		return nil, log.ErrorWithType(ErrValidation, "comment is required")
	}

	if len(request.Comment) > MaxCommentLength {
		return nil, log.ErrorWithType(
			ErrValidation,
			"comment exceeds maximum length",
			"length", len(request.Comment),
			"max", MaxCommentLength,
		)
	}

	if _, err := c.requestRepo.GetByID(ctx, c.db.SQL, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "request not found", "requestID", id)
		}
		return nil, err
	}

	comment := &RequestComment{
		RequestID: id,
		UserID:    user.ID,
		Comment:   request.Comment,
	}

	if err := c.commentRepo.Create(ctx, c.db.SQL, comment); err != nil {
		return nil, err
	}

	log.Info("Comment added", "requestID", id, "userID", user.ID)

	if err := c.eventBus.PublishRequestEvent(events.COMMENT_ADDED, id, nil); err != nil {
		log.Warn("failed to publish comment event", "requestID", id, "error", err)
	}

	return comment, nil
}

func (c *RequestController) ListComments(ctx context.Context, id int) ([]*RequestComment, error) {
	log := c.log.Function("ListComments").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	return c.commentRepo.ListByRequest(ctx, c.db.SQL, id)
}

func (c *RequestController) ListHistory(ctx context.Context, id int) ([]*RequestHistory, error) {
	log := c.log.Function("ListHistory").TraceFromContext(ctx)

	if id <= 0 {
		return nil, log.ErrorWithType(ErrValidation, "request id is required")
	}

	return c.historyRepo.ListByRequest(ctx, c.db.SQL, id)
}

// afterRequestChange runs the post-commit side effects. Both are
// best-effort; a failed push or cache drop never fails the API call.
func (c *RequestController) afterRequestChange(
	eventType events.MessageType,
	requestID int,
	data map[string]any,
) {
	log := c.log.Function("afterRequestChange")

	c.analyticsRepo.InvalidateDashboardStats(context.Background())

	if err := c.eventBus.PublishRequestEvent(eventType, requestID, data); err != nil {
		log.Warn("failed to publish request event", "eventType", eventType, "requestID", requestID, "error", err)
	}

	if err := c.eventBus.PublishStatsChanged(); err != nil {
		log.Warn("failed to publish stats event", "error", err)
	}
}
