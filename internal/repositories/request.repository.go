package repositories

import (
	"context"
	"time"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultRequestPageSize = 10

// RequestFilter narrows List results; zero values mean "no filter"
type RequestFilter struct {
	Status   RequestStatus
	Category string
	Urgency  RequestUrgency
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type RequestRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter RequestFilter) ([]*Request, int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Request, error)
	Create(ctx context.Context, tx *gorm.DB, request *Request) error
	Update(ctx context.Context, tx *gorm.DB, id int, updates map[string]any) (*Request, error)
	Delete(ctx context.Context, tx *gorm.DB, id int) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id int, status RequestStatus, resolvedAt *time.Time) (*Request, error)
	AssignTechnician(ctx context.Context, tx *gorm.DB, id int, technicianID uuid.UUID) (*Request, error)
	BulkUpdate(ctx context.Context, tx *gorm.DB, ids []int, updates map[string]any) ([]*Request, int64, error)
}

type requestRepository struct {
	log logger.Logger
}

func NewRequestRepository() RequestRepository {
	return &requestRepository{
		log: logger.New("requestRepository"),
	}
}

func (r *requestRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter RequestFilter,
) ([]*Request, int64, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Request{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Urgency != "" {
		query = query.Where("urgency = ?", filter.Urgency)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count requests", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultRequestPageSize
	}

	var requests []*Request
	err := query.
		Preload("Submitter").
		Preload("Assignee").
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&requests).Error
	if err != nil {
		return nil, 0, log.Err("failed to list requests", err)
	}

	return requests, total, nil
}

func (r *requestRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Request, error) {
	log := r.log.Function("GetByID")

	var request Request
	err := tx.WithContext(ctx).
		Preload("Submitter").
		Preload("Assignee").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get request", err, "requestID", id)
	}

	return &request, nil
}

func (r *requestRepository) Create(ctx context.Context, tx *gorm.DB, request *Request) error {
	log := r.log.Function("Create")

	if err := gorm.G[Request](tx).Create(ctx, request); err != nil {
		return log.Err(
			"failed to create request",
			err,
			"title", request.Title,
			"submittedBy", request.SubmittedBy,
		)
	}

	return nil
}

func (r *requestRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	updates map[string]any,
) (*Request, error) {
	log := r.log.Function("Update")

	result := tx.WithContext(ctx).Model(&Request{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, log.Err("failed to update request", result.Error, "requestID", id)
	}

	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, tx, id)
}

func (r *requestRepository) Delete(ctx context.Context, tx *gorm.DB, id int) error {
	log := r.log.Function("Delete")

	rowsAffected, err := gorm.G[Request](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete request", err, "requestID", id)
	}

	if rowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *requestRepository) UpdateStatus(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	status RequestStatus,
	resolvedAt *time.Time,
) (*Request, error) {
	updates := map[string]any{"status": status}
	if status == StatusResolved {
		if resolvedAt == nil {
			now := time.Now()
			resolvedAt = &now
		}
		updates["resolved_at"] = resolvedAt
	} else {
		// resolved_at is only set while the request is resolved
		updates["resolved_at"] = nil
	}

	return r.Update(ctx, tx, id, updates)
}

func (r *requestRepository) AssignTechnician(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	technicianID uuid.UUID,
) (*Request, error) {
	// Assignment always moves the request to in-progress; the two effects
	// are coupled and callers cannot get one without the other.
	return r.Update(ctx, tx, id, map[string]any{
		"assigned_to": technicianID,
		"status":      StatusInProgress,
	})
}

func (r *requestRepository) BulkUpdate(
	ctx context.Context,
	tx *gorm.DB,
	ids []int,
	updates map[string]any,
) ([]*Request, int64, error) {
	log := r.log.Function("BulkUpdate")

	result := tx.WithContext(ctx).Model(&Request{}).Where("id IN ?", ids).Updates(updates)
	if result.Error != nil {
		return nil, 0, log.Err("failed to bulk update requests", result.Error, "ids", ids)
	}

	var requests []*Request
	err := tx.WithContext(ctx).
		Preload("Submitter").
		Preload("Assignee").
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, 0, log.Err("failed to reload bulk updated requests", err, "ids", ids)
	}

	return requests, result.RowsAffected, nil
}
