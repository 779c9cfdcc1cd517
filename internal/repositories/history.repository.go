package repositories

import (
	"context"
	"encoding/json"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HistoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *RequestHistory) error
	Record(ctx context.Context, tx *gorm.DB, requestID int, actorID *uuid.UUID, action HistoryAction, detail map[string]any) error
	ListByRequest(ctx context.Context, tx *gorm.DB, requestID int) ([]*RequestHistory, error)
}

type historyRepository struct {
	log logger.Logger
}

func NewHistoryRepository() HistoryRepository {
	return &historyRepository{
		log: logger.New("historyRepository"),
	}
}

func (r *historyRepository) Create(ctx context.Context, tx *gorm.DB, entry *RequestHistory) error {
	log := r.log.Function("Create")

	if err := gorm.G[RequestHistory](tx).Create(ctx, entry); err != nil {
		return log.Err(
			"failed to create history entry",
			err,
			"requestID", entry.RequestID,
			"action", entry.Action,
		)
	}

	return nil
}

// Record is the convenience path used by the workflows; a history write
// failure inside a transaction aborts the whole mutation so the audit
// trail can never silently miss an entry.
func (r *historyRepository) Record(
	ctx context.Context,
	tx *gorm.DB,
	requestID int,
	actorID *uuid.UUID,
	action HistoryAction,
	detail map[string]any,
) error {
	log := r.log.Function("Record")

	entry := &RequestHistory{
		RequestID: requestID,
		ActorID:   actorID,
		Action:    action,
	}

	if detail != nil {
		detailJSON, err := json.Marshal(detail)
		if err != nil {
			return log.Err("failed to marshal history detail", err, "requestID", requestID)
		}
		entry.Detail = datatypes.JSON(detailJSON)
	}

	return r.Create(ctx, tx, entry)
}

func (r *historyRepository) ListByRequest(
	ctx context.Context,
	tx *gorm.DB,
	requestID int,
) ([]*RequestHistory, error) {
	log := r.log.Function("ListByRequest")

	entries, err := gorm.G[*RequestHistory](tx).
		Preload("Actor", nil).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list history entries", err, "requestID", requestID)
	}

	return entries, nil
}
