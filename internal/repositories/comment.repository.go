package repositories

import (
	"context"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, comment *RequestComment) error
	ListByRequest(ctx context.Context, tx *gorm.DB, requestID int) ([]*RequestComment, error)
}

type commentRepository struct {
	log logger.Logger
}

func NewCommentRepository() CommentRepository {
	return &commentRepository{
		log: logger.New("commentRepository"),
	}
}

func (r *commentRepository) Create(ctx context.Context, tx *gorm.DB, comment *RequestComment) error {
	log := r.log.Function("Create")

	if err := gorm.G[RequestComment](tx).Create(ctx, comment); err != nil {
		return log.Err(
			"failed to create comment",
			err,
			"requestID", comment.RequestID,
			"userID", comment.UserID,
		)
	}

	return nil
}

func (r *commentRepository) ListByRequest(
	ctx context.Context,
	tx *gorm.DB,
	requestID int,
) ([]*RequestComment, error) {
	log := r.log.Function("ListByRequest")

	comments, err := gorm.G[*RequestComment](tx).
		Preload("User", nil).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list comments", err, "requestID", requestID)
	}

	return comments, nil
}
