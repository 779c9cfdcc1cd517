package repositories

import (
	"context"
	"time"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type ResolutionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, resolution *Resolution) error
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Resolution, error)
	GetByRequestID(ctx context.Context, tx *gorm.DB, requestID int) (*Resolution, error)
	AppendNotes(ctx context.Context, tx *gorm.DB, id int, notes string) error
	AddImages(ctx context.Context, tx *gorm.DB, images []*ResolutionImage) error
	GetImages(ctx context.Context, tx *gorm.DB, resolutionID int) ([]*ResolutionImage, error)
	GetImage(ctx context.Context, tx *gorm.DB, resolutionID, imageID int) (*ResolutionImage, error)
	DeleteImage(ctx context.Context, tx *gorm.DB, imageID int) error
	ListPreventiveDue(ctx context.Context, tx *gorm.DB, limit int) ([]*Resolution, error)
	MarkPreventiveScheduled(ctx context.Context, tx *gorm.DB, id int, at time.Time) error
	ListImageURLs(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type resolutionRepository struct {
	log logger.Logger
}

func NewResolutionRepository() ResolutionRepository {
	return &resolutionRepository{
		log: logger.New("resolutionRepository"),
	}
}

func (r *resolutionRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	resolution *Resolution,
) error {
	log := r.log.Function("Create")

	if err := gorm.G[Resolution](tx).Create(ctx, resolution); err != nil {
		return log.Err(
			"failed to create resolution",
			err,
			"requestID", resolution.RequestID,
			"resolvedBy", resolution.ResolvedBy,
		)
	}

	return nil
}

func (r *resolutionRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id int,
) (*Resolution, error) {
	log := r.log.Function("GetByID")

	var resolution Resolution
	err := tx.WithContext(ctx).
		Preload("Resolver").
		Where("id = ?", id).
		First(&resolution).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get resolution", err, "resolutionID", id)
	}

	return &resolution, nil
}

func (r *resolutionRepository) GetByRequestID(
	ctx context.Context,
	tx *gorm.DB,
	requestID int,
) (*Resolution, error) {
	log := r.log.Function("GetByRequestID")

	var resolution Resolution
	err := tx.WithContext(ctx).
		Preload("Resolver").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at DESC, id DESC")
		}).
		Where("request_id = ?", requestID).
		First(&resolution).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get resolution", err, "requestID", requestID)
	}

	return &resolution, nil
}

// AppendNotes adds to the existing notes rather than replacing them;
// resolution history is never silently rewritten.
func (r *resolutionRepository) AppendNotes(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	notes string,
) error {
	log := r.log.Function("AppendNotes")

	result := tx.WithContext(ctx).Model(&Resolution{}).
		Where("id = ?", id).
		Update("resolution_notes", gorm.Expr("resolution_notes || ? || ?", "\n\n", notes))
	if result.Error != nil {
		return log.Err("failed to append resolution notes", result.Error, "resolutionID", id)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *resolutionRepository) AddImages(
	ctx context.Context,
	tx *gorm.DB,
	images []*ResolutionImage,
) error {
	log := r.log.Function("AddImages")

	for _, image := range images {
		if err := gorm.G[ResolutionImage](tx).Create(ctx, image); err != nil {
			return log.Err(
				"failed to create resolution image",
				err,
				"resolutionID", image.ResolutionID,
				"filename", image.Filename,
			)
		}
	}

	return nil
}

func (r *resolutionRepository) GetImages(
	ctx context.Context,
	tx *gorm.DB,
	resolutionID int,
) ([]*ResolutionImage, error) {
	log := r.log.Function("GetImages")

	// Stable ordering so repeated reads return identical results
	images, err := gorm.G[*ResolutionImage](tx).
		Where("resolution_id = ?", resolutionID).
		Order("uploaded_at DESC, id DESC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get resolution images", err, "resolutionID", resolutionID)
	}

	return images, nil
}

func (r *resolutionRepository) GetImage(
	ctx context.Context,
	tx *gorm.DB,
	resolutionID, imageID int,
) (*ResolutionImage, error) {
	log := r.log.Function("GetImage")

	var image ResolutionImage
	err := tx.WithContext(ctx).
		Where("id = ? AND resolution_id = ?", imageID, resolutionID).
		First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err(
			"failed to get resolution image",
			err,
			"resolutionID", resolutionID,
			"imageID", imageID,
		)
	}

	return &image, nil
}

func (r *resolutionRepository) DeleteImage(ctx context.Context, tx *gorm.DB, imageID int) error {
	log := r.log.Function("DeleteImage")

	rowsAffected, err := gorm.G[ResolutionImage](tx).Where("id = ?", imageID).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete resolution image", err, "imageID", imageID)
	}

	if rowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *resolutionRepository) ListPreventiveDue(
	ctx context.Context,
	tx *gorm.DB,
	limit int,
) ([]*Resolution, error) {
	log := r.log.Function("ListPreventiveDue")

	resolutions, err := gorm.G[*Resolution](tx).
		Preload("Request", nil).
		Where("schedule_preventive = ? AND preventive_scheduled_at IS NULL", true).
		Order("resolved_at ASC").
		Limit(limit).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list preventive-due resolutions", err)
	}

	return resolutions, nil
}

// ListImageURLs returns every image URL referenced by a resolution, used to
// tell live uploads apart from orphaned files on disk.
func (r *resolutionRepository) ListImageURLs(
	ctx context.Context,
	tx *gorm.DB,
) ([]string, error) {
	log := r.log.Function("ListImageURLs")

	var urls []string
	err := tx.WithContext(ctx).Model(&ResolutionImage{}).
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, log.Err("failed to list resolution image urls", err)
	}

	return urls, nil
}

func (r *resolutionRepository) MarkPreventiveScheduled(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	at time.Time,
) error {
	log := r.log.Function("MarkPreventiveScheduled")

	result := tx.WithContext(ctx).Model(&Resolution{}).
		Where("id = ?", id).
		Update("preventive_scheduled_at", at)
	if result.Error != nil {
		return log.Err("failed to mark preventive scheduled", result.Error, "resolutionID", id)
	}

	return nil
}
