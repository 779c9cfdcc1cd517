package jobs

import (
	"context"
	"time"

	"servicelink/internal/database"
	"servicelink/internal/repositories"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// orphanGracePeriod keeps freshly staged files safe from cleanup while a
// resolution transaction that references them may still be in flight.
const orphanGracePeriod = 24 * time.Hour

// UploadCleanupJob removes files from the upload directory that no resolution
// references. Orphans appear when resolution transactions roll back after
// staging, or when best-effort deletes leave a file behind.
type UploadCleanupJob struct {
	db             database.DB
	uploadService  *services.UploadService
	resolutionRepo repositories.ResolutionRepository
	log            logger.Logger
	schedule       services.Schedule
}

func NewUploadCleanupJob(
	db database.DB,
	uploadService *services.UploadService,
	resolutionRepo repositories.ResolutionRepository,
	schedule services.Schedule,
) *UploadCleanupJob {
	log := logger.New("uploadCleanupJob")
	log.Info("Creating new upload cleanup job", "schedule", schedule)

	return &UploadCleanupJob{
		db:             db,
		uploadService:  uploadService,
		resolutionRepo: resolutionRepo,
		log:            log,
		schedule:       schedule,
	}
}

func (j *UploadCleanupJob) Name() string {
	return "DailyUploadCleanup"
}

func (j *UploadCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute").TraceFromContext(ctx)

	log.Info("Starting orphaned upload cleanup")

	staged, err := j.uploadService.ListStaged()
	if err != nil {
		return log.Err("failed to list staged uploads", err)
	}

	if len(staged) == 0 {
		log.Info("No staged uploads found, nothing to clean")
		return nil
	}

	urls, err := j.resolutionRepo.ListImageURLs(ctx, j.db.SQLWithContext(ctx))
	if err != nil {
		return log.Err("failed to list referenced image urls", err)
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		referenced[url] = struct{}{}
	}

	cutoff := time.Now().Add(-orphanGracePeriod)
	removed := 0
	for _, file := range staged {
		if _, ok := referenced[file.ImageURL]; ok {
			continue
		}
		if file.ModifiedAt.After(cutoff) {
			continue
		}

		if err := j.uploadService.RemoveByURL(file.ImageURL); err != nil {
			log.Warn("failed to remove orphaned upload", "path", file.Path, "error", err)
			continue
		}
		removed++
	}

	log.Info(
		"Orphaned upload cleanup completed",
		"staged", len(staged),
		"removed", removed,
	)
	return nil
}

func (j *UploadCleanupJob) Schedule() services.Schedule {
	return j.schedule
}
