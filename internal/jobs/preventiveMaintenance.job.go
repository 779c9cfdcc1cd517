package jobs

import (
	"context"
	"fmt"
	"time"

	"servicelink/internal/repositories"
	"servicelink/internal/services"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// preventiveBatchSize caps how many flagged resolutions a single run picks up
const preventiveBatchSize = 50

// PreventiveMaintenanceJob turns resolutions flagged for preventive follow-up
// into new maintenance requests so the work is never lost to memory.
type PreventiveMaintenanceJob struct {
	transaction    *services.TransactionService
	requestRepo    repositories.RequestRepository
	resolutionRepo repositories.ResolutionRepository
	historyRepo    repositories.HistoryRepository
	log            logger.Logger
	schedule       services.Schedule
}

func NewPreventiveMaintenanceJob(
	transaction *services.TransactionService,
	requestRepo repositories.RequestRepository,
	resolutionRepo repositories.ResolutionRepository,
	historyRepo repositories.HistoryRepository,
	schedule services.Schedule,
) *PreventiveMaintenanceJob {
	log := logger.New("preventiveMaintenanceJob")
	log.Info("Creating new preventive maintenance job", "schedule", schedule)

	return &PreventiveMaintenanceJob{
		transaction:    transaction,
		requestRepo:    requestRepo,
		resolutionRepo: resolutionRepo,
		historyRepo:    historyRepo,
		log:            log,
		schedule:       schedule,
	}
}

func (j *PreventiveMaintenanceJob) Name() string {
	return "DailyPreventiveMaintenance"
}

func (j *PreventiveMaintenanceJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute").TraceFromContext(ctx)

	log.Info("Starting preventive maintenance scheduling")

	scheduled := 0
	err := j.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		due, err := j.resolutionRepo.ListPreventiveDue(ctx, tx, preventiveBatchSize)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, resolution := range due {
			if resolution.Request == nil {
				log.Warn(
					"preventive resolution has no request loaded, skipping",
					"resolutionID", resolution.ID,
				)
				continue
			}

			if err := j.scheduleFollowUp(ctx, tx, resolution, now); err != nil {
				return err
			}
			scheduled++
		}

		return nil
	})
	if err != nil {
		return log.Err("preventive maintenance scheduling failed", err)
	}

	log.Info("Preventive maintenance scheduling completed", "scheduled", scheduled)
	return nil
}

// scheduleFollowUp creates the follow-up request, records its origin in the
// history trail, and stamps the source resolution so it is not picked up twice.
func (j *PreventiveMaintenanceJob) scheduleFollowUp(
	ctx context.Context,
	tx *gorm.DB,
	resolution *Resolution,
	now time.Time,
) error {
	source := resolution.Request

	followUp := &Request{
		Title:       fmt.Sprintf("Preventive maintenance: %s", source.Title),
		Description: fmt.Sprintf("Scheduled follow-up for request #%d.", source.ID),
		Category:    source.Category,
		Location:    source.Location,
		Urgency:     UrgencyLow,
		Status:      StatusPending,
		SubmittedBy: resolution.ResolvedBy,
	}

	if err := j.requestRepo.Create(ctx, tx, followUp); err != nil {
		return err
	}

	err := j.historyRepo.Record(ctx, tx, followUp.ID, nil, HistoryCreated, map[string]any{
		"source":           "preventive_maintenance",
		"sourceRequestId":  source.ID,
		"sourceResolution": resolution.ID,
	})
	if err != nil {
		return err
	}

	return j.resolutionRepo.MarkPreventiveScheduled(ctx, tx, resolution.ID, now)
}

func (j *PreventiveMaintenanceJob) Schedule() services.Schedule {
	return j.schedule
}
