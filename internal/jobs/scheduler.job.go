package jobs

import (
	"servicelink/config"
	"servicelink/internal/database"
	"servicelink/internal/repositories"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// Import schedule constants
const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	db database.DB,
	service services.Service,
	repos repositories.Repository,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	log.Info("Registering jobs")

	preventiveJob := NewPreventiveMaintenanceJob(
		service.Transaction,
		repos.Request,
		repos.Resolution,
		repos.History,
		Daily,
	)
	if err := schedulerService.AddJob(preventiveJob); err != nil {
		return log.Err("failed to register preventive maintenance job", err)
	}
	log.Info("Registered preventive maintenance job", "schedule", "daily")

	uploadCleanupJob := NewUploadCleanupJob(
		db,
		service.Upload,
		repos.Resolution,
		Daily,
	)
	if err := schedulerService.AddJob(uploadCleanupJob); err != nil {
		return log.Err("failed to register upload cleanup job", err)
	}
	log.Info("Registered upload cleanup job", "schedule", "daily")

	return nil
}
