package analyticsController

import (
	"context"

	"servicelink/config"
	"servicelink/internal/database"
	"servicelink/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

type AnalyticsController struct {
	analyticsRepo repositories.AnalyticsRepository
	db            database.DB
	Config        config.Config
	log           logger.Logger
}

type AnalyticsControllerInterface interface {
	GetDashboardStats(ctx context.Context) (*repositories.DashboardStats, error)
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) AnalyticsControllerInterface {
	return &AnalyticsController{
		analyticsRepo: repos.Analytics,
		db:            db,
		Config:        config,
		log:           logger.New("analyticsController"),
	}
}

func (c *AnalyticsController) GetDashboardStats(
	ctx context.Context,
) (*repositories.DashboardStats, error) {
	return c.analyticsRepo.GetDashboardStats(ctx, c.db.SQL)
}
