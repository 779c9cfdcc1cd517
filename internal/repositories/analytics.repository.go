package repositories

import (
	"context"
	"time"

	"servicelink/internal/constants"
	"servicelink/internal/database"
	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// DashboardStats is the aggregate the admin dashboard polls
type DashboardStats struct {
	TotalRequests        int64   `json:"totalRequests"`
	PendingRequests      int64   `json:"pendingRequests"`
	InProgressRequests   int64   `json:"inProgressRequests"`
	ResolvedRequests     int64   `json:"resolvedRequests"`
	ResolvedToday        int64   `json:"resolvedToday"`
	AvgResolutionHours   float64 `json:"avgResolutionHours"`
	CriticalOpenRequests int64   `json:"criticalOpenRequests"`
}

type AnalyticsRepository interface {
	GetDashboardStats(ctx context.Context, tx *gorm.DB) (*DashboardStats, error)
	InvalidateDashboardStats(ctx context.Context)
}

type analyticsRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewAnalyticsRepository(cache database.CacheClient) AnalyticsRepository {
	return &analyticsRepository{
		cache: cache,
		log:   logger.New("analyticsRepository"),
	}
}

func (r *analyticsRepository) GetDashboardStats(
	ctx context.Context,
	tx *gorm.DB,
) (*DashboardStats, error) {
	log := r.log.Function("GetDashboardStats")

	var cached DashboardStats
	found, err := database.NewCacheBuilder(r.cache, constants.DashboardStatsCacheKey).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get dashboard stats from cache", "error", err)
	}

	if found {
		return &cached, nil
	}

	stats := &DashboardStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalRequests, tx.WithContext(ctx).Model(&Request{})},
		{&stats.PendingRequests, tx.WithContext(ctx).Model(&Request{}).Where("status = ?", StatusPending)},
		{&stats.InProgressRequests, tx.WithContext(ctx).Model(&Request{}).Where("status = ?", StatusInProgress)},
		{&stats.ResolvedRequests, tx.WithContext(ctx).Model(&Request{}).Where("status = ?", StatusResolved)},
		{&stats.ResolvedToday, tx.WithContext(ctx).Model(&Request{}).
			Where("status = ? AND resolved_at >= ?", StatusResolved, startOfToday())},
		{&stats.CriticalOpenRequests, tx.WithContext(ctx).Model(&Request{}).
			Where("urgency = ? AND status != ?", UrgencyCritical, StatusResolved)},
	}

	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return nil, log.Err("failed to count requests for dashboard stats", err)
		}
	}

	var avgHours *float64
	err = tx.WithContext(ctx).Model(&Request{}).
		Select("AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0)").
		Where("status = ? AND resolved_at IS NOT NULL", StatusResolved).
		Scan(&avgHours).Error
	if err != nil {
		return nil, log.Err("failed to compute average resolution time", err)
	}

	if avgHours != nil {
		stats.AvgResolutionHours = *avgHours
	}

	if err := database.NewCacheBuilder(r.cache, constants.DashboardStatsCacheKey).
		WithContext(ctx).
		WithStruct(stats).
		WithTTL(constants.DashboardStatsCacheExpiry).
		Set(); err != nil {
		log.Warn("failed to cache dashboard stats", "error", err)
	}

	return stats, nil
}

func (r *analyticsRepository) InvalidateDashboardStats(ctx context.Context) {
	if err := database.NewCacheBuilder(r.cache, constants.DashboardStatsCacheKey).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Warn("failed to invalidate dashboard stats cache", "error", err)
	}
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
