package constants

import "time"

const (
	DashboardStatsCacheKey    = "dashboard:stats" // Aggregate counters for the dashboard
	DashboardStatsCacheExpiry = 30 * time.Second  // Short TTL keeps stats near-live without hammering postgres
)
