package database

import (
	logger "github.com/Bparsons0904/goLogger"
)

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		// One resolution per request, enforced at the schema level
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_resolutions_request ON resolutions(request_id) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_requests_status_urgency ON requests(status, urgency)",
		"CREATE INDEX IF NOT EXISTS idx_request_history_created_at ON request_history(request_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_resolution_images_uploaded_at ON resolution_images(resolution_id, uploaded_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
