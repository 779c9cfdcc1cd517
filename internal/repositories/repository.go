package repositories

import (
	"servicelink/internal/database"
)

type Repository struct {
	User       UserRepository
	Request    RequestRepository
	Resolution ResolutionRepository
	Comment    CommentRepository
	History    HistoryRepository
	Analytics  AnalyticsRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:       NewUserRepository(db),
		Request:    NewRequestRepository(),
		Resolution: NewResolutionRepository(),
		Comment:    NewCommentRepository(),
		History:    NewHistoryRepository(),
		Analytics:  NewAnalyticsRepository(db.Cache.General),
	}
}
