package services

import (
	"servicelink/config"
	"servicelink/internal/database"
)

type Service struct {
	Transaction *TransactionService
	Scheduler   *SchedulerService
	Auth        *AuthService
	Email       *EmailService
	Upload      *UploadService
}

func New(db database.DB, config config.Config) (Service, error) {
	transactionService := NewTransactionService(db)

	authService, err := NewAuthService(config)
	if err != nil {
		return Service{}, err
	}

	schedulerService := NewSchedulerService()
	emailService := NewEmailService(config)
	uploadService := NewUploadService(config)

	return Service{
		Transaction: transactionService,
		Scheduler:   schedulerService,
		Auth:        authService,
		Email:       emailService,
		Upload:      uploadService,
	}, nil
}
