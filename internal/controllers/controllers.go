package controllers

import (
	"servicelink/config"
	"servicelink/internal/database"
	"servicelink/internal/events"
	"servicelink/internal/repositories"
	"servicelink/internal/services"

	analyticsController "servicelink/internal/controllers/analytics"
	authController "servicelink/internal/controllers/auth"
	requestController "servicelink/internal/controllers/requests"
	resolutionController "servicelink/internal/controllers/resolutions"
	userController "servicelink/internal/controllers/users"
)

type Controllers struct {
	Auth       authController.AuthControllerInterface
	User       userController.UserControllerInterface
	Request    requestController.RequestControllerInterface
	Resolution resolutionController.ResolutionControllerInterface
	Analytics  analyticsController.AnalyticsControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:       authController.New(services, repos, db),
		User:       userController.New(repos, services, config, db),
		Request:    requestController.New(repos, services, eventBus, config, db),
		Resolution: resolutionController.New(repos, services, eventBus, config, db),
		Analytics:  analyticsController.New(repos, config, db),
	}
}
