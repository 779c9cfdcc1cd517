package app

import (
	"context"

	"servicelink/config"
	"servicelink/internal/controllers"
	"servicelink/internal/database"
	"servicelink/internal/events"
	"servicelink/internal/handlers/middleware"
	"servicelink/internal/jobs"
	"servicelink/internal/repositories"
	"servicelink/internal/services"
	"servicelink/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Config      config.Config
	EventBus    *events.EventBus
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	service, err := services.New(db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	repos := repositories.New(db)

	websocket, err := websockets.New(db, eventBus, service.Auth, repos, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config, repos)
	controllers := controllers.New(service, repos, eventBus, config, db)

	if err := jobs.RegisterAllJobs(service.Scheduler, config, db, service, repos); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	if config.SchedulerEnabled {
		if err := service.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Config:      config,
		EventBus:    eventBus,
		Middleware:  middleware,
		Websocket:   websocket,
		Services:    service,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Auth,
		a.Services.Email,
		a.Services.Upload,
		a.Repos.User,
		a.Repos.Request,
		a.Repos.Resolution,
		a.Repos.Comment,
		a.Repos.History,
		a.Repos.Analytics,
		a.Controllers.Auth,
		a.Controllers.User,
		a.Controllers.Request,
		a.Controllers.Resolution,
		a.Controllers.Analytics,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
