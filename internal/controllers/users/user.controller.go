package userController

import (
	"context"
	"errors"
	"strings"

	"servicelink/config"
	"servicelink/internal/database"
	. "servicelink/internal/models"
	"servicelink/internal/repositories"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("email already registered")
)

type UserController struct {
	userRepo    repositories.UserRepository
	authService *services.AuthService
	db          database.DB
	Config      config.Config
	log         logger.Logger
}

type CreateUserRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role,omitempty"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty"`
}

type UserControllerInterface interface {
	CreateUser(ctx context.Context, request *CreateUserRequest) (*UserProfile, error)
	GetProfile(ctx context.Context, user *User) UserProfile
	UpdateProfile(ctx context.Context, user *User, request *UpdateProfileRequest) (*UserProfile, error)
	ListTechnicians(ctx context.Context) ([]UserProfile, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) UserControllerInterface {
	return &UserController{
		userRepo:    repos.User,
		authService: services.Auth,
		db:          db,
		Config:      config,
		log:         logger.New("userController"),
	}
}

func (c *UserController) CreateUser(
	ctx context.Context,
	request *CreateUserRequest,
) (*UserProfile, error) {
	log := c.log.Function("CreateUser").TraceFromContext(ctx)

	if request.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name is required")
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, log.ErrorWithType(ErrValidation, "valid email is required")
	}

	if len(request.Password) < MinPasswordLength {
		return nil, log.ErrorWithType(
			ErrValidation,
			"password too short",
			"min", MinPasswordLength,
		)
	}

	role := request.Role
	if role == "" {
		role = RoleSubmitter
	}
	switch role {
	case RoleAdmin, RoleTechnician, RoleSubmitter:
	default:
		return nil, log.ErrorWithType(ErrValidation, "invalid role", "role", role)
	}

	if _, err := c.userRepo.GetByEmail(ctx, c.db.SQL, email); err == nil {
		return nil, log.ErrorWithType(ErrConflict, "email already registered", "email", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := c.authService.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         request.Name,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := c.userRepo.Create(ctx, c.db.SQL, user); err != nil {
		return nil, err
	}

	log.Info("User created", "userID", user.ID, "role", user.Role)

	profile := user.ToProfile()
	return &profile, nil
}

func (c *UserController) GetProfile(ctx context.Context, user *User) UserProfile {
	return user.ToProfile()
}

func (c *UserController) UpdateProfile(
	ctx context.Context,
	user *User,
	request *UpdateProfileRequest,
) (*UserProfile, error) {
	log := c.log.Function("UpdateProfile").TraceFromContext(ctx)

	if request.Name == nil {
		return nil, log.ErrorWithType(ErrValidation, "no fields to update")
	}

	if *request.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name cannot be empty")
	}

	user.Name = *request.Name
	if err := c.userRepo.Update(ctx, c.db.SQL, user); err != nil {
		return nil, err
	}

	log.Info("Profile updated", "userID", user.ID)

	profile := user.ToProfile()
	return &profile, nil
}

func (c *UserController) ListTechnicians(ctx context.Context) ([]UserProfile, error) {
	technicians, err := c.userRepo.ListTechnicians(ctx, c.db.SQL)
	if err != nil {
		return nil, err
	}

	profiles := make([]UserProfile, 0, len(technicians))
	for _, technician := range technicians {
		profiles = append(profiles, technician.ToProfile())
	}

	return profiles, nil
}
