package authController

import (
	"context"
	"errors"
	"strings"
	"time"

	"servicelink/internal/database"
	. "servicelink/internal/models"
	"servicelink/internal/repositories"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

type AuthController struct {
	userRepo    repositories.UserRepository
	authService *services.AuthService
	db          database.DB
	log         logger.Logger
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type AuthControllerInterface interface {
	Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error)
	ResolveUser(ctx context.Context, token string) (*User, error)
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		userRepo:    repos.User,
		authService: services.Auth,
		db:          db,
		log:         logger.New("authController"),
	}
}

func (c *AuthController) Login(
	ctx context.Context,
	request *LoginRequest,
) (*LoginResponse, error) {
	log := c.log.Function("Login").TraceFromContext(ctx)

	email := strings.ToLower(strings.TrimSpace(request.Email))
	if email == "" || request.Password == "" {
		return nil, log.ErrorWithType(ErrValidation, "email and password are required")
	}

	user, err := c.userRepo.GetByEmail(ctx, c.db.SQL, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same response as a wrong password so logins cannot probe
			// which emails exist
			return nil, log.ErrorWithType(ErrUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, log.ErrorWithType(ErrUnauthorized, "account is inactive", "userID", user.ID)
	}

	if err := c.authService.VerifyPassword(user, request.Password); err != nil {
		return nil, log.ErrorWithType(ErrUnauthorized, "invalid credentials", "userID", user.ID)
	}

	token, err := c.authService.IssueToken(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := c.userRepo.Update(ctx, c.db.SQL, user); err != nil {
		log.Warn("failed to record login time", "userID", user.ID, "error", err)
	}

	log.Info("User logged in", "userID", user.ID)

	return &LoginResponse{
		Token: token,
		User:  user.ToProfile(),
	}, nil
}

// ResolveUser validates a bearer token and loads the current user row, so
// role checks always see the stored role rather than the one minted into
// the token.
func (c *AuthController) ResolveUser(ctx context.Context, token string) (*User, error) {
	log := c.log.Function("ResolveUser").TraceFromContext(ctx)

	info, err := c.authService.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := c.userRepo.GetByID(ctx, c.db.SQL, info.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrUnauthorized, "token user no longer exists", "userID", info.UserID)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, log.ErrorWithType(ErrUnauthorized, "account is inactive", "userID", user.ID)
	}

	return user, nil
}
