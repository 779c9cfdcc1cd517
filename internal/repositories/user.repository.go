package repositories

import (
	"context"
	"time"

	"servicelink/internal/database"
	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY       = 24 * time.Hour
	USER_CACHE_PREFIX       = "user"
	TECHNICIAN_CACHE_KEY    = "technicians:active"
	TECHNICIAN_CACHE_EXPIRY = 5 * time.Minute
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	Update(ctx context.Context, tx *gorm.DB, user *User) error
	ListTechnicians(ctx context.Context, tx *gorm.DB) ([]*User, error)
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		cache: db.Cache.User,
		log:   logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var cached User
	found, err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get user from cache", "userID", id, "error", err)
	}

	if found {
		return &cached, nil
	}

	var user User
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get user", err, "userID", id)
	}

	if err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error) {
	log := r.log.Function("GetByEmail")

	var user User
	if err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get user by email", err, "email", email)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Create")

	if err := gorm.G[User](tx).Create(ctx, user); err != nil {
		return log.Err("failed to create user", err, "email", user.Email)
	}

	r.clearTechnicianCache(ctx)

	return nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	r.clearUserCache(ctx, user.ID)
	r.clearTechnicianCache(ctx)

	return nil
}

func (r *userRepository) ListTechnicians(ctx context.Context, tx *gorm.DB) ([]*User, error) {
	log := r.log.Function("ListTechnicians")

	var cached []*User
	found, err := database.NewCacheBuilder(r.cache, TECHNICIAN_CACHE_KEY).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get technicians from cache", "error", err)
	}

	if found {
		return cached, nil
	}

	technicians, err := gorm.G[*User](tx).
		Where("role = ? AND is_active = ?", RoleTechnician, true).
		Order("name ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list technicians", err)
	}

	if err := database.NewCacheBuilder(r.cache, TECHNICIAN_CACHE_KEY).
		WithContext(ctx).
		WithStruct(technicians).
		WithTTL(TECHNICIAN_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to cache technicians", "error", err)
	}

	return technicians, nil
}

func (r *userRepository) clearUserCache(ctx context.Context, id uuid.UUID) {
	if err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Delete(); err != nil {
		r.log.Warn("failed to clear user cache", "userID", id, "error", err)
	}
}

func (r *userRepository) clearTechnicianCache(ctx context.Context) {
	if err := database.NewCacheBuilder(r.cache, TECHNICIAN_CACHE_KEY).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Warn("failed to clear technician cache", "error", err)
	}
}
