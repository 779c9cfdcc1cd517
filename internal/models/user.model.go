package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleSubmitter  UserRole = "submitter"
)

type User struct {
	BaseUUIDModel
	Name         string     `gorm:"type:text;not null"           json:"name"`
	Email        string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Role         UserRole   `gorm:"type:text;not null;default:'submitter'" json:"role"`
	PasswordHash string     `gorm:"type:text;not null"           json:"-"`
	IsActive     bool       `gorm:"type:bool;default:true"       json:"isActive"`
	LastLoginAt  *time.Time `gorm:"type:timestamp"               json:"lastLoginAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTechnician() bool {
	return u.Role == RoleTechnician
}

// UserProfile is the public shape of a user, password hash excluded
type UserProfile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        UserRole   `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}
