package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestComment is append-only; there are no update or delete paths.
type RequestComment struct {
	BaseModel
	RequestID int       `gorm:"type:int;not null;index:idx_request_comments_request" json:"requestId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"userId"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (c *RequestComment) BeforeCreate(tx *gorm.DB) error {
	if c.RequestID == 0 {
		return gorm.ErrInvalidValue
	}
	if c.UserID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if c.Comment == "" {
		return gorm.ErrInvalidValue
	}
	return nil
}
