package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Resolution closes out a request. The unique index on RequestID enforces the
// one-resolution-per-request invariant at the schema level; the workflow also
// pre-checks it to return a clean conflict instead of a constraint error.
type Resolution struct {
	BaseModel
	RequestID             int              `gorm:"type:int;not null" json:"requestId"`
	ResolvedBy            uuid.UUID        `gorm:"type:uuid;not null"  json:"resolvedBy"`
	ResolutionNotes       string           `gorm:"type:text;not null"  json:"resolutionNotes"`
	ResolvedAt            time.Time        `gorm:"type:timestamp;not null" json:"resolvedAt"`
	MarkRecurring         bool             `gorm:"type:bool;default:false" json:"markRecurring"`
	SchedulePreventive    bool             `gorm:"type:bool;default:false" json:"schedulePreventive"`
	PreventiveScheduledAt *time.Time       `gorm:"type:timestamp"      json:"preventiveScheduledAt,omitempty"`
	Cost                  *decimal.Decimal `gorm:"type:decimal(10,2)"  json:"cost,omitempty"`

	Request  *Request          `gorm:"foreignKey:RequestID"  json:"request,omitempty"`
	Resolver *User             `gorm:"foreignKey:ResolvedBy" json:"resolver,omitempty"`
	Images   []ResolutionImage `gorm:"foreignKey:ResolutionID" json:"images,omitempty"`
}

func (r *Resolution) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == 0 {
		return gorm.ErrInvalidValue
	}
	if r.ResolvedBy == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if r.ResolutionNotes == "" {
		return gorm.ErrInvalidValue
	}
	if r.ResolvedAt.IsZero() {
		r.ResolvedAt = time.Now()
	}
	return nil
}

// ResolutionImage references a file on the attachment stage by its relative
// URL; the file must outlive the row until the row is deleted.
type ResolutionImage struct {
	BaseModel
	ResolutionID int       `gorm:"type:int;not null;index:idx_resolution_images_resolution" json:"resolutionId"`
	ImageURL     string    `gorm:"type:text;not null" json:"imageUrl"`
	Filename     string    `gorm:"type:text;not null" json:"filename"`
	Size         int64     `gorm:"type:bigint;not null" json:"size"`
	UploadedAt   time.Time `gorm:"type:timestamp;not null" json:"uploadedAt"`

	Resolution *Resolution `gorm:"foreignKey:ResolutionID" json:"resolution,omitempty"`
}

func (ri *ResolutionImage) BeforeCreate(tx *gorm.DB) error {
	if ri.ResolutionID == 0 {
		return gorm.ErrInvalidValue
	}
	if ri.ImageURL == "" {
		return gorm.ErrInvalidValue
	}
	if ri.UploadedAt.IsZero() {
		ri.UploadedAt = time.Now()
	}
	return nil
}
