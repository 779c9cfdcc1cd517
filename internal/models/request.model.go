package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in-progress"
	StatusResolved   RequestStatus = "resolved"
)

type RequestUrgency string

const (
	UrgencyLow      RequestUrgency = "low"
	UrgencyMedium   RequestUrgency = "medium"
	UrgencyHigh     RequestUrgency = "high"
	UrgencyCritical RequestUrgency = "critical"
)

// statusRank orders the forward-only request lifecycle
var statusRank = map[RequestStatus]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusResolved:   2,
}

func ValidStatus(status RequestStatus) bool {
	_, ok := statusRank[status]
	return ok
}

func ValidUrgency(urgency RequestUrgency) bool {
	switch urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

type Request struct {
	BaseModel
	Title       string         `gorm:"type:text;not null"                                  json:"title"`
	Description string         `gorm:"type:text"                                           json:"description"`
	Category    string         `gorm:"type:text;not null;index:idx_requests_category"      json:"category"`
	Location    string         `gorm:"type:text"                                           json:"location"`
	Urgency     RequestUrgency `gorm:"type:text;not null;index:idx_requests_urgency"       json:"urgency"`
	Status      RequestStatus  `gorm:"type:text;not null;default:'pending';index:idx_requests_status" json:"status"`
	SubmittedBy uuid.UUID      `gorm:"type:uuid;not null;index:idx_requests_submitted_by"  json:"submittedBy"`
	AssignedTo  *uuid.UUID     `gorm:"type:uuid;index:idx_requests_assigned_to"            json:"assignedTo,omitempty"`
	ImageURL    string         `gorm:"type:text"                                           json:"imageUrl,omitempty"`
	ResolvedAt  *time.Time     `gorm:"type:timestamp"                                      json:"resolvedAt,omitempty"`

	Submitter *User       `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
	Assignee  *User       `gorm:"foreignKey:AssignedTo"  json:"assignee,omitempty"`
	Comments  []RequestComment `gorm:"foreignKey:RequestID" json:"comments,omitempty"`
}

// CanTransitionTo enforces the forward-only status flow. Admins may move a
// request backwards as an explicit override.
func (r *Request) CanTransitionTo(next RequestStatus, adminOverride bool) bool {
	current, ok := statusRank[r.Status]
	if !ok {
		return false
	}

	target, ok := statusRank[next]
	if !ok {
		return false
	}

	if adminOverride {
		return true
	}

	return target >= current
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.Title == "" {
		return gorm.ErrInvalidValue
	}
	if r.SubmittedBy == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if !ValidStatus(r.Status) {
		return gorm.ErrInvalidValue
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyMedium
	}
	if !ValidUrgency(r.Urgency) {
		return gorm.ErrInvalidValue
	}
	return nil
}
