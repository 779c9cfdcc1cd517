package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HistoryAction string

const (
	HistoryCreated    HistoryAction = "created"
	HistoryStatusSet  HistoryAction = "status_changed"
	HistoryAssigned   HistoryAction = "technician_assigned"
	HistoryResolved   HistoryAction = "resolved"
	HistoryUpdated    HistoryAction = "updated"
	HistoryBulkUpdate HistoryAction = "bulk_updated"
)

// RequestHistory is the append-only audit trail for a request. Rows are
// written by the request and resolution workflows and never mutated.
type RequestHistory struct {
	BaseModel
	RequestID int            `gorm:"type:int;not null;index:idx_request_history_request" json:"requestId"`
	ActorID   *uuid.UUID     `gorm:"type:uuid" json:"actorId,omitempty"`
	Action    HistoryAction  `gorm:"type:text;not null" json:"action"`
	Detail    datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
