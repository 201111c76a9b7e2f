package models

import "time"

const (
	BroadcastActionPublished   = "published"
	BroadcastActionUnpublished = "unpublished"
)

// BroadcastEvent is an append-only record of a publish or unpublish action.
// Rows are never updated after creation.
type BroadcastEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReportID     uint      `gorm:"index;not null" json:"report_id"`
	Action       string    `gorm:"type:varchar(20);not null" json:"action"`
	Method       string    `gorm:"type:varchar(100);not null" json:"method"` // comma separated channel list
	ActorID      uint      `gorm:"index" json:"actor_id"`
	DeliveryNote string    `gorm:"type:varchar(255)" json:"delivery_note,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ConsentChange is an append-only record of a broadcast-consent flip.
type ConsentChange struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReportID      uint      `gorm:"index;not null" json:"report_id"`
	PreviousValue bool      `json:"previous_value"`
	NewValue      bool      `json:"new_value"`
	ActorID       uint      `gorm:"index" json:"actor_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
