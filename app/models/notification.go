package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationTypeReportCreated  = "report_created"
	NotificationTypeStatusChanged  = "status_changed"
	NotificationTypeBroadcast      = "broadcast"
	NotificationTypeFinderVerified = "finder_verified"
)

type Notification struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"index" json:"user_id"`
	User           User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type           string         `gorm:"type:varchar(50)" json:"type" validate:"oneof=report_created status_changed broadcast finder_verified"`
	Title          string         `gorm:"type:varchar(150)" json:"title"`
	Message        string         `gorm:"type:text" json:"message"`
	ReportID       *uint          `gorm:"index" json:"report_id,omitempty"`
	FinderReportID *uint          `gorm:"index" json:"finder_report_id,omitempty"`
	IsRead         bool           `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead flags a notification as read.
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}
