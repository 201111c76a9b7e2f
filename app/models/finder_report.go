package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FinderStatusPending     = "pending"
	FinderStatusVerified    = "verified"
	FinderStatusFalseReport = "false_report"

	// MaxFinderImages bounds the photos a finder may attach.
	MaxFinderImages = 5
)

// FinderReport is a secondary report filed by someone who located the person
// in an original report. Verification never mutates the original report; it
// only triggers a notification to the reporter.
type FinderReport struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	ReportID      uint               `gorm:"index;not null" json:"report_id"`
	Report        *Report            `gorm:"foreignKey:ReportID" json:"report,omitempty"`
	FinderID      uint               `gorm:"index;not null" json:"finder_id"`
	Finder        *User              `gorm:"foreignKey:FinderID" json:"finder,omitempty"`
	Longitude     float64            `gorm:"not null" json:"longitude"`
	Latitude      float64            `gorm:"not null" json:"latitude"`
	Street        string             `gorm:"type:varchar(200)" json:"street"`
	Barangay      string             `gorm:"type:varchar(100)" json:"barangay"`
	City          string             `gorm:"type:varchar(100)" json:"city"`
	DiscoveredAt  time.Time          `gorm:"not null" json:"discovered_at" validate:"required"`
	Condition     string             `gorm:"type:varchar(50)" json:"condition" validate:"oneof=unharmed injured deceased unknown"`
	Notes         string             `gorm:"type:text" json:"notes"`
	Status        string             `gorm:"type:varchar(30);default:'pending';index" json:"status"`
	VerifiedByID  *uint              `gorm:"index" json:"verified_by_id,omitempty"`
	VerifiedBy    *User              `gorm:"foreignKey:VerifiedByID" json:"verified_by,omitempty"`
	VerifiedAt    *time.Time         `json:"verified_at,omitempty"`
	Images        []FinderImage      `gorm:"foreignKey:FinderReportID" json:"images"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`
}

type FinderImage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FinderReportID uint      `gorm:"index;not null" json:"finder_report_id"`
	URL            string    `gorm:"type:varchar(255);not null" json:"url"`
	Key            string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
