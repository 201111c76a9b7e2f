package models

import "time"

const (
	TransferAgeBucketFresh = "fresh" // open less than a week
	TransferAgeBucketAging = "aging" // open up to a month
	TransferAgeBucketStale = "stale" // open longer than a month
)

// TransferredReport is a write-once archival snapshot of a report moved to
// another agency. The analytics fields are denormalized at creation time and
// never recomputed; rows in this table are never updated or deleted.
type TransferredReport struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CaseNumber       string    `gorm:"type:varchar(36);index;not null" json:"case_number"`
	Type             string    `gorm:"type:varchar(30);index" json:"type"`
	Barangay         string    `gorm:"type:varchar(100);index" json:"barangay"`
	City             string    `gorm:"type:varchar(100);index" json:"city"`
	Longitude        float64   `json:"longitude"`
	Latitude         float64   `json:"latitude"`
	StatusAtTransfer string    `gorm:"type:varchar(30)" json:"status_at_transfer"`
	ReceivingAgency  string    `gorm:"type:varchar(150);not null" json:"receiving_agency"`
	TransferredByID  uint      `gorm:"index" json:"transferred_by_id"`
	PersonCount      int       `json:"person_count"`
	ComplexityScore  int       `json:"complexity_score"`
	DaysOpen         int       `json:"days_open"`
	AgeBucket        string    `gorm:"type:varchar(20)" json:"age_bucket"`
	ReportCreatedAt  time.Time `json:"report_created_at"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AgeBucketFor maps days-open to a coarse timing bucket.
func AgeBucketFor(daysOpen int) string {
	switch {
	case daysOpen < 7:
		return TransferAgeBucketFresh
	case daysOpen < 30:
		return TransferAgeBucketAging
	default:
		return TransferAgeBucketStale
	}
}
