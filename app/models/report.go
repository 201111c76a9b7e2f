package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReportTypeAbsent    = "absent"
	ReportTypeMissing   = "missing"
	ReportTypeAbducted  = "abducted"
	ReportTypeKidnapped = "kidnapped"
	ReportTypeHitAndRun = "hit_and_run"
	ReportTypeOthers    = "others"

	ReportStatusPending            = "pending"
	ReportStatusAssigned           = "assigned"
	ReportStatusUnderInvestigation = "under_investigation"
	ReportStatusResolved           = "resolved"

	PersonStatusStillMissing = "still_missing"
	PersonStatusFound        = "found"
)

// ReportTypes lists the accepted incident types.
var ReportTypes = []string{
	ReportTypeAbsent,
	ReportTypeMissing,
	ReportTypeAbducted,
	ReportTypeKidnapped,
	ReportTypeHitAndRun,
	ReportTypeOthers,
}

// statusRank orders the forward-only lifecycle. Pending is the entry state,
// transfer-out leaves the table entirely (see TransferredReport).
var statusRank = map[string]int{
	ReportStatusPending:            0,
	ReportStatusAssigned:           1,
	ReportStatusUnderInvestigation: 2,
	ReportStatusResolved:           3,
}

// IsValidStatus reports whether s is a known report status.
func IsValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// StatusesBelow returns every status strictly before s in the lifecycle.
// Used to build the allowed-current set of a conditional status update.
func StatusesBelow(s string) []string {
	rank, ok := statusRank[s]
	if !ok {
		return nil
	}
	var below []string
	for name, r := range statusRank {
		if r < rank {
			below = append(below, name)
		}
	}
	return below
}

type Report struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	CaseNumber        string `gorm:"type:varchar(36);uniqueIndex;not null" json:"case_number"`
	Type              string `gorm:"type:varchar(30);not null;index" json:"type" validate:"required,oneof=absent missing abducted kidnapped hit_and_run others"`
	ReporterID        uint   `gorm:"index;not null" json:"reporter_id"`
	Reporter          *User  `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Details           string `gorm:"type:text" json:"details"`

	// Location. The point is mandatory; it drives station assignment and
	// hotspot aggregation.
	Longitude float64 `gorm:"not null" json:"longitude"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Street    string  `gorm:"type:varchar(200)" json:"street" validate:"required"`
	Barangay  string  `gorm:"type:varchar(100);index" json:"barangay" validate:"required"`
	City      string  `gorm:"type:varchar(100);index" json:"city" validate:"required"`
	ZipCode   string  `gorm:"type:varchar(10)" json:"zip_code"`

	AssignedStationID *uint          `gorm:"index" json:"assigned_station_id,omitempty"`
	AssignedStation   *PoliceStation `gorm:"foreignKey:AssignedStationID" json:"assigned_station,omitempty"`
	AssignedOfficerID *uint          `gorm:"index" json:"assigned_officer_id,omitempty"`
	AssignedOfficer   *User          `gorm:"foreignKey:AssignedOfficerID" json:"assigned_officer,omitempty"`

	Status string `gorm:"type:varchar(30);default:'pending';index" json:"status"`

	// Broadcast state. Consent gates publication permanently; the reporter
	// may flip it exactly once after the report leaves pending.
	BroadcastConsent  bool       `gorm:"not null" json:"broadcast_consent"`
	HasUpdatedConsent bool       `gorm:"default:false" json:"has_updated_consent"`
	IsPublished       bool       `gorm:"default:false;index" json:"is_published"`
	PublishScheduleAt *time.Time `gorm:"index" json:"publish_schedule_at,omitempty"`
	PublishChannels   string     `gorm:"type:varchar(100);default:null" json:"publish_channels,omitempty"`

	PersonsInvolved  []PersonInvolved `gorm:"foreignKey:ReportID" json:"persons_involved"`
	ConsentChanges   []ConsentChange  `gorm:"foreignKey:ReportID" json:"consent_changes,omitempty"`
	BroadcastEvents  []BroadcastEvent `gorm:"foreignKey:ReportID" json:"broadcast_events,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PersonInvolved is owned by its report. The most recent photo is required
// at intake and lives in the blob store.
type PersonInvolved struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ReportID          uint           `gorm:"index;not null" json:"report_id"`
	Name              string         `gorm:"type:varchar(150);not null" json:"name" validate:"required"`
	Age               int            `json:"age" validate:"min=0,max=130"`
	DateOfBirth       *time.Time     `json:"date_of_birth,omitempty"`
	LastSeenAt        time.Time      `gorm:"not null" json:"last_seen_at" validate:"required"`
	LastKnownLocation string         `gorm:"type:varchar(255)" json:"last_known_location"`
	PhotoURL          string         `gorm:"type:varchar(255);not null" json:"photo_url" validate:"required,url"`
	PhotoKey          string         `gorm:"type:varchar(255);not null" json:"-" validate:"required"`
	PhysicalNotes     string         `gorm:"type:text" json:"physical_notes"`
	MedicalNotes      string         `gorm:"type:text" json:"medical_notes"`
	Status            string         `gorm:"type:varchar(30);default:'still_missing'" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
