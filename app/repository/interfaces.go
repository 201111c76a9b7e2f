package repository

import (
	"time"

	"github.com/bantay-ph/bantay-api/app/models"
	"gorm.io/gorm"
)

// ReportFilter narrows report listings.
type ReportFilter struct {
	Status     string
	Type       string
	Barangay   string
	City       string
	ReporterID uint
	StationID  uint
	From       *time.Time
	To         *time.Time
}

// OwnerEdit carries the fields a reporter may change while the report is
// still pending.
type OwnerEdit struct {
	Type             string
	Details          string
	Street           string
	Barangay         string
	City             string
	ZipCode          string
	Longitude        float64
	Latitude         float64
	BroadcastConsent bool
}

// AreaMonthCount is one aggregation bucket for hotspot analytics.
type AreaMonthCount struct {
	Barangay string
	City     string
	Month    string // YYYY-MM
	Type     string
	Count    int
}

// ReportRepository defines the interface for report-related database
// operations. Guarded mutations are single conditional updates; callers
// check the returned affected-row count instead of reading first.
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	GetByCaseNumber(caseNumber string) (*models.Report, error)
	List(filter ReportFilter, offset, limit int) ([]models.Report, error)
	Count(filter ReportFilter) (int64, error)

	UpdateStatusGuard(id uint, allowedCurrent []string, to string) (int64, error)
	AssignStationGuard(id uint, stationID uint) (int64, error)
	AssignOfficerGuard(id uint, officerID uint, allowedCurrent []string) (int64, error)
	UpdateOwnerEditableGuard(id uint, edit OwnerEdit) (int64, error)
	UpdateConsentPendingGuard(id uint, consent bool) (int64, error)
	UpdateConsentOnceGuard(id uint, consent bool) (int64, error)

	SetPublished(id uint, published bool, channels string) error
	SetSchedule(id uint, at time.Time, channels string) error
	ClearSchedule(id uint) error
	DuePublishSchedules(now time.Time) ([]models.Report, error)

	AppendConsentChange(change *models.ConsentChange) error
	AppendBroadcastEvent(event *models.BroadcastEvent) error

	MonthlyAreaCounts(filter ReportFilter) ([]AreaMonthCount, error)

	Delete(id uint) error
}

// StationRepository defines the interface for police station operations
type StationRepository interface {
	Create(station *models.PoliceStation) error
	GetByID(id uint) (*models.PoliceStation, error)
	GetAll() ([]models.PoliceStation, error)
	GetByCity(city string) ([]models.PoliceStation, error)
	Update(station *models.PoliceStation) error
	Delete(id uint) error
	Count() (int64, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetStationStaff returns the officers and admins whose police station
	// equals stationID. A direct equality match, not a jurisdiction query.
	GetStationStaff(stationID uint) ([]models.User, error)
	// GetBroadcastAudience returns active citizens reachable by a public
	// broadcast (device token or email on file).
	GetBroadcastAudience() ([]models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(notification *models.Notification) error
	CreateBatch(notifications []models.Notification) error
	GetByUserID(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(id, userID uint) (int64, error)
}

// FinderReportRepository defines the interface for finder reports
type FinderReportRepository interface {
	Create(finder *models.FinderReport) error
	GetByID(id uint) (*models.FinderReport, error)
	GetByReportID(reportID uint) ([]models.FinderReport, error)
	// VerifyGuard moves a pending finder report to verdict. Conditional
	// update; zero affected rows means it was already decided.
	VerifyGuard(id uint, verdict string, verifierID uint, at time.Time) (int64, error)
}

// TransferredReportRepository is append-only: snapshots are written once and
// never mutated.
type TransferredReportRepository interface {
	Create(archived *models.TransferredReport) error
	GetByCaseNumber(caseNumber string) (*models.TransferredReport, error)
	List(offset, limit int) ([]models.TransferredReport, error)
}

// Repositories groups all repository instances
type Repositories struct {
	Report       ReportRepository
	Station      StationRepository
	User         UserRepository
	Notification NotificationRepository
	Finder       FinderReportRepository
	Transferred  TransferredReportRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Report:       NewReportRepository(db),
		Station:      NewStationRepository(db),
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
		Finder:       NewFinderReportRepository(db),
		Transferred:  NewTransferredReportRepository(db),
	}
}
