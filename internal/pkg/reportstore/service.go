// Package reportstore owns the report lifecycle: intake, the forward-only
// status machine, consent rules, transfer-out and deletion. All status
// guards are single conditional updates at the storage layer; the service
// never enforces a transition with a read-then-write pair.
package reportstore

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/blobstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
	"github.com/bantay-ph/bantay-api/internal/pkg/geo"
	"github.com/bantay-ph/bantay-api/internal/pkg/geocode"
	"github.com/bantay-ph/bantay-api/internal/pkg/metrics"
	"github.com/bantay-ph/bantay-api/internal/pkg/stationlocator"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// Notifier is the slice of the dispatcher the report store needs. Station
// notifications are best effort and never fail a lifecycle operation.
type Notifier interface {
	NotifyStationStaff(ctx context.Context, report *models.Report, msg dispatch.Message) dispatch.Results
}

type Service struct {
	reports       repository.ReportRepository
	stations      repository.StationRepository
	users         repository.UserRepository
	finders       repository.FinderReportRepository
	transferred   repository.TransferredReportRepository
	notifications repository.NotificationRepository
	locator       *stationlocator.Locator
	geocoder      geocode.Client
	blobs         blobstore.Store
	notifier      Notifier
	validate      *validator.Validate
}

func New(
	repos *repository.Repositories,
	locator *stationlocator.Locator,
	geocoder geocode.Client,
	blobs blobstore.Store,
	notifier Notifier,
) *Service {
	return &Service{
		reports:       repos.Report,
		stations:      repos.Station,
		users:         repos.User,
		finders:       repos.Finder,
		transferred:   repos.Transferred,
		notifications: repos.Notification,
		locator:       locator,
		geocoder:      geocoder,
		blobs:         blobs,
		notifier:      notifier,
		validate:      validator.New(),
	}
}

// PersonInput describes one person involved in a report at intake.
type PersonInput struct {
	Name              string     `json:"name" validate:"required,min=2,max=150"`
	Age               int        `json:"age" validate:"min=0,max=130"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	LastSeenAt        time.Time  `json:"last_seen_at" validate:"required"`
	LastKnownLocation string     `json:"last_known_location"`
	PhotoURL          string     `json:"photo_url" validate:"required,url"`
	PhotoKey          string     `json:"photo_key" validate:"required"`
	PhysicalNotes     string     `json:"physical_notes"`
	MedicalNotes      string     `json:"medical_notes"`
}

// CreateInput is a report intake request. Coordinates are optional; when
// absent the address is geocoded before anything is persisted.
type CreateInput struct {
	Type             string        `json:"type" validate:"required,oneof=absent missing abducted kidnapped hit_and_run others"`
	Details          string        `json:"details"`
	Street           string        `json:"street" validate:"required"`
	Barangay         string        `json:"barangay" validate:"required"`
	City             string        `json:"city" validate:"required"`
	ZipCode          string        `json:"zip_code"`
	Longitude        *float64      `json:"longitude"`
	Latitude         *float64      `json:"latitude"`
	StationID        *uint         `json:"station_id"`
	BroadcastConsent *bool         `json:"broadcast_consent"`
	Persons          []PersonInput `json:"persons_involved" validate:"required,min=1,dive"`
}

// Create validates, geocodes and assigns a station, then persists the report
// in a single transaction. The station staff notification is fired after the
// write commits and cannot fail the create.
func (s *Service) Create(ctx context.Context, actor usercontext.UserContext, input CreateInput) (*models.Report, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid report")
	}
	// Consent must be an explicit choice, false included.
	if input.BroadcastConsent == nil {
		return nil, apperrors.E(apperrors.KindValidation, "broadcast_consent must be set")
	}

	lon, lat, err := s.resolveCoordinates(ctx, input)
	if err != nil {
		return nil, err
	}

	station, err := s.locator.Locate(ctx, input.StationID, lon, lat)
	if err != nil {
		return nil, err
	}
	log.Infof("[ReportStore] Assigning station %d (%s), approx %.1f km by road",
		station.ID, station.Name,
		geo.EstimateRoadKm(geo.DistanceKm(lon, lat, station.Longitude, station.Latitude)))

	report := &models.Report{
		CaseNumber:        uuid.New().String(),
		Type:              input.Type,
		ReporterID:        actor.UserID,
		Details:           input.Details,
		Longitude:         lon,
		Latitude:          lat,
		Street:            input.Street,
		Barangay:          input.Barangay,
		City:              input.City,
		ZipCode:           input.ZipCode,
		AssignedStationID: &station.ID,
		Status:            models.ReportStatusPending,
		BroadcastConsent:  *input.BroadcastConsent,
	}
	for _, p := range input.Persons {
		report.PersonsInvolved = append(report.PersonsInvolved, models.PersonInvolved{
			Name:              p.Name,
			Age:               p.Age,
			DateOfBirth:       p.DateOfBirth,
			LastSeenAt:        p.LastSeenAt,
			LastKnownLocation: p.LastKnownLocation,
			PhotoURL:          p.PhotoURL,
			PhotoKey:          p.PhotoKey,
			PhysicalNotes:     p.PhysicalNotes,
			MedicalNotes:      p.MedicalNotes,
			Status:            models.PersonStatusStillMissing,
		})
	}

	if err := s.reports.Create(report); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to create report")
	}
	metrics.ReportsCreated.WithLabelValues(report.Type).Inc()

	// Fire and forget: the intake is committed, staff notification is a
	// side channel and runs to completion even if the client is gone.
	go func(report models.Report) {
		s.notifier.NotifyStationStaff(context.Background(), &report, dispatch.Message{
			Title:    "New report in your jurisdiction",
			Body:     "Case " + report.CaseNumber + " was filed and assigned to your station.",
			Type:     models.NotificationTypeReportCreated,
			ReportID: report.ID,
		})
	}(*report)

	return report, nil
}

// resolveCoordinates uses the provided point or geocodes the address.
// Geocoding failure aborts the create before any write.
func (s *Service) resolveCoordinates(ctx context.Context, input CreateInput) (float64, float64, error) {
	if input.Longitude != nil && input.Latitude != nil {
		return *input.Longitude, *input.Latitude, nil
	}
	return s.geocoder.Resolve(ctx, geocode.Address{
		Street:   input.Street,
		Barangay: input.Barangay,
		City:     input.City,
		ZipCode:  input.ZipCode,
	})
}

// Get returns a report with its owned records.
func (s *Service) Get(ctx context.Context, id uint) (*models.Report, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "report %d not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to load report")
	}
	return report, nil
}

// List returns reports matching the filter.
func (s *Service) List(ctx context.Context, filter repository.ReportFilter, offset, limit int) ([]models.Report, int64, error) {
	reports, err := s.reports.List(filter, offset, limit)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindStorage, err, "failed to list reports")
	}
	total, err := s.reports.Count(filter)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindStorage, err, "failed to count reports")
	}
	return reports, total, nil
}

// notifyReporter writes a single in-app notification to the report owner.
// Best effort.
func (s *Service) notifyReporter(report *models.Report, notifType, title, message string, finderID *uint) {
	reportID := report.ID
	err := s.notifications.Create(&models.Notification{
		UserID:         report.ReporterID,
		Type:           notifType,
		Title:          title,
		Message:        message,
		ReportID:       &reportID,
		FinderReportID: finderID,
	})
	if err != nil {
		log.Warnf("[ReportStore] reporter notification failed for report %d: %v", report.ID, err)
	}
}
