package reportstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// FinderImageInput is one finder-supplied photo already in the blob store.
type FinderImageInput struct {
	URL string `json:"url" validate:"required,url"`
	Key string `json:"key" validate:"required"`
}

// FinderReportInput is a sighting filed against an existing report.
type FinderReportInput struct {
	Longitude    float64            `json:"longitude" validate:"required"`
	Latitude     float64            `json:"latitude" validate:"required"`
	Street       string             `json:"street"`
	Barangay     string             `json:"barangay"`
	City         string             `json:"city"`
	DiscoveredAt time.Time          `json:"discovered_at" validate:"required"`
	Condition    string             `json:"condition" validate:"required,oneof=unharmed injured deceased unknown"`
	Notes        string             `json:"notes"`
	Images       []FinderImageInput `json:"images" validate:"max=5,dive"`
}

// CreateFinderReport files a sighting against an open report and alerts the
// assigned station's staff. The original report is never mutated.
func (s *Service) CreateFinderReport(ctx context.Context, actor usercontext.UserContext, reportID uint, input FinderReportInput) (*models.FinderReport, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid finder report")
	}
	if len(input.Images) > models.MaxFinderImages {
		return nil, apperrors.E(apperrors.KindValidation, "at most %d images allowed", models.MaxFinderImages)
	}

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	finder := &models.FinderReport{
		ReportID:     report.ID,
		FinderID:     actor.UserID,
		Longitude:    input.Longitude,
		Latitude:     input.Latitude,
		Street:       input.Street,
		Barangay:     input.Barangay,
		City:         input.City,
		DiscoveredAt: input.DiscoveredAt,
		Condition:    input.Condition,
		Notes:        input.Notes,
		Status:       models.FinderStatusPending,
	}
	for _, img := range input.Images {
		finder.Images = append(finder.Images, models.FinderImage{
			URL: img.URL,
			Key: img.Key,
		})
	}

	if err := s.finders.Create(finder); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to create finder report")
	}

	finderID := finder.ID
	go func(report models.Report) {
		s.notifier.NotifyStationStaff(context.Background(), &report, dispatch.Message{
			Title:    "Sighting reported",
			Body:     "A finder report was filed for case " + report.CaseNumber + ". Verification needed.",
			Type:     models.NotificationTypeReportCreated,
			ReportID: report.ID,
			FinderID: &finderID,
		})
	}(*report)

	return finder, nil
}

// ListFinderReports returns the sightings filed against a report.
func (s *Service) ListFinderReports(ctx context.Context, reportID uint) ([]models.FinderReport, error) {
	if _, err := s.Get(ctx, reportID); err != nil {
		return nil, err
	}
	finders, err := s.finders.GetByReportID(reportID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to list finder reports")
	}
	return finders, nil
}

// VerifyFinderReport decides a pending sighting. verdict is verified or
// false_report; a sighting is decided at most once. A verified sighting
// notifies the original reporter.
func (s *Service) VerifyFinderReport(ctx context.Context, actor usercontext.UserContext, finderID uint, verdict string) (*models.FinderReport, error) {
	if verdict != models.FinderStatusVerified && verdict != models.FinderStatusFalseReport {
		return nil, apperrors.E(apperrors.KindValidation, "verdict must be %s or %s",
			models.FinderStatusVerified, models.FinderStatusFalseReport)
	}

	finder, err := s.finders.GetByID(finderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "finder report %d not found", finderID)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to load finder report")
	}

	affected, err := s.finders.VerifyGuard(finderID, verdict, actor.UserID, time.Now())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "verification failed")
	}
	if affected == 0 {
		return nil, apperrors.E(apperrors.KindInvalidTransition,
			"finder report %d was already decided", finderID)
	}

	if verdict == models.FinderStatusVerified {
		report, err := s.Get(ctx, finder.ReportID)
		if err == nil {
			id := finderID
			s.notifyReporter(report, models.NotificationTypeFinderVerified,
				"A sighting was verified",
				"Police verified a sighting related to case "+report.CaseNumber+".", &id)
		}
	}

	decided, err := s.finders.GetByID(finderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to reload finder report")
	}
	return decided, nil
}
