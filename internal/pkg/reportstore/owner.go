package reportstore

import (
	"context"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/geocode"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// OwnerEditInput is the full field set a reporter may change while the
// report is still pending.
type OwnerEditInput struct {
	Type             string   `json:"type" validate:"required,oneof=absent missing abducted kidnapped hit_and_run others"`
	Details          string   `json:"details"`
	Street           string   `json:"street" validate:"required"`
	Barangay         string   `json:"barangay" validate:"required"`
	City             string   `json:"city" validate:"required"`
	ZipCode          string   `json:"zip_code"`
	Longitude        *float64 `json:"longitude"`
	Latitude         *float64 `json:"latitude"`
	BroadcastConsent *bool    `json:"broadcast_consent"`
}

// OwnerEdit applies a full reporter edit. Permitted only while the report is
// pending; afterwards every field except broadcast consent is immutable to
// the owner.
func (s *Service) OwnerEdit(ctx context.Context, actor usercontext.UserContext, reportID uint, input OwnerEditInput) (*models.Report, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid edit")
	}
	if input.BroadcastConsent == nil {
		return nil, apperrors.E(apperrors.KindValidation, "broadcast_consent must be set")
	}

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != actor.UserID {
		return nil, apperrors.E(apperrors.KindForbidden, "only the reporter may edit this report")
	}
	if report.Status != models.ReportStatusPending {
		return nil, apperrors.E(apperrors.KindForbiddenEdit,
			"case %s has left pending; only broadcast consent may still be changed", report.CaseNumber)
	}

	lon, lat := report.Longitude, report.Latitude
	if input.Longitude != nil && input.Latitude != nil {
		lon, lat = *input.Longitude, *input.Latitude
	} else if addressChanged(report, input) {
		lon, lat, err = s.geocoder.Resolve(ctx, geocode.Address{
			Street:   input.Street,
			Barangay: input.Barangay,
			City:     input.City,
			ZipCode:  input.ZipCode,
		})
		if err != nil {
			return nil, err
		}
	}

	affected, err := s.reports.UpdateOwnerEditableGuard(reportID, repository.OwnerEdit{
		Type:             input.Type,
		Details:          input.Details,
		Street:           input.Street,
		Barangay:         input.Barangay,
		City:             input.City,
		ZipCode:          input.ZipCode,
		Longitude:        lon,
		Latitude:         lat,
		BroadcastConsent: *input.BroadcastConsent,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "owner edit failed")
	}
	if affected == 0 {
		// lost the race against a station assignment
		return nil, apperrors.E(apperrors.KindForbiddenEdit,
			"case %s has left pending; only broadcast consent may still be changed", report.CaseNumber)
	}

	return s.Get(ctx, reportID)
}

func addressChanged(report *models.Report, input OwnerEditInput) bool {
	return report.Street != input.Street ||
		report.Barangay != input.Barangay ||
		report.City != input.City ||
		report.ZipCode != input.ZipCode
}

// UpdateConsent flips the broadcast consent flag. While the report is
// pending the owner may change it freely; once it leaves pending the owner
// gets exactly one more change, tracked by HasUpdatedConsent. The second
// post-pending attempt fails regardless of the value passed.
func (s *Service) UpdateConsent(ctx context.Context, actor usercontext.UserContext, reportID uint, consent bool) (*models.Report, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != actor.UserID {
		return nil, apperrors.E(apperrors.KindForbidden, "only the reporter may change consent")
	}

	var affected int64
	if report.Status == models.ReportStatusPending {
		affected, err = s.reports.UpdateConsentPendingGuard(reportID, consent)
	} else {
		affected, err = s.reports.UpdateConsentOnceGuard(reportID, consent)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "consent update failed")
	}
	if affected == 0 {
		return nil, apperrors.E(apperrors.KindForbiddenEdit,
			"consent for case %s was already updated once", report.CaseNumber)
	}

	if err := s.reports.AppendConsentChange(&models.ConsentChange{
		ReportID:      reportID,
		PreviousValue: report.BroadcastConsent,
		NewValue:      consent,
		ActorID:       actor.UserID,
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "consent history append failed")
	}

	return s.Get(ctx, reportID)
}
