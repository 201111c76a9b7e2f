package reportstore

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
)

// TransferInput names the agency taking over the case.
type TransferInput struct {
	ReceivingAgency string `json:"receiving_agency" validate:"required,min=2,max=150"`
}

// typeComplexity weights the incident type into the archived complexity
// score. Abductions carry the highest base weight.
var typeComplexity = map[string]int{
	models.ReportTypeAbducted:  40,
	models.ReportTypeKidnapped: 40,
	models.ReportTypeHitAndRun: 30,
	models.ReportTypeMissing:   20,
	models.ReportTypeAbsent:    10,
	models.ReportTypeOthers:    10,
}

func complexityScore(report *models.Report) int {
	score := typeComplexity[report.Type]
	score += 2 * len(report.PersonsInvolved)
	if report.IsPublished {
		score += 15
	}
	return score
}

// Transfer archives the report as a write-once TransferredReport snapshot and
// removes it from the primary table. The snapshot's analytics fields are
// computed here and never recomputed.
func (s *Service) Transfer(ctx context.Context, actorID uint, reportID uint, input TransferInput) (*models.TransferredReport, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid transfer request")
	}

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	daysOpen := int(time.Since(report.CreatedAt).Hours() / 24)
	archived := &models.TransferredReport{
		CaseNumber:       report.CaseNumber,
		Type:             report.Type,
		Barangay:         report.Barangay,
		City:             report.City,
		Longitude:        report.Longitude,
		Latitude:         report.Latitude,
		StatusAtTransfer: report.Status,
		ReceivingAgency:  input.ReceivingAgency,
		TransferredByID:  actorID,
		PersonCount:      len(report.PersonsInvolved),
		ComplexityScore:  complexityScore(report),
		DaysOpen:         daysOpen,
		AgeBucket:        models.AgeBucketFor(daysOpen),
		ReportCreatedAt:  report.CreatedAt,
	}

	if err := s.transferred.Create(archived); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "archive write failed")
	}
	if err := s.reports.Delete(reportID); err != nil {
		// The snapshot exists but the live row survived. Surface the error
		// so the caller retries; the archive table tolerates duplicates by
		// case number being a plain index.
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "report removal after archive failed")
	}

	log.Infof("[ReportStore] case %s transferred to %s (complexity=%d, %s)",
		report.CaseNumber, input.ReceivingAgency, archived.ComplexityScore, archived.AgeBucket)
	return archived, nil
}

// Delete hard-removes a report and its children. Person photos in the blob
// store are deleted best-effort; a failed object delete never blocks the row
// delete.
func (s *Service) Delete(ctx context.Context, reportID uint) error {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return err
	}

	for _, person := range report.PersonsInvolved {
		if person.PhotoKey == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, person.PhotoKey); err != nil {
			log.Warnf("[ReportStore] leaving orphaned photo %s for case %s: %v",
				person.PhotoKey, report.CaseNumber, err)
		}
	}

	if err := s.reports.Delete(reportID); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "report delete failed")
	}
	log.Infof("[ReportStore] case %s deleted", report.CaseNumber)
	return nil
}
