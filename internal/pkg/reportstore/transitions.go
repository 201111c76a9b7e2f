package reportstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
	"github.com/bantay-ph/bantay-api/internal/pkg/metrics"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// AssignStation moves a pending report to assigned with the given station.
// Only permitted while the status is exactly pending; the guard is one
// conditional update so two concurrent assigns cannot both succeed.
func (s *Service) AssignStation(ctx context.Context, actor usercontext.UserContext, reportID, stationID uint) (*models.Report, error) {
	if _, err := s.stations.GetByID(stationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "station %d not found", stationID)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "station lookup failed")
	}

	affected, err := s.reports.AssignStationGuard(reportID, stationID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "station assignment failed")
	}
	if affected == 0 {
		return nil, s.guardFailure(reportID, "station can only be assigned while pending")
	}
	metrics.StatusTransitions.WithLabelValues(models.ReportStatusAssigned).Inc()

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	go func(report models.Report) {
		s.notifier.NotifyStationStaff(context.Background(), &report, dispatch.Message{
			Title:    "Report assigned to your station",
			Body:     "Case " + report.CaseNumber + " is now assigned to your station.",
			Type:     models.NotificationTypeStatusChanged,
			ReportID: report.ID,
		})
	}(*report)

	return report, nil
}

// AssignOfficer puts an officer of the assigned station on the case and
// lands it in under_investigation. The officer must belong to the report's
// current station; anything else is OfficerMismatch.
func (s *Service) AssignOfficer(ctx context.Context, actor usercontext.UserContext, reportID, officerID uint) (*models.Report, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	officer, err := s.users.GetByID(officerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "officer %d not found", officerID)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "officer lookup failed")
	}

	if !officer.IsPolice() {
		return nil, apperrors.E(apperrors.KindOfficerMismatch, "user %d is not a police officer", officerID)
	}
	if report.AssignedStationID == nil || officer.PoliceStationID == nil ||
		*officer.PoliceStationID != *report.AssignedStationID {
		return nil, apperrors.E(apperrors.KindOfficerMismatch,
			"officer %d does not belong to the station assigned to case %s", officerID, report.CaseNumber)
	}

	affected, err := s.reports.AssignOfficerGuard(reportID, officerID,
		[]string{models.ReportStatusAssigned, models.ReportStatusUnderInvestigation})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "officer assignment failed")
	}
	if affected == 0 {
		return nil, apperrors.E(apperrors.KindInvalidTransition,
			"officer can only be assigned while the report is assigned or under investigation")
	}
	metrics.StatusTransitions.WithLabelValues(models.ReportStatusUnderInvestigation).Inc()

	return s.Get(ctx, reportID)
}

// UpdateStatus performs a forward-only move among assigned,
// under_investigation and resolved. Backward moves and re-entry into
// pending are invalid transitions. Police only; the capability is checked
// at the route boundary.
func (s *Service) UpdateStatus(ctx context.Context, actor usercontext.UserContext, reportID uint, to string) (*models.Report, error) {
	if !models.IsValidStatus(to) {
		return nil, apperrors.E(apperrors.KindValidation, "unknown status %q", to)
	}

	// Only forward moves are reachable: the allowed current states are the
	// ones strictly before the target, minus pending (which only leaves via
	// station assignment).
	allowed := make([]string, 0, 2)
	for _, st := range models.StatusesBelow(to) {
		if st != models.ReportStatusPending {
			allowed = append(allowed, st)
		}
	}
	if len(allowed) == 0 {
		return nil, apperrors.E(apperrors.KindInvalidTransition, "cannot move a report to %q", to)
	}

	affected, err := s.reports.UpdateStatusGuard(reportID, allowed, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "status update failed")
	}
	if affected == 0 {
		return nil, s.guardFailure(reportID, "status only moves forward")
	}
	metrics.StatusTransitions.WithLabelValues(to).Inc()

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	s.notifyReporter(report, models.NotificationTypeStatusChanged,
		"Report status updated",
		"Case "+report.CaseNumber+" is now "+to+".", nil)

	return report, nil
}

// guardFailure distinguishes a missing report from a rejected transition
// after a conditional update matched no rows.
func (s *Service) guardFailure(reportID uint, msg string) error {
	if _, err := s.reports.GetByID(reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.KindNotFound, "report %d not found", reportID)
		}
		return apperrors.Wrap(apperrors.KindStorage, err, "failed to load report")
	}
	return apperrors.E(apperrors.KindInvalidTransition, "%s", msg)
}
