// Package broadcast decides whether a publish request executes immediately
// or is deferred, runs the public fan-out, and records every publish and
// unpublish in the report's broadcast history. A periodic sweeper picks up
// schedules that have come due.
package broadcast

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
	"github.com/bantay-ph/bantay-api/internal/pkg/metrics"
)

// Outcome of a publish request.
type Outcome string

const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomePublished Outcome = "published"

	// triggerManual and triggerSweep label the broadcast metrics.
	triggerManual = "manual"
	triggerSweep  = "sweep"
)

// Broadcaster is the slice of the dispatcher the scheduler needs.
type Broadcaster interface {
	Broadcast(ctx context.Context, report *models.Report, channelNames []string, msg dispatch.Message) dispatch.Results
}

// Scheduler runs publish and unpublish actions against reports.
type Scheduler struct {
	reports    repository.ReportRepository
	dispatcher Broadcaster
	now        func() time.Time
}

func NewScheduler(reports repository.ReportRepository, dispatcher Broadcaster) *Scheduler {
	return &Scheduler{
		reports:    reports,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// PublishResult is what a publish request produced: the outcome, and the
// per-channel results when the fan-out actually ran.
type PublishResult struct {
	Outcome     Outcome          `json:"outcome"`
	ScheduledAt *time.Time       `json:"scheduled_at,omitempty"`
	Channels    []string         `json:"channels"`
	Failed      []string         `json:"failed_channels,omitempty"`
	Results     dispatch.Results `json:"-"`
}

// Publish broadcasts a report over the selected public channels, or stores a
// schedule when scheduledAt lies in the future. Consent gates the whole
// operation: without it nothing is dispatched, nothing is scheduled and no
// history entry is written. Partial channel failure still counts as
// published; the failed channels land in the history entry's delivery note.
func (s *Scheduler) Publish(ctx context.Context, actorID uint, reportID uint, channels []string, scheduledAt *time.Time) (*PublishResult, error) {
	if len(channels) == 0 {
		return nil, apperrors.E(apperrors.KindNoChannelSelected, "select at least one broadcast channel")
	}
	for _, name := range channels {
		if !dispatch.IsBroadcastChannel(name) {
			return nil, apperrors.E(apperrors.KindValidation,
				"unknown channel %q, allowed: %s", name, strings.Join(dispatch.BroadcastChannels, ", "))
		}
	}

	report, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}
	if !report.BroadcastConsent {
		return nil, apperrors.E(apperrors.KindConsentRequired,
			"the reporter has not consented to broadcasting case %s", report.CaseNumber)
	}

	if scheduledAt != nil && scheduledAt.After(s.now()) {
		if err := s.reports.SetSchedule(reportID, *scheduledAt, strings.Join(channels, ",")); err != nil {
			return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to store publish schedule")
		}
		log.Infof("[Broadcast] case %s scheduled for %s on %s",
			report.CaseNumber, scheduledAt.Format(time.RFC3339), strings.Join(channels, ","))
		return &PublishResult{Outcome: OutcomeScheduled, ScheduledAt: scheduledAt, Channels: channels}, nil
	}

	return s.publishNow(ctx, actorID, report, channels, triggerManual)
}

// publishNow runs the fan-out and records the outcome. The history entry is
// appended after the dispatch attempt whether or not every channel
// succeeded.
func (s *Scheduler) publishNow(ctx context.Context, actorID uint, report *models.Report, channels []string, trigger string) (*PublishResult, error) {
	msg := dispatch.Message{
		Title:    "Public alert: " + strings.ToUpper(report.Type) + " in " + report.City,
		Body:     broadcastBody(report),
		Type:     models.NotificationTypeBroadcast,
		ReportID: report.ID,
	}
	if len(report.PersonsInvolved) > 0 {
		msg.ImageURL = report.PersonsInvolved[0].PhotoURL
	}

	results := s.dispatcher.Broadcast(ctx, report, channels, msg)
	failed := results.Failed()

	if err := s.reports.SetPublished(report.ID, true, strings.Join(channels, ",")); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to mark report published")
	}

	note := ""
	if len(failed) > 0 {
		note = "failed channels: " + strings.Join(failed, ",")
	}
	if err := s.reports.AppendBroadcastEvent(&models.BroadcastEvent{
		ReportID:     report.ID,
		Action:       models.BroadcastActionPublished,
		Method:       strings.Join(channels, ","),
		ActorID:      actorID,
		DeliveryNote: note,
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to append broadcast history")
	}
	metrics.BroadcastsPublished.WithLabelValues(trigger).Inc()

	if len(failed) > 0 {
		log.Warnf("[Broadcast] case %s published with failed channels: %s",
			report.CaseNumber, strings.Join(failed, ","))
	} else {
		log.Infof("[Broadcast] case %s published on %s", report.CaseNumber, strings.Join(channels, ","))
	}

	return &PublishResult{
		Outcome:  OutcomePublished,
		Channels: channels,
		Failed:   failed,
		Results:  results,
	}, nil
}

// Unpublish takes the report off the public channels and clears any pending
// schedule. Recorded in the history like a publish.
func (s *Scheduler) Unpublish(ctx context.Context, actorID uint, reportID uint) error {
	report, err := s.getReport(reportID)
	if err != nil {
		return err
	}
	if !report.IsPublished && report.PublishScheduleAt == nil {
		return apperrors.E(apperrors.KindValidation, "case %s is not published or scheduled", report.CaseNumber)
	}

	if err := s.reports.ClearSchedule(reportID); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "failed to clear publish schedule")
	}
	if report.IsPublished {
		if err := s.reports.SetPublished(reportID, false, report.PublishChannels); err != nil {
			return apperrors.Wrap(apperrors.KindStorage, err, "failed to mark report unpublished")
		}
		if err := s.reports.AppendBroadcastEvent(&models.BroadcastEvent{
			ReportID: reportID,
			Action:   models.BroadcastActionUnpublished,
			Method:   report.PublishChannels,
			ActorID:  actorID,
		}); err != nil {
			return apperrors.Wrap(apperrors.KindStorage, err, "failed to append broadcast history")
		}
	}

	log.Infof("[Broadcast] case %s unpublished", report.CaseNumber)
	return nil
}

func (s *Scheduler) getReport(reportID uint) (*models.Report, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "report %d not found", reportID)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "failed to load report")
	}
	return report, nil
}

func broadcastBody(report *models.Report) string {
	var b strings.Builder
	b.WriteString("Case " + report.CaseNumber + ": ")
	for i, person := range report.PersonsInvolved {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(person.Name)
	}
	b.WriteString(" last seen near " + report.Barangay + ", " + report.City + ".")
	b.WriteString(" If you have any information, contact your nearest police station.")
	return b.String()
}
