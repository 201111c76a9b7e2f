package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
)

// stubReportRepo holds a handful of reports in memory and records history
// appends. Only the methods the scheduler touches carry real behavior.
type stubReportRepo struct {
	mu      sync.Mutex
	reports map[uint]*models.Report
	events  []models.BroadcastEvent
}

func newStubReportRepo(reports ...*models.Report) *stubReportRepo {
	repo := &stubReportRepo{reports: make(map[uint]*models.Report)}
	for _, r := range reports {
		repo.reports[r.ID] = r
	}
	return repo
}

func (s *stubReportRepo) Create(r *models.Report) error { return nil }

func (s *stubReportRepo) GetByID(id uint) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReportRepo) GetByCaseNumber(caseNumber string) (*models.Report, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReportRepo) List(filter repository.ReportFilter, offset, limit int) ([]models.Report, error) {
	return nil, nil
}

func (s *stubReportRepo) Count(filter repository.ReportFilter) (int64, error) { return 0, nil }

func (s *stubReportRepo) UpdateStatusGuard(id uint, allowed []string, to string) (int64, error) {
	return 0, nil
}
func (s *stubReportRepo) AssignStationGuard(id, stationID uint) (int64, error) { return 0, nil }
func (s *stubReportRepo) AssignOfficerGuard(id, officerID uint, allowed []string) (int64, error) {
	return 0, nil
}
func (s *stubReportRepo) UpdateOwnerEditableGuard(id uint, edit repository.OwnerEdit) (int64, error) {
	return 0, nil
}
func (s *stubReportRepo) UpdateConsentPendingGuard(id uint, consent bool) (int64, error) {
	return 0, nil
}
func (s *stubReportRepo) UpdateConsentOnceGuard(id uint, consent bool) (int64, error) {
	return 0, nil
}

func (s *stubReportRepo) SetPublished(id uint, published bool, channels string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok {
		r.IsPublished = published
		r.PublishChannels = channels
	}
	return nil
}

func (s *stubReportRepo) SetSchedule(id uint, at time.Time, channels string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok {
		r.PublishScheduleAt = &at
		r.PublishChannels = channels
	}
	return nil
}

func (s *stubReportRepo) ClearSchedule(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok {
		r.PublishScheduleAt = nil
	}
	return nil
}

func (s *stubReportRepo) DuePublishSchedules(now time.Time) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.Report
	for _, r := range s.reports {
		if r.PublishScheduleAt != nil && !r.PublishScheduleAt.After(now) && !r.IsPublished {
			due = append(due, *r)
		}
	}
	return due, nil
}

func (s *stubReportRepo) AppendConsentChange(c *models.ConsentChange) error { return nil }

func (s *stubReportRepo) AppendBroadcastEvent(e *models.BroadcastEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *stubReportRepo) MonthlyAreaCounts(filter repository.ReportFilter) ([]repository.AreaMonthCount, error) {
	return nil, nil
}

func (s *stubReportRepo) Delete(id uint) error { return nil }

// stubBroadcaster records the requested channels and fails the ones listed
// in failing.
type stubBroadcaster struct {
	mu      sync.Mutex
	calls   [][]string
	failing map[string]error
}

func (s *stubBroadcaster) Broadcast(ctx context.Context, report *models.Report, channelNames []string, msg dispatch.Message) dispatch.Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, channelNames)
	results := make(dispatch.Results, len(channelNames))
	for _, name := range channelNames {
		results[name] = s.failing[name]
	}
	return results
}

func consentedReport(id uint) *models.Report {
	return &models.Report{
		ID:               id,
		CaseNumber:       "case-42",
		Type:             models.ReportTypeMissing,
		ReporterID:       10,
		Barangay:         "Ermita",
		City:             "Manila",
		Status:           models.ReportStatusAssigned,
		BroadcastConsent: true,
		PersonsInvolved: []models.PersonInvolved{{
			Name:     "Juan Dela Cruz",
			PhotoURL: "https://cdn.test/persons/juan.jpg",
		}},
	}
}

func TestPublishImmediately(t *testing.T) {
	repo := newStubReportRepo(consentedReport(1))
	caster := &stubBroadcaster{}
	sched := NewScheduler(repo, caster)

	result, err := sched.Publish(context.Background(), 99, 1, []string{dispatch.ChannelPush, dispatch.ChannelFacebook}, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomePublished, result.Outcome)
	assert.Empty(t, result.Failed)
	require.Len(t, caster.calls, 1)
	assert.Equal(t, []string{"push", "facebook"}, caster.calls[0])

	report, _ := repo.GetByID(1)
	assert.True(t, report.IsPublished)

	require.Len(t, repo.events, 1)
	assert.Equal(t, models.BroadcastActionPublished, repo.events[0].Action)
	assert.Equal(t, "push,facebook", repo.events[0].Method)
	assert.Equal(t, uint(99), repo.events[0].ActorID)
}

func TestPublishToleratesPartialFailure(t *testing.T) {
	repo := newStubReportRepo(consentedReport(1))
	caster := &stubBroadcaster{failing: map[string]error{
		dispatch.ChannelEmail: errors.New("smtp unavailable"),
	}}
	sched := NewScheduler(repo, caster)

	result, err := sched.Publish(context.Background(), 99, 1, []string{dispatch.ChannelPush, dispatch.ChannelEmail}, nil)
	require.NoError(t, err, "partial channel failure never fails the publish")

	assert.Equal(t, OutcomePublished, result.Outcome)
	assert.Equal(t, []string{"email"}, result.Failed)
	assert.NoError(t, result.Results[dispatch.ChannelPush])
	assert.Error(t, result.Results[dispatch.ChannelEmail])

	report, _ := repo.GetByID(1)
	assert.True(t, report.IsPublished)

	require.Len(t, repo.events, 1)
	assert.Contains(t, repo.events[0].DeliveryNote, "email")
}

func TestPublishConsentGate(t *testing.T) {
	report := consentedReport(1)
	report.BroadcastConsent = false
	repo := newStubReportRepo(report)
	caster := &stubBroadcaster{}
	sched := NewScheduler(repo, caster)

	_, err := sched.Publish(context.Background(), 99, 1, []string{dispatch.ChannelPush}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConsentRequired, apperrors.KindOf(err))

	assert.Empty(t, caster.calls, "nothing may be dispatched without consent")
	assert.Empty(t, repo.events, "a refused publish leaves no history entry")
	got, _ := repo.GetByID(1)
	assert.False(t, got.IsPublished)
}

func TestPublishRejectsEmptySelection(t *testing.T) {
	sched := NewScheduler(newStubReportRepo(consentedReport(1)), &stubBroadcaster{})

	_, err := sched.Publish(context.Background(), 99, 1, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNoChannelSelected, apperrors.KindOf(err))
}

func TestPublishRejectsUnknownChannel(t *testing.T) {
	sched := NewScheduler(newStubReportRepo(consentedReport(1)), &stubBroadcaster{})

	_, err := sched.Publish(context.Background(), 99, 1, []string{"carrier_pigeon"}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPublishDefersFutureSchedule(t *testing.T) {
	repo := newStubReportRepo(consentedReport(1))
	caster := &stubBroadcaster{}
	sched := NewScheduler(repo, caster)

	at := time.Now().Add(2 * time.Hour)
	result, err := sched.Publish(context.Background(), 99, 1, []string{dispatch.ChannelPush}, &at)
	require.NoError(t, err)

	assert.Equal(t, OutcomeScheduled, result.Outcome)
	assert.Empty(t, caster.calls, "a deferred publish dispatches nothing")
	assert.Empty(t, repo.events, "history is written when the fan-out runs, not at scheduling")

	report, _ := repo.GetByID(1)
	require.NotNil(t, report.PublishScheduleAt)
	assert.Equal(t, "push", report.PublishChannels)
	assert.False(t, report.IsPublished)
}

func TestPublishPastScheduleRunsImmediately(t *testing.T) {
	repo := newStubReportRepo(consentedReport(1))
	caster := &stubBroadcaster{}
	sched := NewScheduler(repo, caster)

	at := time.Now().Add(-time.Minute)
	result, err := sched.Publish(context.Background(), 99, 1, []string{dispatch.ChannelPush}, &at)
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, result.Outcome)
	assert.Len(t, caster.calls, 1)
}

func TestUnpublish(t *testing.T) {
	report := consentedReport(1)
	report.IsPublished = true
	report.PublishChannels = "push,facebook"
	repo := newStubReportRepo(report)
	sched := NewScheduler(repo, &stubBroadcaster{})

	require.NoError(t, sched.Unpublish(context.Background(), 99, 1))

	got, _ := repo.GetByID(1)
	assert.False(t, got.IsPublished)
	require.Len(t, repo.events, 1)
	assert.Equal(t, models.BroadcastActionUnpublished, repo.events[0].Action)

	err := sched.Unpublish(context.Background(), 99, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

// An immediate publish never goes through SetSchedule, so the channel list
// must be stored at publish time for the unpublish entry to name it.
func TestUnpublishRecordsChannelsAfterImmediatePublish(t *testing.T) {
	repo := newStubReportRepo(consentedReport(1))
	sched := NewScheduler(repo, &stubBroadcaster{})

	_, err := sched.Publish(context.Background(), 99, 1,
		[]string{dispatch.ChannelPush, dispatch.ChannelFacebook}, nil)
	require.NoError(t, err)

	published, _ := repo.GetByID(1)
	assert.Equal(t, "push,facebook", published.PublishChannels)

	require.NoError(t, sched.Unpublish(context.Background(), 99, 1))
	require.Len(t, repo.events, 2)
	assert.Equal(t, models.BroadcastActionUnpublished, repo.events[1].Action)
	assert.Equal(t, "push,facebook", repo.events[1].Method)
}

func TestSweepPublishesDueSchedules(t *testing.T) {
	due := consentedReport(1)
	past := time.Now().Add(-time.Minute)
	due.PublishScheduleAt = &past
	due.PublishChannels = "push,email"

	notDue := consentedReport(2)
	future := time.Now().Add(time.Hour)
	notDue.PublishScheduleAt = &future
	notDue.PublishChannels = "push"

	repo := newStubReportRepo(due, notDue)
	caster := &stubBroadcaster{}
	sweeper := &Sweeper{scheduler: NewScheduler(repo, caster), interval: time.Hour}

	sweeper.Sweep(context.Background())

	require.Len(t, caster.calls, 1, "only the due schedule publishes")
	assert.Equal(t, []string{"push", "email"}, caster.calls[0])

	published, _ := repo.GetByID(1)
	assert.True(t, published.IsPublished)
	assert.Nil(t, published.PublishScheduleAt)

	waiting, _ := repo.GetByID(2)
	assert.False(t, waiting.IsPublished)
	require.NotNil(t, waiting.PublishScheduleAt)
}

func TestSweepDropsWithdrawnConsent(t *testing.T) {
	due := consentedReport(1)
	due.BroadcastConsent = false
	past := time.Now().Add(-time.Minute)
	due.PublishScheduleAt = &past
	due.PublishChannels = "push"

	repo := newStubReportRepo(due)
	caster := &stubBroadcaster{}
	sweeper := &Sweeper{scheduler: NewScheduler(repo, caster), interval: time.Hour}

	sweeper.Sweep(context.Background())

	assert.Empty(t, caster.calls)
	got, _ := repo.GetByID(1)
	assert.False(t, got.IsPublished)
	assert.Nil(t, got.PublishScheduleAt, "the dead schedule is cleared")
}
