package reportstore

import (
	"context"
	"io"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/blobstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
	"github.com/bantay-ph/bantay-api/internal/pkg/geocode"
)

// In-memory repository fakes. The report fake mirrors the conditional-update
// guard semantics of the real repository so transition races and the
// consent-once rule behave the same way under test.

type fakeReportRepo struct {
	mu      sync.Mutex
	nextID  uint
	reports map[uint]*models.Report

	consents []models.ConsentChange
	events   []models.BroadcastEvent
	counts   []repository.AreaMonthCount
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{nextID: 1, reports: make(map[uint]*models.Report)}
}

func (f *fakeReportRepo) Create(report *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report.ID = f.nextID
	f.nextID++
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	for i := range report.PersonsInvolved {
		report.PersonsInvolved[i].ID = uint(i + 1)
		report.PersonsInvolved[i].ReportID = report.ID
	}
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeReportRepo) GetByID(id uint) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *report
	return &clone, nil
}

func (f *fakeReportRepo) GetByCaseNumber(caseNumber string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, report := range f.reports {
		if report.CaseNumber == caseNumber {
			clone := *report
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReportRepo) List(filter repository.ReportFilter, offset, limit int) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for _, report := range f.reports {
		out = append(out, *report)
	}
	return out, nil
}

func (f *fakeReportRepo) Count(filter repository.ReportFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.reports)), nil
}

func (f *fakeReportRepo) UpdateStatusGuard(id uint, allowedCurrent []string, to string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return 0, nil
	}
	for _, st := range allowedCurrent {
		if report.Status == st {
			report.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeReportRepo) AssignStationGuard(id uint, stationID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok || report.Status != models.ReportStatusPending {
		return 0, nil
	}
	report.AssignedStationID = &stationID
	report.Status = models.ReportStatusAssigned
	return 1, nil
}

func (f *fakeReportRepo) AssignOfficerGuard(id uint, officerID uint, allowedCurrent []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return 0, nil
	}
	for _, st := range allowedCurrent {
		if report.Status == st {
			report.AssignedOfficerID = &officerID
			report.Status = models.ReportStatusUnderInvestigation
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeReportRepo) UpdateOwnerEditableGuard(id uint, edit repository.OwnerEdit) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok || report.Status != models.ReportStatusPending {
		return 0, nil
	}
	report.Type = edit.Type
	report.Details = edit.Details
	report.Street = edit.Street
	report.Barangay = edit.Barangay
	report.City = edit.City
	report.ZipCode = edit.ZipCode
	report.Longitude = edit.Longitude
	report.Latitude = edit.Latitude
	report.BroadcastConsent = edit.BroadcastConsent
	return 1, nil
}

func (f *fakeReportRepo) UpdateConsentPendingGuard(id uint, consent bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok || report.Status != models.ReportStatusPending {
		return 0, nil
	}
	report.BroadcastConsent = consent
	return 1, nil
}

func (f *fakeReportRepo) UpdateConsentOnceGuard(id uint, consent bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok || report.HasUpdatedConsent {
		return 0, nil
	}
	report.BroadcastConsent = consent
	report.HasUpdatedConsent = true
	return 1, nil
}

func (f *fakeReportRepo) SetPublished(id uint, published bool, channels string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report, ok := f.reports[id]; ok {
		report.IsPublished = published
		report.PublishChannels = channels
		report.PublishScheduleAt = nil
	}
	return nil
}

func (f *fakeReportRepo) SetSchedule(id uint, at time.Time, channels string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report, ok := f.reports[id]; ok {
		report.PublishScheduleAt = &at
		report.PublishChannels = channels
	}
	return nil
}

func (f *fakeReportRepo) ClearSchedule(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report, ok := f.reports[id]; ok {
		report.PublishScheduleAt = nil
	}
	return nil
}

func (f *fakeReportRepo) DuePublishSchedules(now time.Time) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []models.Report
	for _, report := range f.reports {
		if report.PublishScheduleAt != nil && !report.PublishScheduleAt.After(now) && !report.IsPublished {
			due = append(due, *report)
		}
	}
	return due, nil
}

func (f *fakeReportRepo) AppendConsentChange(change *models.ConsentChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consents = append(f.consents, *change)
	return nil
}

func (f *fakeReportRepo) AppendBroadcastEvent(event *models.BroadcastEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeReportRepo) MonthlyAreaCounts(filter repository.ReportFilter) ([]repository.AreaMonthCount, error) {
	return f.counts, nil
}

func (f *fakeReportRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.reports, id)
	return nil
}

type fakeStationRepo struct {
	stations []models.PoliceStation
}

func (f *fakeStationRepo) Create(s *models.PoliceStation) error { return nil }
func (f *fakeStationRepo) Update(s *models.PoliceStation) error { return nil }
func (f *fakeStationRepo) Delete(id uint) error                 { return nil }

func (f *fakeStationRepo) GetByID(id uint) (*models.PoliceStation, error) {
	for i := range f.stations {
		if f.stations[i].ID == id {
			return &f.stations[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStationRepo) GetAll() ([]models.PoliceStation, error) {
	return f.stations, nil
}

func (f *fakeStationRepo) GetByCity(city string) ([]models.PoliceStation, error) {
	return f.stations, nil
}

func (f *fakeStationRepo) Count() (int64, error) {
	return int64(len(f.stations)), nil
}

type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) Create(u *models.User) error { return nil }
func (f *fakeUserRepo) Update(u *models.User) error { return nil }

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetStationStaff(stationID uint) ([]models.User, error) {
	var staff []models.User
	for _, u := range f.users {
		if u.IsPolice() && u.PoliceStationID != nil && *u.PoliceStationID == stationID {
			staff = append(staff, u)
		}
	}
	return staff, nil
}

func (f *fakeUserRepo) GetBroadcastAudience() ([]models.User, error) {
	var audience []models.User
	for _, u := range f.users {
		if u.Role == models.ROLE_USER && u.IsActive() {
			audience = append(audience, u)
		}
	}
	return audience, nil
}

func (f *fakeUserRepo) List(offset, limit int) ([]models.User, error) {
	return f.users, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (f *fakeNotificationRepo) Create(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uint(len(f.notifications) + 1)
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) CreateBatch(batch []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, batch...)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(userID uint, offset, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(id, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID && !f.notifications[i].IsRead {
			f.notifications[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

type fakeFinderRepo struct {
	mu      sync.Mutex
	nextID  uint
	finders map[uint]*models.FinderReport
}

func newFakeFinderRepo() *fakeFinderRepo {
	return &fakeFinderRepo{nextID: 1, finders: make(map[uint]*models.FinderReport)}
}

func (f *fakeFinderRepo) Create(finder *models.FinderReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	finder.ID = f.nextID
	f.nextID++
	clone := *finder
	f.finders[finder.ID] = &clone
	return nil
}

func (f *fakeFinderRepo) GetByID(id uint) (*models.FinderReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	finder, ok := f.finders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *finder
	return &clone, nil
}

func (f *fakeFinderRepo) GetByReportID(reportID uint) ([]models.FinderReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FinderReport
	for _, finder := range f.finders {
		if finder.ReportID == reportID {
			out = append(out, *finder)
		}
	}
	return out, nil
}

func (f *fakeFinderRepo) VerifyGuard(id uint, verdict string, verifierID uint, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	finder, ok := f.finders[id]
	if !ok || finder.Status != models.FinderStatusPending {
		return 0, nil
	}
	finder.Status = verdict
	finder.VerifiedByID = &verifierID
	finder.VerifiedAt = &at
	return 1, nil
}

type fakeTransferredRepo struct {
	mu       sync.Mutex
	archived []models.TransferredReport
}

func (f *fakeTransferredRepo) Create(archived *models.TransferredReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	archived.ID = uint(len(f.archived) + 1)
	f.archived = append(f.archived, *archived)
	return nil
}

func (f *fakeTransferredRepo) GetByCaseNumber(caseNumber string) (*models.TransferredReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.archived {
		if f.archived[i].CaseNumber == caseNumber {
			return &f.archived[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTransferredRepo) List(offset, limit int) ([]models.TransferredReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.archived, nil
}

type fakeGeocoder struct {
	lon, lat float64
	err      error
}

func (f *fakeGeocoder) Resolve(ctx context.Context, addr geocode.Address) (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.lon, f.lat, nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeBlobStore) Upload(ctx context.Context, body io.Reader, folder, filename string) (*blobstore.UploadResult, error) {
	return &blobstore.UploadResult{URL: "https://cdn.test/" + filename, Key: folder + "/" + filename}, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []dispatch.Message
}

func (f *fakeNotifier) NotifyStationStaff(ctx context.Context, report *models.Report, msg dispatch.Message) dispatch.Results {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	return dispatch.Results{dispatch.ChannelInApp: nil}
}
