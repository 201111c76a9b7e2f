package repository

import (
	"time"

	"github.com/bantay-ph/bantay-api/app/models"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create persists a report together with its owned sub-records in one
// transaction. GORM inserts the PersonsInvolved children with the parent.
func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByID retrieves a report with its owned records and references
func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.Preload("Reporter").Preload("AssignedStation").Preload("AssignedOfficer").
		Preload("PersonsInvolved").Preload("ConsentChanges").Preload("BroadcastEvents").
		First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByCaseNumber retrieves a report by its public case number
func (r *reportRepository) GetByCaseNumber(caseNumber string) (*models.Report, error) {
	var report models.Report
	err := r.db.Preload("AssignedStation").Preload("PersonsInvolved").
		Where("case_number = ?", caseNumber).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) applyFilter(q *gorm.DB, filter ReportFilter) *gorm.DB {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Barangay != "" {
		q = q.Where("barangay = ?", filter.Barangay)
	}
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if filter.ReporterID != 0 {
		q = q.Where("reporter_id = ?", filter.ReporterID)
	}
	if filter.StationID != 0 {
		q = q.Where("assigned_station_id = ?", filter.StationID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	return q
}

// List retrieves a filtered, paginated list of reports
func (r *reportRepository) List(filter ReportFilter, offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	q := r.applyFilter(r.db.Model(&models.Report{}), filter)
	err := q.Preload("AssignedStation").Preload("PersonsInvolved").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}

// Count returns the number of reports matching the filter
func (r *reportRepository) Count(filter ReportFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.Model(&models.Report{}), filter).Count(&count).Error
	return count, err
}

// UpdateStatusGuard moves a report to a new status only if its current
// status is in allowedCurrent. Single conditional update; the caller treats
// zero affected rows as an invalid transition or a lost race.
func (r *reportRepository) UpdateStatusGuard(id uint, allowedCurrent []string, to string) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status IN ?", id, allowedCurrent).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// AssignStationGuard assigns a station and moves pending to assigned in one
// conditional update.
func (r *reportRepository) AssignStationGuard(id uint, stationID uint) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"assigned_station_id": stationID,
			"status":              models.ReportStatusAssigned,
		})
	return res.RowsAffected, res.Error
}

// AssignOfficerGuard assigns an officer and lands the report in
// under_investigation. The station match is checked by the service before
// calling; the status guard is enforced here atomically.
func (r *reportRepository) AssignOfficerGuard(id uint, officerID uint, allowedCurrent []string) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status IN ?", id, allowedCurrent).
		Updates(map[string]interface{}{
			"assigned_officer_id": officerID,
			"status":              models.ReportStatusUnderInvestigation,
		})
	return res.RowsAffected, res.Error
}

// UpdateOwnerEditableGuard applies a full owner edit while the report is
// still pending. Zero affected rows means the report has left pending.
func (r *reportRepository) UpdateOwnerEditableGuard(id uint, edit OwnerEdit) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"type":              edit.Type,
			"details":           edit.Details,
			"street":            edit.Street,
			"barangay":          edit.Barangay,
			"city":              edit.City,
			"zip_code":          edit.ZipCode,
			"longitude":         edit.Longitude,
			"latitude":          edit.Latitude,
			"broadcast_consent": edit.BroadcastConsent,
		})
	return res.RowsAffected, res.Error
}

// UpdateConsentPendingGuard flips consent while the report is pending.
func (r *reportRepository) UpdateConsentPendingGuard(id uint, consent bool) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Update("broadcast_consent", consent)
	return res.RowsAffected, res.Error
}

// UpdateConsentOnceGuard flips consent after pending, at most once per
// report. The has_updated_consent flag is consumed in the same statement so
// two concurrent calls cannot both succeed.
func (r *reportRepository) UpdateConsentOnceGuard(id uint, consent bool) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status <> ? AND has_updated_consent = ?", id, models.ReportStatusPending, false).
		Updates(map[string]interface{}{
			"broadcast_consent":   consent,
			"has_updated_consent": true,
		})
	return res.RowsAffected, res.Error
}

// SetPublished mirrors whether the report is currently live on public
// channels and records which channels the publish used, so later history
// entries can name them.
func (r *reportRepository) SetPublished(id uint, published bool, channels string) error {
	return r.db.Model(&models.Report{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_published":     published,
			"publish_channels": channels,
		}).Error
}

// SetSchedule stores a deferred publish time and channel selection
func (r *reportRepository) SetSchedule(id uint, at time.Time, channels string) error {
	return r.db.Model(&models.Report{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"publish_schedule_at": at,
			"publish_channels":    channels,
		}).Error
}

// ClearSchedule removes a deferred publish marker. The channel list stays
// behind as the record of the last selection.
func (r *reportRepository) ClearSchedule(id uint) error {
	return r.db.Model(&models.Report{}).Where("id = ?", id).
		Update("publish_schedule_at", nil).Error
}

// DuePublishSchedules returns reports whose scheduled publish time has passed
func (r *reportRepository) DuePublishSchedules(now time.Time) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Preload("PersonsInvolved").
		Where("publish_schedule_at IS NOT NULL AND publish_schedule_at <= ?", now).
		Find(&reports).Error
	return reports, err
}

// AppendConsentChange appends to the consent history. Append-only.
func (r *reportRepository) AppendConsentChange(change *models.ConsentChange) error {
	return r.db.Create(change).Error
}

// AppendBroadcastEvent appends to the broadcast history. Append-only.
func (r *reportRepository) AppendBroadcastEvent(event *models.BroadcastEvent) error {
	return r.db.Create(event).Error
}

// MonthlyAreaCounts aggregates reports by barangay, month and type for
// hotspot analytics.
func (r *reportRepository) MonthlyAreaCounts(filter ReportFilter) ([]AreaMonthCount, error) {
	var rows []AreaMonthCount
	q := r.applyFilter(r.db.Model(&models.Report{}), filter)
	err := q.Select("barangay, city, DATE_FORMAT(created_at, '%Y-%m') AS month, type, COUNT(*) AS count").
		Group("barangay, city, month, type").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

// Delete hard-deletes a report and its owned records in a transaction.
// Blob cleanup happens in the service before this is called.
func (r *reportRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("report_id = ?", id).Delete(&models.PersonInvolved{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ConsentChange{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.BroadcastEvent{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Report{}, id).Error
	})
}
