package repository

import (
	"time"

	"github.com/bantay-ph/bantay-api/app/models"
	"gorm.io/gorm"
)

// finderReportRepository implements the FinderReportRepository interface
type finderReportRepository struct {
	db *gorm.DB
}

// NewFinderReportRepository creates a new finder report repository instance
func NewFinderReportRepository(db *gorm.DB) FinderReportRepository {
	return &finderReportRepository{db: db}
}

// Create persists a finder report with its images
func (r *finderReportRepository) Create(finder *models.FinderReport) error {
	return r.db.Create(finder).Error
}

// GetByID retrieves a finder report with its images and references
func (r *finderReportRepository) GetByID(id uint) (*models.FinderReport, error) {
	var finder models.FinderReport
	err := r.db.Preload("Finder").Preload("Images").Preload("VerifiedBy").
		First(&finder, id).Error
	if err != nil {
		return nil, err
	}
	return &finder, nil
}

// GetByReportID retrieves all finder reports filed against a report
func (r *finderReportRepository) GetByReportID(reportID uint) ([]models.FinderReport, error) {
	var finders []models.FinderReport
	err := r.db.Preload("Finder").Preload("Images").
		Where("report_id = ?", reportID).
		Order("created_at DESC").Find(&finders).Error
	return finders, err
}

// VerifyGuard decides a pending finder report. Conditional update so a
// finder report can only be decided once.
func (r *finderReportRepository) VerifyGuard(id uint, verdict string, verifierID uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.FinderReport{}).
		Where("id = ? AND status = ?", id, models.FinderStatusPending).
		Updates(map[string]interface{}{
			"status":         verdict,
			"verified_by_id": verifierID,
			"verified_at":    at,
		})
	return res.RowsAffected, res.Error
}
