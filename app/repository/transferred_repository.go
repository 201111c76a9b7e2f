package repository

import (
	"github.com/bantay-ph/bantay-api/app/models"
	"gorm.io/gorm"
)

// transferredReportRepository implements the TransferredReportRepository
// interface. The archive is append-only; there is deliberately no Update or
// Delete.
type transferredReportRepository struct {
	db *gorm.DB
}

// NewTransferredReportRepository creates a new transferred report repository instance
func NewTransferredReportRepository(db *gorm.DB) TransferredReportRepository {
	return &transferredReportRepository{db: db}
}

// Create writes an archival snapshot once
func (r *transferredReportRepository) Create(archived *models.TransferredReport) error {
	return r.db.Create(archived).Error
}

// GetByCaseNumber retrieves a snapshot by the original case number
func (r *transferredReportRepository) GetByCaseNumber(caseNumber string) (*models.TransferredReport, error) {
	var archived models.TransferredReport
	err := r.db.Where("case_number = ?", caseNumber).First(&archived).Error
	if err != nil {
		return nil, err
	}
	return &archived, nil
}

// List retrieves a paginated list of snapshots, newest first
func (r *transferredReportRepository) List(offset, limit int) ([]models.TransferredReport, error) {
	var archived []models.TransferredReport
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&archived).Error
	return archived, err
}
