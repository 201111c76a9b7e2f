package repository

import (
	"github.com/bantay-ph/bantay-api/app/models"
	"gorm.io/gorm"
)

// stationRepository implements the StationRepository interface
type stationRepository struct {
	db *gorm.DB
}

// NewStationRepository creates a new station repository instance
func NewStationRepository(db *gorm.DB) StationRepository {
	return &stationRepository{db: db}
}

// Create creates a new police station
func (r *stationRepository) Create(station *models.PoliceStation) error {
	return r.db.Create(station).Error
}

// GetByID retrieves a station by its ID
func (r *stationRepository) GetByID(id uint) (*models.PoliceStation, error) {
	var station models.PoliceStation
	err := r.db.First(&station, id).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// GetAll retrieves every registered station. The station count is small
// enough that the locator scans them in memory.
func (r *stationRepository) GetAll() ([]models.PoliceStation, error) {
	var stations []models.PoliceStation
	err := r.db.Order("id ASC").Find(&stations).Error
	return stations, err
}

// GetByCity retrieves the stations of one city
func (r *stationRepository) GetByCity(city string) ([]models.PoliceStation, error) {
	var stations []models.PoliceStation
	err := r.db.Where("city = ?", city).Order("id ASC").Find(&stations).Error
	return stations, err
}

// Update updates an existing station
func (r *stationRepository) Update(station *models.PoliceStation) error {
	return r.db.Save(station).Error
}

// Delete soft deletes a station
func (r *stationRepository) Delete(id uint) error {
	return r.db.Delete(&models.PoliceStation{}, id).Error
}

// Count returns the total number of stations
func (r *stationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.PoliceStation{}).Count(&count).Error
	return count, err
}
