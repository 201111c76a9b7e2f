package repository

import (
	"github.com/bantay-ph/bantay-api/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetStationStaff returns active officers and the police admin assigned to
// the station. Direct police_station_id equality, not a jurisdiction query.
func (r *userRepository) GetStationStaff(stationID uint) ([]models.User, error) {
	var staff []models.User
	err := r.db.
		Where("police_station_id = ? AND role IN ? AND status = ?",
			stationID,
			[]string{models.ROLE_OFFICER, models.ROLE_POLICE_ADMIN},
			models.STATUS_ACTIVE).
		Find(&staff).Error
	return staff, err
}

// GetBroadcastAudience returns active citizens reachable by push or email.
func (r *userRepository) GetBroadcastAudience() ([]models.User, error) {
	var audience []models.User
	err := r.db.
		Where("role = ? AND status = ? AND (device_token <> '' OR email <> '')",
			models.ROLE_USER, models.STATUS_ACTIVE).
		Find(&audience).Error
	return audience, err
}

// Update updates an existing user
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}
