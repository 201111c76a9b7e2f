package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ROLE_USER         = "user"
	ROLE_OFFICER      = "police_officer"
	ROLE_POLICE_ADMIN = "police_admin"
	ROLE_CITY_ADMIN   = "city_admin"
	ROLE_SUPER_ADMIN  = "super_admin"

	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email           string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Role            string         `gorm:"type:varchar(50);default:'user';index" json:"role" validate:"oneof=user police_officer police_admin city_admin super_admin"`
	Status          string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive"`
	PoliceStationID *uint          `gorm:"index" json:"police_station_id,omitempty"`
	PoliceStation   *PoliceStation `gorm:"foreignKey:PoliceStationID" json:"police_station,omitempty"`
	DeviceToken     string         `gorm:"type:varchar(255);default:null" json:"-"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// IsPolice reports whether the user holds any police role.
func (u *User) IsPolice() bool {
	return u.Role == ROLE_OFFICER || u.Role == ROLE_POLICE_ADMIN
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}
