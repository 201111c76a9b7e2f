package models

import (
	"time"

	"gorm.io/gorm"
)

// PoliceStation is a policing jurisdiction. Reports are assigned to exactly
// one station at a time, chosen by proximity unless the reporter picks one.
type PoliceStation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=3,max=150"`
	City      string         `gorm:"type:varchar(100);index" json:"city" validate:"required"`
	Longitude float64        `gorm:"not null" json:"longitude" validate:"min=-180,max=180"`
	Latitude  float64        `gorm:"not null" json:"latitude" validate:"min=-90,max=90"`
	Street    string         `gorm:"type:varchar(200)" json:"street"`
	Barangay  string         `gorm:"type:varchar(100)" json:"barangay"`
	ZipCode   string         `gorm:"type:varchar(10)" json:"zip_code"`
	ImageURL  string         `gorm:"type:varchar(255);default:null" json:"image_url,omitempty"`
	ImageKey  string         `gorm:"type:varchar(255);default:null" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
