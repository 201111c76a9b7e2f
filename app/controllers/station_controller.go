package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
)

type stationInput struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Street    string  `json:"street"`
	Barangay  string  `json:"barangay"`
	ZipCode   string  `json:"zip_code"`
	ImageURL  string  `json:"image_url"`
	ImageKey  string  `json:"image_key"`
}

func (in stationInput) validate() error {
	if in.Name == "" || in.City == "" {
		return apperrors.E(apperrors.KindValidation, "name and city are required")
	}
	if in.Longitude == 0 && in.Latitude == 0 {
		return apperrors.E(apperrors.KindValidation, "station coordinates are required")
	}
	return nil
}

// HandleCreateStation registers a police station.
// POST /api/v1/stations
func HandleCreateStation(c *fiber.Ctx) error {
	var input stationInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := input.validate(); err != nil {
		return jsonError(c, err)
	}

	station := &models.PoliceStation{
		Name:      input.Name,
		City:      input.City,
		Longitude: input.Longitude,
		Latitude:  input.Latitude,
		Street:    input.Street,
		Barangay:  input.Barangay,
		ZipCode:   input.ZipCode,
		ImageURL:  input.ImageURL,
		ImageKey:  input.ImageKey,
	}
	if err := repository.GetGlobalFactory().GetStationRepository().Create(station); err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to create station"))
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}

// HandleListStations lists stations, optionally by city.
// GET /api/v1/stations
func HandleListStations(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetStationRepository()

	var (
		stations []models.PoliceStation
		err      error
	)
	if city := c.Query("city"); city != "" {
		stations, err = repo.GetByCity(city)
	} else {
		stations, err = repo.GetAll()
	}
	if err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to list stations"))
	}
	return c.JSON(fiber.Map{"stations": stations})
}

// HandleGetStation returns one station.
// GET /api/v1/stations/:id
func HandleGetStation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	station, err := repository.GetGlobalFactory().GetStationRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, apperrors.E(apperrors.KindNotFound, "station %d not found", id))
		}
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to load station"))
	}
	return c.JSON(station)
}

// HandleUpdateStation updates a station's details.
// PUT /api/v1/stations/:id
func HandleUpdateStation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	repo := repository.GetGlobalFactory().GetStationRepository()
	station, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, apperrors.E(apperrors.KindNotFound, "station %d not found", id))
		}
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to load station"))
	}

	var input stationInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := input.validate(); err != nil {
		return jsonError(c, err)
	}

	station.Name = input.Name
	station.City = input.City
	station.Longitude = input.Longitude
	station.Latitude = input.Latitude
	station.Street = input.Street
	station.Barangay = input.Barangay
	station.ZipCode = input.ZipCode
	if input.ImageURL != "" {
		station.ImageURL = input.ImageURL
		station.ImageKey = input.ImageKey
	}
	if err := repo.Update(station); err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to update station"))
	}
	return c.JSON(station)
}
