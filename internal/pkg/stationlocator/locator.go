// Package stationlocator picks the police station responsible for a report
// location. Two-tier lookup: nearest within the assignment radius, then the
// globally nearest station, so a report is never left unassigned while at
// least one station is registered.
package stationlocator

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/geo"
)

// AssignmentRadiusKm is the primary search radius for station assignment.
const AssignmentRadiusKm = 5.0

type Locator struct {
	stations repository.StationRepository
}

func New(stations repository.StationRepository) *Locator {
	return &Locator{stations: stations}
}

// Locate resolves the station for a report location. An explicit station
// choice always wins if it resolves; otherwise the nearest station within
// AssignmentRadiusKm, falling back to the globally nearest station. Ties on
// exact distance keep the first candidate found (stations scan in id order).
func (l *Locator) Locate(ctx context.Context, explicitID *uint, lon, lat float64) (*models.PoliceStation, error) {
	if explicitID != nil {
		station, err := l.stations.GetByID(*explicitID)
		if err == nil {
			return station, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.KindStorage, err, "station lookup failed")
		}
		// fall through to proximity search when the explicit id is stale
	}

	stations, err := l.stations.GetAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "station listing failed")
	}
	if len(stations) == 0 {
		return nil, apperrors.E(apperrors.KindNotFound, "no police stations registered")
	}

	if within := nearest(stations, lon, lat, AssignmentRadiusKm); within != nil {
		return within, nil
	}
	return nearest(stations, lon, lat, math.MaxFloat64), nil
}

// nearest returns the closest station not farther than maxKm, or nil.
func nearest(stations []models.PoliceStation, lon, lat, maxKm float64) *models.PoliceStation {
	var best *models.PoliceStation
	bestDist := maxKm
	for i := range stations {
		d := geo.DistanceKm(lon, lat, stations[i].Longitude, stations[i].Latitude)
		if d <= bestDist && (best == nil || d < bestDist) {
			best = &stations[i]
			bestDist = d
		}
	}
	return best
}
