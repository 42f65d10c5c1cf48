// Package geo provides great-circle distance between GPS coordinates.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned by Validate for coordinates outside the
// WGS84 degree ranges or containing NaN/Inf.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a single recorded location sample.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"` // milliseconds since epoch
}

// Validate reports whether c can be fed to DistanceKm.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return fmt.Errorf("%w: non-finite value (%v, %v)", ErrInvalidCoordinate, c.Latitude, c.Longitude)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// DistanceKm returns the great-circle distance between a and b in kilometres.
func DistanceKm(a, b Coordinate) float64 {
	return HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// HaversineKm returns the great-circle distance between two points given in
// decimal degrees.
//
//	a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
//	c = 2 ⋅ atan2(√a, √(1−a))
//	d = R ⋅ c
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
