package entity

import (
	"math"
	"time"
)

const earthRadiusMetres = 6371000.0

// Position is a geographic location with the time it was recorded.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Time      time.Time `json:"time,omitempty"`
}

// DistanceTo returns the great-circle distance to other in metres.
func (p Position) DistanceTo(other Position) float64 {
	lat1 := p.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - p.Latitude) * math.Pi / 180
	dLon := (other.Longitude - p.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMetres * c
}

// IsZero reports whether the position carries no coordinates.
func (p Position) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0 && p.Time.IsZero()
}
