package geo

import (
	"fmt"
	"math"
	"time"
)

// EarthRadius is the mean Earth radius in meters used by Distance.
const EarthRadius = 6371e3

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position is a located point with its accuracy in meters.
type Position struct {
	Point
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether b lies no further than meters from a.
func WithinRadius(a, b Point, meters float64) bool {
	return Distance(a, b) <= meters
}

// FormatCoordinates renders p as "45.815°N, 15.9819°E".
func FormatCoordinates(p Point) string {
	ns := "N"
	if p.Lat < 0 {
		ns = "S"
	}
	ew := "E"
	if p.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%s°%s, %s°%s", formatAxis(p.Lat), ns, formatAxis(p.Lon), ew)
}

// FormatDistance renders meters as "850 m" or "2.4 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func formatAxis(v float64) string {
	rounded := math.Round(math.Abs(v)*1e4) / 1e4
	return fmt.Sprintf("%g", rounded)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
