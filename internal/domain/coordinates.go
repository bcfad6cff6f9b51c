package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument marks input rejected at the analysis boundary.
var ErrInvalidArgument = errors.New("invalid argument")

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Validate reports whether c is a finite point on the globe.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v must be within [-90, 90]", ErrInvalidArgument, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v must be within [-180, 180]", ErrInvalidArgument, c.Lng)
	}
	return nil
}

// Return coordinates as "lat,lng" rounded to 5 decimals (~1 m) for cache keys.
func (c Coordinates) Key() string { return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng) }
