package geocoding

import (
	"context"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// StaticDevice reports a fixed device position, e.g. from configuration.
type StaticDevice struct {
	fix *domain.Coordinate
}

// NewStaticDevice returns a locator for lat/lon. Either being nil means the
// device has no fix.
func NewStaticDevice(lat, lon *float64) *StaticDevice {
	if lat == nil || lon == nil {
		return &StaticDevice{}
	}
	return &StaticDevice{fix: &domain.Coordinate{Lat: *lat, Lon: *lon}}
}

func (d *StaticDevice) Locate(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if d.fix == nil {
		return domain.Coordinate{}, ErrLocationDenied
	}
	return *d.fix, nil
}
