// Package location derives the single coordinate a farm's screens work with.
package location

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Resolver walks the fallback chain: stored coordinates, then the geocoded
// district, then nothing.
type Resolver struct {
	geocoder domain.Geocoder
	logger   logrus.FieldLogger
}

func NewResolver(geocoder domain.Geocoder, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve returns the farm's coordinate, or false when it has none. Having
// no coordinate is not an error; a geocoding failure is logged and treated
// the same way. Each tier is tried once.
func (r *Resolver) Resolve(ctx context.Context, farm domain.Farm) (domain.Coordinate, bool) {
	if c, ok := farm.StoredCoordinate(); ok {
		return c, true
	}

	place := farm.Place()
	if place == "" || r.geocoder == nil {
		return domain.Coordinate{}, false
	}

	c, err := r.geocoder.Geocode(ctx, place)
	if err != nil {
		common.LogWarn(r.logger, "geocoding failed", err, logrus.Fields{"place": place, "farm_id": farm.ID})
		return domain.Coordinate{}, false
	}
	return c, true
}
