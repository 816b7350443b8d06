package geocoding

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Google geocodes through the Google Maps Geocoding API.
type Google struct {
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogle configures the geocoder package with apiKey. The key is process
// wide.
func NewGoogle(apiKey string) *Google {
	geocoder.ApiKey = apiKey
	return &Google{lookup: geocoder.Geocoding}
}

// Geocode resolves "district[, state]" within India. The underlying client
// has no context support, so a cancelled ctx returns early and the lookup
// result is dropped.
func (g *Google) Geocode(ctx context.Context, place string) (domain.Coordinate, error) {
	addr, err := placeAddress(place)
	if err != nil {
		return domain.Coordinate{}, err
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := g.lookup(addr)
		done <- result{loc, err}
	}()

	select {
	case <-ctx.Done():
		return domain.Coordinate{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return domain.Coordinate{}, fmt.Errorf("google geocode %q: %w", place, r.err)
		}
		if r.loc.Latitude == 0 && r.loc.Longitude == 0 {
			return domain.Coordinate{}, fmt.Errorf("%w for %q", ErrNoResult, place)
		}
		return domain.Coordinate{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}

func placeAddress(place string) (geocoder.Address, error) {
	parts := strings.SplitN(place, ",", 2)
	district := strings.TrimSpace(parts[0])
	if district == "" {
		return geocoder.Address{}, fmt.Errorf("place cannot be empty")
	}
	addr := geocoder.Address{City: district, Country: "India"}
	if len(parts) == 2 {
		addr.State = strings.TrimSpace(parts[1])
	}
	return addr, nil
}
