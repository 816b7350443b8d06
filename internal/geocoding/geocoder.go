// Package geocoding turns farm places and device fixes into coordinates.
package geocoding

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/config"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

var (
	// ErrNoResult is returned when a place could not be resolved.
	ErrNoResult = errors.New("no geocoding result")
	// ErrLocationDenied is returned when no device position is available.
	ErrLocationDenied = errors.New("device location unavailable")
)

// New picks the place geocoder for cfg: Google when an API key is
// configured, Nominatim otherwise.
func New(cfg *config.AppConfig, client *http.Client, logger logrus.FieldLogger) domain.Geocoder {
	if cfg.GoogleGeocoderAPIKey != "" {
		logger.WithField("geocoder", "google").Info("geocoder selected")
		return NewGoogle(cfg.GoogleGeocoderAPIKey)
	}
	logger.WithField("geocoder", "nominatim").Info("geocoder selected")
	return NewNominatim(cfg.NominatimURL, client)
}
