package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org/search"

type AppConfig struct {
	// APIBaseURL is the KrishiMitra backend every gateway call goes to.
	APIBaseURL  string
	HTTPTimeout time.Duration

	// RefreshInterval controls how often cached weather and recommendations
	// are revalidated in the background.
	RefreshInterval time.Duration

	// BackgroundRefreshTimeout bounds a crops refresh started off the request path.
	BackgroundRefreshTimeout time.Duration

	GoogleGeocoderAPIKey string
	NominatimURL         string

	// Device fix used by the onboarding GPS path. Nil when unset.
	DeviceLatitude  *float64
	DeviceLongitude *float64

	Port string
	Env  string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIBaseURL = getenvDefault("KRISHIMITRA_API_URL", "http://localhost:8000")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.NominatimURL = getenvDefault("NOMINATIM_URL", defaultNominatimURL)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Env = getenvDefault("APP_ENV", "production")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BackgroundRefreshTimeout, err = getenvDuration("BACKGROUND_REFRESH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.DeviceLatitude, err = getenvCoordinate("DEVICE_LATITUDE", 90); err != nil {
		return nil, err
	}
	if cfg.DeviceLongitude, err = getenvCoordinate("DEVICE_LONGITUDE", 180); err != nil {
		return nil, err
	}
	if (cfg.DeviceLatitude == nil) != (cfg.DeviceLongitude == nil) {
		return nil, fmt.Errorf("DEVICE_LATITUDE and DEVICE_LONGITUDE must be set together")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getenvCoordinate(key string, limit float64) (*float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if f < -limit || f > limit {
		return nil, fmt.Errorf("invalid %s: out of range", key)
	}
	return &f, nil
}
