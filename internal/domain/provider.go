package domain

import "context"

// Geocoder resolves a free-text place to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Coordinate, error)
}

// DeviceLocator returns the device's own position (user-initiated only).
type DeviceLocator interface {
	Locate(ctx context.Context) (Coordinate, error)
}

// WeatherSource fetches weather for a coordinate.
type WeatherSource interface {
	Weather(ctx context.Context, c Coordinate) (WeatherReport, error)
}

// SoilSource fetches topsoil properties for a coordinate.
type SoilSource interface {
	Soil(ctx context.Context, c Coordinate) (SoilReport, error)
}

// MandiLister lists the mandis of a district.
type MandiLister interface {
	Mandis(ctx context.Context, district string) ([]string, error)
}

// MarketSource covers market metadata, prices and forecasts.
type MarketSource interface {
	MandiLister
	MarketMeta(ctx context.Context) (MarketMeta, error)
	Prices(ctx context.Context, f PriceFilter) ([]MarketPrice, error)
	Forecast(ctx context.Context, p ForecastParams) (ForecastPack, error)
}

// RecoSource computes crop recommendations.
type RecoSource interface {
	CropRecommendations(ctx context.Context, userID string, c Coordinate) ([]CropReco, error)
}

// DiseaseDetector diagnoses a crop photo.
type DiseaseDetector interface {
	DetectDisease(ctx context.Context, img DiseaseImage) (DiseaseResult, error)
}

// Assistant answers natural-language questions.
type Assistant interface {
	AskAgentic(ctx context.Context, req AskRequest) (AskAnswer, error)
}

// PrefsWriter stores farm preferences remotely.
type PrefsWriter interface {
	SetPrefs(ctx context.Context, farmID string, prefs Prefs) error
}

// Accounts creates or updates the user and farm records.
type Accounts interface {
	PrefsWriter
	EnsureUserAndFarm(ctx context.Context, fields RegistrationFields) (User, Farm, error)
}

// Gateway is the full remote data surface.
type Gateway interface {
	WeatherSource
	SoilSource
	MarketSource
	RecoSource
	DiseaseDetector
	Assistant
	Accounts
}
