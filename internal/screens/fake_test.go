package screens

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

// fakeGateway answers from function fields; unset ones return zero values.
type fakeGateway struct {
	weather   func(ctx context.Context, c domain.Coordinate) (domain.WeatherReport, error)
	soil      func(ctx context.Context, c domain.Coordinate) (domain.SoilReport, error)
	recos     func(ctx context.Context, userID string, c domain.Coordinate) ([]domain.CropReco, error)
	meta      func(ctx context.Context) (domain.MarketMeta, error)
	mandis    func(ctx context.Context, district string) ([]string, error)
	prices    func(ctx context.Context, f domain.PriceFilter) ([]domain.MarketPrice, error)
	forecast  func(ctx context.Context, p domain.ForecastParams) (domain.ForecastPack, error)
	detect    func(ctx context.Context, img domain.DiseaseImage) (domain.DiseaseResult, error)
	ask       func(ctx context.Context, req domain.AskRequest) (domain.AskAnswer, error)
	ensure    func(ctx context.Context, f domain.RegistrationFields) (domain.User, domain.Farm, error)
	setPrefs  func(ctx context.Context, farmID string, p domain.Prefs) error
	weatherN  atomic.Int32
	recosN    atomic.Int32
	ensureN   atomic.Int32
	mu        sync.Mutex
	lastPrice []domain.PriceFilter
}

var _ domain.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) Weather(ctx context.Context, c domain.Coordinate) (domain.WeatherReport, error) {
	f.weatherN.Add(1)
	if f.weather == nil {
		return domain.WeatherReport{Latitude: c.Lat, Longitude: c.Lon}, nil
	}
	return f.weather(ctx, c)
}

func (f *fakeGateway) Soil(ctx context.Context, c domain.Coordinate) (domain.SoilReport, error) {
	if f.soil == nil {
		return domain.SoilReport{Latitude: c.Lat, Longitude: c.Lon}, nil
	}
	return f.soil(ctx, c)
}

func (f *fakeGateway) CropRecommendations(ctx context.Context, userID string, c domain.Coordinate) ([]domain.CropReco, error) {
	f.recosN.Add(1)
	if f.recos == nil {
		return []domain.CropReco{{Crop: "rice", Probability: 0.9}, {Crop: "maize", Probability: 0.4}}, nil
	}
	return f.recos(ctx, userID, c)
}

func (f *fakeGateway) MarketMeta(ctx context.Context) (domain.MarketMeta, error) {
	if f.meta == nil {
		return domain.MarketMeta{Commodities: []string{"Onion", "Tomato"}, Districts: []string{"Pune", "Nashik"}}, nil
	}
	return f.meta(ctx)
}

func (f *fakeGateway) Mandis(ctx context.Context, district string) ([]string, error) {
	if f.mandis == nil {
		return []string{"Market A", "Market B"}, nil
	}
	return f.mandis(ctx, district)
}

func (f *fakeGateway) Prices(ctx context.Context, pf domain.PriceFilter) ([]domain.MarketPrice, error) {
	f.mu.Lock()
	f.lastPrice = append(f.lastPrice, pf)
	f.mu.Unlock()
	if f.prices == nil {
		return []domain.MarketPrice{{Commodity: pf.Commodity, Price: 1200, Mandi: pf.Mandi, District: pf.District}}, nil
	}
	return f.prices(ctx, pf)
}

func (f *fakeGateway) Forecast(ctx context.Context, p domain.ForecastParams) (domain.ForecastPack, error) {
	if f.forecast == nil {
		return domain.ForecastPack{}, nil
	}
	return f.forecast(ctx, p)
}

func (f *fakeGateway) DetectDisease(ctx context.Context, img domain.DiseaseImage) (domain.DiseaseResult, error) {
	if f.detect == nil {
		return domain.DiseaseResult{Success: true}, nil
	}
	return f.detect(ctx, img)
}

func (f *fakeGateway) AskAgentic(ctx context.Context, req domain.AskRequest) (domain.AskAnswer, error) {
	if f.ask == nil {
		return domain.AskAnswer{Answer: "ok"}, nil
	}
	return f.ask(ctx, req)
}

func (f *fakeGateway) EnsureUserAndFarm(ctx context.Context, rf domain.RegistrationFields) (domain.User, domain.Farm, error) {
	f.ensureN.Add(1)
	if f.ensure == nil {
		return domain.User{ID: "u1", Name: rf.UserName, MobileNumber: rf.Mobile, LanguagePref: rf.Language},
			domain.Farm{ID: "f1", UserID: "u1", Name: rf.FarmName, District: rf.District, State: rf.State,
				Latitude: rf.Latitude, Longitude: rf.Longitude, RotationHistory: rf.RotationHistory,
				PreferredCommodities: rf.Commodities, PreferredMandi: rf.Mandi}, nil
	}
	return f.ensure(ctx, rf)
}

func (f *fakeGateway) SetPrefs(ctx context.Context, farmID string, p domain.Prefs) error {
	if f.setPrefs == nil {
		return nil
	}
	return f.setPrefs(ctx, farmID, p)
}

type fakeGeocoder struct {
	coord domain.Coordinate
	err   error
}

func (g fakeGeocoder) Geocode(context.Context, string) (domain.Coordinate, error) {
	return g.coord, g.err
}

type fakeDevice struct {
	coord domain.Coordinate
	err   error
}

func (d fakeDevice) Locate(context.Context) (domain.Coordinate, error) {
	return d.coord, d.err
}

func ptr[T any](v T) *T { return &v }

var testNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

// newTestService builds a service over gw with a fixed clock. A non-nil farm
// is stored together with a user.
func newTestService(gw *fakeGateway, farm *domain.Farm) (*Service, *store.Store) {
	st := store.New(nil)
	if farm != nil {
		st.Dispatch(store.SetUser{User: domain.User{ID: "u1", Name: "Asha", LanguagePref: "hi"}})
		st.Dispatch(store.SetFarm{Farm: *farm})
	}
	svc := NewService(Deps{
		Store:             st,
		Gateway:           gw,
		BackgroundTimeout: time.Second,
		Now:               func() time.Time { return testNow },
	})
	return svc, st
}

func locatedFarm(lat, lon float64) *domain.Farm {
	return &domain.Farm{ID: "f1", UserID: "u1", Name: "Asha's Farm", District: "Pune", State: "Maharashtra",
		Latitude: ptr(lat), Longitude: ptr(lon), PreferredMandi: "Market A"}
}
