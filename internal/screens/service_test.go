package screens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/location"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

func TestHomeRequiresOnboarding(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{}, nil)
	if _, err := svc.Home(context.Background()); !errors.Is(err, domain.ErrNotOnboarded) {
		t.Fatalf("expected ErrNotOnboarded, got %v", err)
	}
}

func TestHomeReadsThroughCache(t *testing.T) {
	gw := &fakeGateway{}
	svc, st := newTestService(gw, locatedFarm(18.52, 73.85))

	view, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if view.Greeting != "Morning" || view.UserName != "Asha" || view.Place != "Pune, Maharashtra" {
		t.Fatalf("unexpected header: %+v", view)
	}
	if !view.Weather.Fresh || view.TopRecommendation == nil || view.TopRecommendation.Crop != "rice" {
		t.Fatalf("unexpected data: %+v", view)
	}
	if got := st.Snapshot().Weather.Key; got != "18.5200,73.8500" {
		t.Fatalf("weather key = %q", got)
	}

	if _, err := svc.Home(context.Background()); err != nil {
		t.Fatalf("second home: %v", err)
	}
	if gw.weatherN.Load() != 1 || gw.recosN.Load() != 1 {
		t.Fatalf("fresh entries refetched: weather=%d recos=%d", gw.weatherN.Load(), gw.recosN.Load())
	}
}

func TestHomeWithoutLocation(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw, &domain.Farm{ID: "f1", Name: "Farm"})

	view, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if view.Located || view.Place != "Location, State" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if gw.weatherN.Load() != 0 {
		t.Fatal("weather fetched without a location")
	}
}

func TestHomeGeocodesPlaceOnce(t *testing.T) {
	gw := &fakeGateway{}
	st := store.New(nil)
	st.Dispatch(store.SetUser{User: domain.User{ID: "u1", Name: "Asha"}})
	st.Dispatch(store.SetFarm{Farm: domain.Farm{ID: "f1", District: "Pune", State: "Maharashtra"}})
	svc := NewService(Deps{
		Store:    st,
		Gateway:  gw,
		Resolver: location.NewResolver(fakeGeocoder{coord: domain.Coordinate{Lat: 18.5204, Lon: 73.8567}}, nil),
		Now:      func() time.Time { return testNow },
	})

	view, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if !view.Located || st.Snapshot().Weather.Key != "18.5204,73.8567" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestStaleEntryIsRefreshed(t *testing.T) {
	gw := &fakeGateway{}
	svc, st := newTestService(gw, locatedFarm(18.52, 73.85))
	st.Dispatch(store.SetWeather{Key: "18.5200,73.8500", Data: domain.WeatherReport{Latitude: 1}, FetchedAt: testNow.Add(-31 * time.Minute)})

	view, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if gw.weatherN.Load() != 1 || !view.Weather.Fresh || view.Weather.Data.Latitude != 18.52 {
		t.Fatalf("stale entry not refreshed: %+v", view.Weather)
	}
}

func TestRefreshFailureKeepsPreviousEntry(t *testing.T) {
	gw := &fakeGateway{
		weather: func(context.Context, domain.Coordinate) (domain.WeatherReport, error) {
			return domain.WeatherReport{}, domain.ErrUnavailable
		},
	}
	svc, st := newTestService(gw, locatedFarm(18.52, 73.85))
	old := testNow.Add(-time.Hour)
	st.Dispatch(store.SetWeather{Key: "18.5200,73.8500", Data: domain.WeatherReport{Latitude: 5}, FetchedAt: old})

	view, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if !view.Weather.Present || view.Weather.Fresh || view.Weather.Data.Latitude != 5 {
		t.Fatalf("previous entry not served: %+v", view.Weather)
	}
	if got := st.Snapshot().Weather; !got.FetchedAt.Equal(old) {
		t.Fatalf("entry overwritten: %+v", got)
	}
}

func TestSupersededRefreshNeverOverwritesNewerKey(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{
		weather: func(ctx context.Context, c domain.Coordinate) (domain.WeatherReport, error) {
			if c.Lat == 10 {
				close(started)
				<-release
			}
			return domain.WeatherReport{Latitude: c.Lat, Longitude: c.Lon}, nil
		},
	}
	svc, st := newTestService(gw, locatedFarm(10, 70))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Home(context.Background())
	}()
	<-started

	st.Dispatch(store.UpdateFarmPartial{Patch: domain.FarmPatch{Latitude: ptr(20.0), Longitude: ptr(75.0)}})
	if _, err := svc.Home(context.Background()); err != nil {
		t.Fatalf("home for new location: %v", err)
	}
	close(release)
	wg.Wait()

	got := st.Snapshot().Weather
	if got.Key != "20.0000,75.0000" || got.Data.Latitude != 20 {
		t.Fatalf("older refresh overwrote newer entry: %+v", got)
	}
}

func TestLocationChangeDiscardsInFlightRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{
		weather: func(ctx context.Context, c domain.Coordinate) (domain.WeatherReport, error) {
			close(started)
			<-release
			return domain.WeatherReport{Latitude: c.Lat}, nil
		},
	}
	svc, st := newTestService(gw, locatedFarm(10, 70))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Home(context.Background())
	}()
	<-started
	st.Dispatch(store.UpdateFarmPartial{Patch: domain.FarmPatch{District: ptr("Nashik")}})
	close(release)
	<-done

	if st.Snapshot().Weather.Present() {
		t.Fatal("refresh for the old location committed")
	}
}

func TestReturningLocationStartsNewRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var first sync.Once
	gw := &fakeGateway{
		weather: func(ctx context.Context, c domain.Coordinate) (domain.WeatherReport, error) {
			blocked := false
			first.Do(func() { blocked = true })
			if blocked {
				close(started)
				<-release
			}
			return domain.WeatherReport{Latitude: c.Lat, Longitude: c.Lon}, nil
		},
	}
	svc, st := newTestService(gw, locatedFarm(10, 70))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Home(context.Background())
	}()
	<-started

	st.Dispatch(store.UpdateFarmPartial{Patch: domain.FarmPatch{Latitude: ptr(20.0), Longitude: ptr(75.0)}})
	st.Dispatch(store.UpdateFarmPartial{Patch: domain.FarmPatch{Latitude: ptr(10.0), Longitude: ptr(70.0)}})

	view, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home after returning: %v", err)
	}
	close(release)
	<-done

	if !view.Weather.Fresh || view.Weather.Data.Latitude != 10 {
		t.Fatalf("expected fresh weather for the farm: %+v", view.Weather)
	}
	if got := st.Snapshot().Weather; got.Key != "10.0000,70.0000" {
		t.Fatalf("weather entry = %+v", got)
	}
	if _, err := svc.Home(context.Background()); err != nil {
		t.Fatalf("home: %v", err)
	}
	if gw.weatherN.Load() != 2 {
		t.Fatalf("weather fetched %d times, want 2", gw.weatherN.Load())
	}
}

func TestCropsRefreshesInBackground(t *testing.T) {
	gw := &fakeGateway{}
	svc, st := newTestService(gw, locatedFarm(18.52, 73.85))

	view, err := svc.Crops(context.Background(), false)
	if err != nil {
		t.Fatalf("crops: %v", err)
	}
	if !view.Located || view.Recommendations.Present || !view.Recommendations.Refreshing {
		t.Fatalf("unexpected first view: %+v", view)
	}
	svc.Wait()

	if got := st.Snapshot().Reco; !got.Present() || len(got.Data) != 2 {
		t.Fatalf("background refresh not committed: %+v", got)
	}
	view, _ = svc.Crops(context.Background(), false)
	if !view.Recommendations.Fresh || view.Recommendations.Refreshing {
		t.Fatalf("expected fresh view: %+v", view.Recommendations)
	}
	if gw.recosN.Load() != 1 {
		t.Fatalf("recommendations fetched %d times", gw.recosN.Load())
	}

	view, _ = svc.Crops(context.Background(), true)
	svc.Wait()
	if !view.Recommendations.Refreshing || gw.recosN.Load() != 2 {
		t.Fatalf("forced refresh not started: %+v", view.Recommendations)
	}
}

func TestUserChangeRetiresRecoRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{
		recos: func(context.Context, string, domain.Coordinate) ([]domain.CropReco, error) {
			close(started)
			<-release
			return []domain.CropReco{{Crop: "rice", Probability: 1}}, nil
		},
	}
	svc, st := newTestService(gw, locatedFarm(18.52, 73.85))

	if _, err := svc.Crops(context.Background(), false); err != nil {
		t.Fatalf("crops: %v", err)
	}
	<-started
	st.Dispatch(store.SetUser{User: domain.User{ID: "u2", Name: "Ravi"}})
	close(release)
	svc.Wait()

	if st.Snapshot().Reco.Present() {
		t.Fatal("recommendations for the previous user committed")
	}
}

func TestSoilPlaceholderOnFailure(t *testing.T) {
	gw := &fakeGateway{
		soil: func(context.Context, domain.Coordinate) (domain.SoilReport, error) {
			return domain.SoilReport{}, domain.ErrUnavailable
		},
	}
	svc, _ := newTestService(gw, locatedFarm(18.52, 73.85))

	view, err := svc.Soil(context.Background())
	if err != nil {
		t.Fatalf("soil: %v", err)
	}
	if view.Topsoil != nil || view.Notice == "" || !view.Weather.Fresh {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestRevalidate(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw, nil)
	if err := svc.Revalidate(context.Background()); err != nil || gw.weatherN.Load() != 0 {
		t.Fatalf("revalidate before onboarding: err=%v calls=%d", err, gw.weatherN.Load())
	}

	gw = &fakeGateway{
		recos: func(context.Context, string, domain.Coordinate) ([]domain.CropReco, error) {
			return nil, domain.ErrUnavailable
		},
	}
	svc, st := newTestService(gw, locatedFarm(18.52, 73.85))
	err := svc.Revalidate(context.Background())
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected reco failure, got %v", err)
	}
	if !cache.IsFresh(st.Snapshot().Weather, "18.5200,73.8500", testNow) {
		t.Fatal("weather not refreshed")
	}
}
