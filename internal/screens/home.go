package screens

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// HomeView is the dashboard: greeting, weather and the best crop pick.
type HomeView struct {
	Greeting          string                             `json:"greeting"`
	UserName          string                             `json:"user_name"`
	Place             string                             `json:"place"`
	Located           bool                               `json:"located"`
	Weather           cache.Lookup[domain.WeatherReport] `json:"weather"`
	Recommendations   cache.Lookup[[]domain.CropReco]    `json:"-"`
	TopRecommendation *domain.CropReco                   `json:"top_recommendation,omitempty"`
}

// Home reads weather and recommendations through the cache in parallel.
// Refresh failures are logged and the previous entries are shown.
func (s *Service) Home(ctx context.Context) (HomeView, error) {
	user, farm, err := s.onboarded()
	if err != nil {
		return HomeView{}, err
	}

	view := HomeView{
		Greeting: greeting(s.now().Hour()),
		UserName: user.Name,
		Place:    displayPlace(farm),
	}

	coord, ok := s.resolver.Resolve(ctx, farm)
	if !ok {
		return view, nil
	}
	view.Located = true
	key := cache.Key(coord)

	var g errgroup.Group
	g.Go(func() error {
		view.Weather, _ = s.weather.read(ctx, s, key, func(ctx context.Context) (domain.WeatherReport, error) {
			return s.gw.Weather(ctx, coord)
		})
		return nil
	})
	g.Go(func() error {
		view.Recommendations, _ = s.recos.read(ctx, s, key, func(ctx context.Context) ([]domain.CropReco, error) {
			return s.gw.CropRecommendations(ctx, user.ID, coord)
		})
		return nil
	})
	_ = g.Wait()

	if recos := view.Recommendations.Data; len(recos) > 0 {
		top := recos[0]
		view.TopRecommendation = &top
	}
	return view, nil
}

func greeting(hour int) string {
	switch {
	case hour < 12:
		return "Morning"
	case hour < 18:
		return "Afternoon"
	default:
		return "Evening"
	}
}

func displayPlace(f domain.Farm) string {
	district := strings.TrimSpace(f.District)
	if district == "" {
		district = "Location"
	}
	state := strings.TrimSpace(f.State)
	if state == "" {
		state = "State"
	}
	return district + ", " + state
}
