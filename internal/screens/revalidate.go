package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Revalidate reads weather and recommendations through the cache, refreshing
// whichever is stale. It does nothing before onboarding or when the farm
// cannot be located.
func (s *Service) Revalidate(ctx context.Context) error {
	user, farm, err := s.onboarded()
	if err != nil {
		return nil
	}
	coord, ok := s.resolver.Resolve(ctx, farm)
	if !ok {
		return nil
	}
	key := cache.Key(coord)

	var (
		wg                  sync.WaitGroup
		weatherErr, recoErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, weatherErr = s.weather.read(ctx, s, key, func(ctx context.Context) (domain.WeatherReport, error) {
			return s.gw.Weather(ctx, coord)
		})
	}()
	go func() {
		defer wg.Done()
		_, recoErr = s.recos.read(ctx, s, key, func(ctx context.Context) ([]domain.CropReco, error) {
			return s.gw.CropRecommendations(ctx, user.ID, coord)
		})
	}()
	wg.Wait()

	return errors.Join(weatherErr, recoErr)
}
