package screens

import (
	"context"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// CropsView lists the recommendations for the farm's location.
type CropsView struct {
	Located         bool                            `json:"located"`
	Recommendations cache.Lookup[[]domain.CropReco] `json:"recommendations"`
}

// Crops never blocks on the gateway. It returns what is cached for the
// resolved location and, when that is not fresh or force is set, starts a
// background refresh and reports it as refreshing.
func (s *Service) Crops(ctx context.Context, force bool) (CropsView, error) {
	user, farm, err := s.onboarded()
	if err != nil {
		return CropsView{}, err
	}

	coord, ok := s.resolver.Resolve(ctx, farm)
	if !ok {
		return CropsView{}, nil
	}
	key := cache.Key(coord)

	view := CropsView{Located: true, Recommendations: s.recos.lookup(s, key)}
	if view.Recommendations.Fresh && !force {
		return view, nil
	}

	s.recos.refreshInBackground(s, key, func(ctx context.Context) ([]domain.CropReco, error) {
		return s.gw.CropRecommendations(ctx, user.ID, coord)
	})
	view.Recommendations.Refreshing = true
	return view, nil
}
