package screens

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// SoilView pairs current weather with topsoil health. A nil Topsoil is shown
// as a placeholder.
type SoilView struct {
	Located bool                               `json:"located"`
	Weather cache.Lookup[domain.WeatherReport] `json:"weather"`
	Soil    *domain.SoilReport                 `json:"soil,omitempty"`
	Topsoil *domain.SoilLayer                  `json:"topsoil"`
	Notice  string                             `json:"notice,omitempty"`
}

func (s *Service) Soil(ctx context.Context) (SoilView, error) {
	_, farm, err := s.onboarded()
	if err != nil {
		return SoilView{}, err
	}
	coord, ok := s.resolver.Resolve(ctx, farm)
	if !ok {
		return SoilView{}, nil
	}
	key := cache.Key(coord)
	view := SoilView{Located: true}

	var g errgroup.Group
	g.Go(func() error {
		view.Weather, _ = s.weather.read(ctx, s, key, func(ctx context.Context) (domain.WeatherReport, error) {
			return s.gw.Weather(ctx, coord)
		})
		return nil
	})
	g.Go(func() error {
		report, err := s.gw.Soil(ctx, coord)
		if err != nil {
			common.LogWarn(s.logger, "soil fetch failed", err, logrus.Fields{"key": key})
			view.Notice = domain.UserMessage(err)
			return nil
		}
		view.Soil = &report
		view.Topsoil = report.Topsoil
		return nil
	})
	_ = g.Wait()

	return view, nil
}
