package screens

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

const (
	maxMyPrices            = 8
	defaultForecastHorizon = 7
)

// PricesQuery filters the current prices table. An omitted district falls
// back to the farm's; an omitted mandi to the preferred mandi when the
// district is the farm's.
type PricesQuery struct {
	District  string `json:"district" query:"district" validate:"omitempty,min=2"`
	Commodity string `json:"commodity" query:"commodity"`
	Mandi     string `json:"mandi" query:"mandi"`
}

type PricesView struct {
	Filter domain.PriceFilter   `json:"filter"`
	Rows   []domain.MarketPrice `json:"rows"`
}

// MyPricesView holds prices for each preferred commodity of the farm.
type MyPricesView struct {
	District       string                          `json:"district"`
	PreferredMandi string                          `json:"preferred_mandi,omitempty"`
	Results        map[string][]domain.MarketPrice `json:"results"`
}

// ForecastQuery asks for a price forecast. HorizonDays defaults to 7.
type ForecastQuery struct {
	Commodity   string `json:"commodity" query:"commodity" validate:"required,min=2"`
	District    string `json:"district" query:"district"`
	Mandi       string `json:"mandi" query:"mandi"`
	HorizonDays int    `json:"horizon_days" query:"horizon_days" validate:"omitempty,min=1,max=30"`
}

type ForecastView struct {
	Params  domain.ForecastParams `json:"params"`
	Context map[string]any        `json:"context,omitempty"`
	Bands   []domain.Band         `json:"bands"`
}

func (s *Service) MarketMeta(ctx context.Context) (domain.MarketMeta, error) {
	return s.gw.MarketMeta(ctx)
}

func (s *Service) Prices(ctx context.Context, q PricesQuery) (PricesView, error) {
	q.District = strings.TrimSpace(q.District)
	q.Commodity = strings.TrimSpace(q.Commodity)
	q.Mandi = strings.TrimSpace(q.Mandi)
	if err := s.check(q); err != nil {
		return PricesView{}, err
	}

	f := domain.PriceFilter{Commodity: q.Commodity}
	f.District, f.Mandi = s.marketScope(q.District, q.Mandi)

	rows, err := s.gw.Prices(ctx, f)
	if err != nil {
		return PricesView{}, err
	}
	return PricesView{Filter: f, Rows: rows}, nil
}

// MyPrices fetches prices for up to 8 preferred commodities in the farm's
// district, in parallel.
func (s *Service) MyPrices(ctx context.Context) (MyPricesView, error) {
	snap := s.store.Snapshot()
	if snap.Farm == nil {
		return MyPricesView{}, domain.ErrNotOnboarded
	}
	farm := *snap.Farm
	if strings.TrimSpace(farm.District) == "" {
		return MyPricesView{}, domain.Invalid("district", "Set your farm district first.")
	}

	commodities := farm.PreferredCommodities
	if len(commodities) > maxMyPrices {
		commodities = commodities[:maxMyPrices]
	}

	view := MyPricesView{
		District:       farm.District,
		PreferredMandi: farm.PreferredMandi,
		Results:        make(map[string][]domain.MarketPrice, len(commodities)),
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, c := range commodities {
		c := c
		g.Go(func() error {
			rows, err := s.gw.Prices(gctx, domain.PriceFilter{District: farm.District, Commodity: c, Mandi: farm.PreferredMandi})
			if err != nil {
				return err
			}
			mu.Lock()
			view.Results[c] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MyPricesView{}, err
	}
	return view, nil
}

// Forecast returns min/mid/max bands, preferring adjusted quantiles.
func (s *Service) Forecast(ctx context.Context, q ForecastQuery) (ForecastView, error) {
	q.Commodity = strings.TrimSpace(q.Commodity)
	q.District = strings.TrimSpace(q.District)
	q.Mandi = strings.TrimSpace(q.Mandi)
	if err := s.check(q); err != nil {
		return ForecastView{}, err
	}

	p := domain.ForecastParams{Commodity: q.Commodity, HorizonDays: q.HorizonDays}
	if p.HorizonDays == 0 {
		p.HorizonDays = defaultForecastHorizon
	}
	p.District, p.Mandi = s.marketScope(q.District, q.Mandi)

	pack, err := s.gw.Forecast(ctx, p)
	if err != nil {
		return ForecastView{}, err
	}
	view := ForecastView{Params: p, Context: pack.Context, Bands: make([]domain.Band, 0, len(pack.Forecast))}
	for _, pt := range pack.Forecast {
		view.Bands = append(view.Bands, pt.Band())
	}
	return view, nil
}

// marketScope fills an omitted district with the farm's. The preferred mandi
// is only used for the farm's own district.
func (s *Service) marketScope(district, mandi string) (string, string) {
	farm := s.store.Snapshot().Farm
	if farm == nil {
		return district, mandi
	}
	if district == "" {
		district = farm.District
	}
	if mandi == "" && strings.EqualFold(district, farm.District) {
		mandi = farm.PreferredMandi
	}
	return district, mandi
}
