package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// MarketMeta lists the commodities, districts and mandis the price models
// support.
func (c *Client) MarketMeta(ctx context.Context) (domain.MarketMeta, error) {
	var meta domain.MarketMeta
	if err := c.getJSON(ctx, "/api/market/meta/all", nil, &meta); err != nil {
		return domain.MarketMeta{}, err
	}
	if meta.Commodities == nil {
		meta.Commodities = []string{}
	}
	if meta.Districts == nil {
		meta.Districts = []string{}
	}
	return meta, nil
}

// Mandis lists the mandis of district.
func (c *Client) Mandis(ctx context.Context, district string) ([]string, error) {
	q := url.Values{}
	q.Set("district", district)

	var payload struct {
		Mandis []string `json:"mandis"`
	}
	if err := c.getJSON(ctx, "/api/market/meta/mandis", q, &payload); err != nil {
		return nil, err
	}
	if payload.Mandis == nil {
		return []string{}, nil
	}
	return payload.Mandis, nil
}

// Prices returns normalized Agmarknet rows. Empty filter fields are omitted.
func (c *Client) Prices(ctx context.Context, f domain.PriceFilter) ([]domain.MarketPrice, error) {
	const path = "/api/market/prices"
	q := url.Values{}
	setIf(q, "district", f.District)
	setIf(q, "commodity", f.Commodity)
	setIf(q, "mandi", f.Mandi)

	var rows []domain.MarketPrice
	if err := c.getJSON(ctx, path, q, &rows); err != nil {
		return nil, err
	}
	if err := c.checkSchema(path, struct {
		Rows []domain.MarketPrice `validate:"dive"`
	}{rows}); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.MarketPrice{}
	}
	return rows, nil
}

// Forecast returns calibrated price quantiles for the next HorizonDays.
func (c *Client) Forecast(ctx context.Context, p domain.ForecastParams) (domain.ForecastPack, error) {
	const path = "/api/market/forecast"
	if p.Commodity == "" {
		return domain.ForecastPack{}, domain.Invalid("commodity", "Commodity is required.")
	}
	q := url.Values{}
	q.Set("commodity", p.Commodity)
	setIf(q, "district", p.District)
	setIf(q, "mandi", p.Mandi)
	q.Set("horizon_days", strconv.Itoa(p.HorizonDays))

	var pack domain.ForecastPack
	if err := c.getJSON(ctx, path, q, &pack); err != nil {
		return domain.ForecastPack{}, err
	}
	if pack.Forecast == nil {
		return domain.ForecastPack{}, fmt.Errorf("%w: %s: no forecast", domain.ErrPartialData, path)
	}
	if err := c.checkSchema(path, pack); err != nil {
		return domain.ForecastPack{}, err
	}
	return pack, nil
}
