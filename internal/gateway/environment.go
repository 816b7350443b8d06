package gateway

import (
	"context"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Weather fetches current conditions and the daily outlook for coord.
func (c *Client) Weather(ctx context.Context, coord domain.Coordinate) (domain.WeatherReport, error) {
	const path = "/api/weather"
	var report domain.WeatherReport
	if err := c.getJSON(ctx, path, coordQuery(coord), &report); err != nil {
		return domain.WeatherReport{}, err
	}
	if err := c.checkSchema(path, report); err != nil {
		return domain.WeatherReport{}, err
	}
	return report, nil
}

// Soil fetches SoilGrids properties for coord. A missing topsoil block is
// returned as is; callers render it as a placeholder.
func (c *Client) Soil(ctx context.Context, coord domain.Coordinate) (domain.SoilReport, error) {
	var report domain.SoilReport
	if err := c.getJSON(ctx, "/api/soil", coordQuery(coord), &report); err != nil {
		return domain.SoilReport{}, err
	}
	return report, nil
}
