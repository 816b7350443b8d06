package domain

// MarketMeta lists the values the price models know about.
type MarketMeta struct {
	Commodities []string `json:"commodities"`
	Districts   []string `json:"districts"`
	Mandis      []string `json:"mandis,omitempty"`
	Varieties   []string `json:"varieties,omitempty"`
	Grades      []string `json:"grades,omitempty"`
}

// PriceFilter narrows a price lookup. Empty fields are not sent.
type PriceFilter struct {
	District  string
	Commodity string
	Mandi     string
}

// MarketPrice is one normalized Agmarknet row.
type MarketPrice struct {
	Commodity   string  `json:"commodity" validate:"required"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Mandi       string  `json:"mandi"`
	District    string  `json:"district"`
	State       string  `json:"state,omitempty"`
	LastUpdated string  `json:"lastUpdated"`
}

// ForecastParams asks for a price forecast over HorizonDays.
type ForecastParams struct {
	Commodity   string
	District    string
	Mandi       string
	HorizonDays int
}

// ForecastPoint holds the calibrated quantiles for one day. The *Adj
// variants, when present, supersede the raw quantiles.
type ForecastPoint struct {
	Date   string   `json:"date" validate:"required"`
	P20    float64  `json:"p20"`
	P50    float64  `json:"p50"`
	P80    float64  `json:"p80"`
	P20Adj *float64 `json:"p20_adj,omitempty"`
	P50Adj *float64 `json:"p50_adj,omitempty"`
	P80Adj *float64 `json:"p80_adj,omitempty"`
}

// Band is the displayed min/mid/max for a forecast day.
type Band struct {
	Date string  `json:"date"`
	Min  float64 `json:"min"`
	Mid  float64 `json:"mid"`
	Max  float64 `json:"max"`
}

// Band picks adjusted quantiles over raw ones.
func (p ForecastPoint) Band() Band {
	return Band{
		Date: p.Date,
		Min:  pick(p.P20Adj, p.P20),
		Mid:  pick(p.P50Adj, p.P50),
		Max:  pick(p.P80Adj, p.P80),
	}
}

// ForecastPack is the forecast response.
type ForecastPack struct {
	Context  map[string]any  `json:"context,omitempty"`
	Forecast []ForecastPoint `json:"forecast" validate:"dive"`
}

func pick(adj *float64, raw float64) float64 {
	if adj != nil {
		return *adj
	}
	return raw
}
