package domain

// CurrentConditions is the "current" block of a weather report.
// Optional readings are nil when the backend could not provide them.
type CurrentConditions struct {
	TemperatureC    *float64 `json:"temperature_c"`
	WindSpeedMS     *float64 `json:"wind_speed_ms,omitempty"`
	PrecipitationMM *float64 `json:"precipitation_mm,omitempty"`
	HumidityPct     *float64 `json:"humidity_pct,omitempty"`
	RainMM          *float64 `json:"rain_mm,omitempty"`
}

// DailyForecast is one day of the weather outlook.
type DailyForecast struct {
	Date            string   `json:"date" validate:"required"`
	TmaxC           *float64 `json:"tmax_c,omitempty"`
	TminC           *float64 `json:"tmin_c,omitempty"`
	PrecipMM        *float64 `json:"precip_mm,omitempty"`
	HumidityMeanPct *float64 `json:"humidity_mean_pct,omitempty"`
	RainMM          *float64 `json:"rain_mm,omitempty"`
	RainChancePct   *float64 `json:"rain_chance_pct,omitempty"`
}

// WeatherReport is the weather snapshot cached per location.
type WeatherReport struct {
	Latitude           float64           `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64           `json:"longitude" validate:"gte=-180,lte=180"`
	Current            CurrentConditions `json:"current"`
	Daily              []DailyForecast   `json:"daily,omitempty" validate:"dive"`
	Next24hTotalRainMM *float64          `json:"next24h_total_rain_mm,omitempty"`
}

// SoilLayer holds SoilGrids properties for one depth band.
type SoilLayer struct {
	DepthCMFrom     int      `json:"depth_cm_from"`
	DepthCMTo       int      `json:"depth_cm_to"`
	PHH2O           *float64 `json:"ph_h2o"`
	SOCGPerKg       *float64 `json:"soc_g_per_kg"`
	NitrogenGPerKg  *float64 `json:"nitrogen_g_per_kg"`
	ClayGPerKg      *float64 `json:"clay_g_per_kg"`
	SandGPerKg      *float64 `json:"sand_g_per_kg"`
	SiltGPerKg      *float64 `json:"silt_g_per_kg,omitempty"`
}

// SoilReport is the soil lookup for a coordinate. Topsoil may be absent.
type SoilReport struct {
	Latitude          float64     `json:"latitude"`
	Longitude         float64     `json:"longitude"`
	Layers            []SoilLayer `json:"layers,omitempty"`
	Topsoil           *SoilLayer  `json:"topsoil"`
	ResolvedLatitude  *float64    `json:"resolved_latitude,omitempty"`
	ResolvedLongitude *float64    `json:"resolved_longitude,omitempty"`
	ResolvedDistanceM *float64    `json:"resolved_distance_m,omitempty"`
}

// Clone returns a deep copy of the report.
func (r WeatherReport) Clone() WeatherReport {
	out := r
	out.Current = r.Current.clone()
	out.Next24hTotalRainMM = cloneFloat(r.Next24hTotalRainMM)
	if r.Daily != nil {
		out.Daily = make([]DailyForecast, len(r.Daily))
		for i, d := range r.Daily {
			out.Daily[i] = d.clone()
		}
	}
	return out
}

func (c CurrentConditions) clone() CurrentConditions {
	return CurrentConditions{
		TemperatureC:    cloneFloat(c.TemperatureC),
		WindSpeedMS:     cloneFloat(c.WindSpeedMS),
		PrecipitationMM: cloneFloat(c.PrecipitationMM),
		HumidityPct:     cloneFloat(c.HumidityPct),
		RainMM:          cloneFloat(c.RainMM),
	}
}

func (d DailyForecast) clone() DailyForecast {
	out := d
	out.TmaxC = cloneFloat(d.TmaxC)
	out.TminC = cloneFloat(d.TminC)
	out.PrecipMM = cloneFloat(d.PrecipMM)
	out.HumidityMeanPct = cloneFloat(d.HumidityMeanPct)
	out.RainMM = cloneFloat(d.RainMM)
	out.RainChancePct = cloneFloat(d.RainChancePct)
	return out
}
