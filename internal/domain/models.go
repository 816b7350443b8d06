package domain

import (
	"fmt"
	"strings"
)

// Coordinate is a latitude/longitude pair. It is always derived from a Farm or
// a device fix, never stored on its own.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// User is the registered farmer.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	LanguagePref string `json:"language_pref,omitempty"`
}

// Farm is the single farm owned by the current user.
// An empty PreferredMandi means no mandi is preferred.
type Farm struct {
	ID                   string   `json:"id"`
	UserID               string   `json:"user_id"`
	Name                 string   `json:"name"`
	AreaHectares         *float64 `json:"area_hectares,omitempty"`
	District             string   `json:"district,omitempty"`
	State                string   `json:"state,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	PreferredCommodities []string `json:"preferred_commodities"`
	PreferredMandi       string   `json:"preferred_mandi,omitempty"`
	RotationHistory      []string `json:"crop_rotation_history,omitempty"`
}

// StoredCoordinate returns the farm's saved coordinates when both are present.
func (f Farm) StoredCoordinate() (Coordinate, bool) {
	if f.Latitude == nil || f.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *f.Latitude, Lon: *f.Longitude}, true
}

// Place builds the free-text geocoding query "<district>[, <state>]".
func (f Farm) Place() string {
	district := strings.TrimSpace(f.District)
	if district == "" {
		return ""
	}
	if state := strings.TrimSpace(f.State); state != "" {
		return district + ", " + state
	}
	return district
}

// Clone returns a deep copy of the farm.
func (f Farm) Clone() Farm {
	out := f
	out.AreaHectares = cloneFloat(f.AreaHectares)
	out.Latitude = cloneFloat(f.Latitude)
	out.Longitude = cloneFloat(f.Longitude)
	out.PreferredCommodities = cloneStrings(f.PreferredCommodities)
	out.RotationHistory = cloneStrings(f.RotationHistory)
	return out
}

// FarmPatch is a shallow patch; nil fields are left untouched.
// A PreferredMandi pointing at "" clears the preference.
type FarmPatch struct {
	Name                 *string   `json:"name,omitempty"`
	AreaHectares         *float64  `json:"area_hectares,omitempty"`
	District             *string   `json:"district,omitempty"`
	State                *string   `json:"state,omitempty"`
	Latitude             *float64  `json:"latitude,omitempty"`
	Longitude            *float64  `json:"longitude,omitempty"`
	PreferredCommodities *[]string `json:"preferred_commodities,omitempty"`
	PreferredMandi       *string   `json:"preferred_mandi,omitempty"`
}

// Apply merges the patch into f and reports whether anything was set.
func (p FarmPatch) Apply(f *Farm) bool {
	changed := false
	if p.Name != nil {
		f.Name = *p.Name
		changed = true
	}
	if p.AreaHectares != nil {
		f.AreaHectares = cloneFloat(p.AreaHectares)
		changed = true
	}
	if p.District != nil {
		f.District = *p.District
		changed = true
	}
	if p.State != nil {
		f.State = *p.State
		changed = true
	}
	if p.Latitude != nil {
		f.Latitude = cloneFloat(p.Latitude)
		changed = true
	}
	if p.Longitude != nil {
		f.Longitude = cloneFloat(p.Longitude)
		changed = true
	}
	if p.PreferredCommodities != nil {
		f.PreferredCommodities = UniqueStrings(*p.PreferredCommodities)
		changed = true
	}
	if p.PreferredMandi != nil {
		f.PreferredMandi = *p.PreferredMandi
		changed = true
	}
	return changed
}

// Prefs is the payload of the farm preferences write.
type Prefs struct {
	Commodities []string
	Mandi       string
}

// RegistrationFields carries onboarding and profile-save input to
// EnsureUserAndFarm. Non-empty UserID/FarmID mean the records already exist.
type RegistrationFields struct {
	UserID           string
	FarmID           string
	UserName         string
	Mobile           string
	Language         string
	FarmName         string
	FarmAreaHectares *float64
	Location         string
	District         string
	State            string
	Latitude         *float64
	Longitude        *float64
	RotationHistory  []string
	Commodities      []string
	Mandi            string
}

// UniqueStrings trims entries, drops blanks and duplicates, keeping first
// occurrence order.
func UniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
