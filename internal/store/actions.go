package store

import (
	"time"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// State is the single state tree read by every screen.
type State struct {
	User    *domain.User
	Farm    *domain.Farm
	Weather cache.Entry[domain.WeatherReport]
	Reco    cache.Entry[[]domain.CropReco]
}

// Action is one of the named transitions below. The set is closed: apply is
// unexported, so no other package can mutate State.
type Action interface {
	Name() string
	apply(s *State) bool
}

// SetUser replaces the user.
type SetUser struct{ User domain.User }

// SetFarm replaces the farm.
type SetFarm struct{ Farm domain.Farm }

// UpdateFarmPartial shallow-merges Patch into the existing farm. Without a
// farm it is a no-op.
type UpdateFarmPartial struct{ Patch domain.FarmPatch }

// SetWeather replaces the weather entry wholesale.
type SetWeather struct {
	Key       string
	Data      domain.WeatherReport
	FetchedAt time.Time
}

// SetReco replaces the crop recommendation entry wholesale.
type SetReco struct {
	Key       string
	Data      []domain.CropReco
	FetchedAt time.Time
}

func (SetUser) Name() string           { return "SET_USER" }
func (SetFarm) Name() string           { return "SET_FARM" }
func (UpdateFarmPartial) Name() string { return "UPDATE_FARM_PARTIAL" }
func (SetWeather) Name() string        { return "SET_WEATHER" }
func (SetReco) Name() string           { return "SET_RECO" }

func (a SetUser) apply(s *State) bool {
	u := a.User
	s.User = &u
	return true
}

func (a SetFarm) apply(s *State) bool {
	f := a.Farm.Clone()
	f.PreferredCommodities = domain.UniqueStrings(f.PreferredCommodities)
	s.Farm = &f
	return true
}

func (a UpdateFarmPartial) apply(s *State) bool {
	if s.Farm == nil {
		return false
	}
	f := s.Farm.Clone()
	if !a.Patch.Apply(&f) {
		return false
	}
	s.Farm = &f
	return true
}

func (a SetWeather) apply(s *State) bool {
	if a.Key == "" || a.FetchedAt.IsZero() {
		return false
	}
	s.Weather = cache.NewEntry(a.Key, a.Data.Clone(), a.FetchedAt)
	return true
}

func (a SetReco) apply(s *State) bool {
	if a.Key == "" || a.FetchedAt.IsZero() {
		return false
	}
	s.Reco = cache.NewEntry(a.Key, cloneRecos(a.Data), a.FetchedAt)
	return true
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Farm != nil {
		f := s.Farm.Clone()
		out.Farm = &f
	}
	out.Reco.Data = cloneRecos(s.Reco.Data)
	out.Weather.Data = s.Weather.Data.Clone()
	return out
}

func cloneRecos(in []domain.CropReco) []domain.CropReco {
	if in == nil {
		return nil
	}
	out := make([]domain.CropReco, len(in))
	copy(out, in)
	return out
}
