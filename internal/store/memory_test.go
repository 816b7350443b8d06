package store

import (
	"testing"
	"time"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateFarmPartial_WithoutFarmIsNoop(t *testing.T) {
	s := New(nil)
	calls := 0
	s.Subscribe(func(prev, next State) { calls++ })

	if s.Dispatch(UpdateFarmPartial{Patch: domain.FarmPatch{District: ptr("Pune")}}) {
		t.Error("Dispatch reported a change")
	}
	if s.Snapshot().Farm != nil {
		t.Fatal("farm should still be absent")
	}
	if calls != 0 {
		t.Errorf("listener called %d times, want 0", calls)
	}
}

func TestUpdateFarmPartial_MergesShallowly(t *testing.T) {
	s := New(nil)
	s.Dispatch(SetFarm{Farm: domain.Farm{
		ID:                   "f1",
		Name:                 "North field",
		District:             "Pune",
		State:                "Maharashtra",
		PreferredCommodities: []string{"Onion"},
		PreferredMandi:       "Market B",
	}})

	s.Dispatch(UpdateFarmPartial{Patch: domain.FarmPatch{
		PreferredCommodities: &[]string{"Wheat", "Rice", "Wheat"},
		PreferredMandi:       ptr(""),
	}})

	f := s.Snapshot().Farm
	if f.Name != "North field" || f.District != "Pune" {
		t.Errorf("untouched fields changed: %+v", f)
	}
	if len(f.PreferredCommodities) != 2 || f.PreferredCommodities[0] != "Wheat" || f.PreferredCommodities[1] != "Rice" {
		t.Errorf("commodities = %v, want [Wheat Rice]", f.PreferredCommodities)
	}
	if f.PreferredMandi != "" {
		t.Errorf("mandi = %q, want cleared", f.PreferredMandi)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(nil)
	s.Dispatch(SetFarm{Farm: domain.Farm{ID: "f1", PreferredCommodities: []string{"Onion"}, Latitude: ptr(18.52)}})

	snap := s.Snapshot()
	snap.Farm.PreferredCommodities[0] = "Garlic"
	*snap.Farm.Latitude = 0
	snap.Farm.Name = "changed"

	f := s.Snapshot().Farm
	if f.PreferredCommodities[0] != "Onion" || *f.Latitude != 18.52 || f.Name != "" {
		t.Errorf("store mutated through snapshot: %+v", f)
	}
}

func TestSnapshot_WeatherIsACopy(t *testing.T) {
	s := New(nil)
	dispatched := domain.WeatherReport{
		Current:            domain.CurrentConditions{TemperatureC: ptr(25.0), HumidityPct: ptr(60.0)},
		Daily:              []domain.DailyForecast{{Date: "2025-10-09", TmaxC: ptr(31.0), RainMM: ptr(2.0)}},
		Next24hTotalRainMM: ptr(4.0),
	}
	s.Dispatch(SetWeather{Key: "a", Data: dispatched, FetchedAt: time.Date(2025, 10, 9, 8, 0, 0, 0, time.UTC)})

	snap := s.Snapshot()
	*snap.Weather.Data.Current.TemperatureC = 99
	*snap.Weather.Data.Daily[0].TmaxC = 99
	*snap.Weather.Data.Next24hTotalRainMM = 99
	*dispatched.Current.HumidityPct = 99
	*dispatched.Daily[0].RainMM = 99

	w := s.Snapshot().Weather.Data
	if *w.Current.TemperatureC != 25 || *w.Current.HumidityPct != 60 {
		t.Errorf("current conditions mutated: %+v", w.Current)
	}
	if *w.Daily[0].TmaxC != 31 || *w.Daily[0].RainMM != 2 || *w.Next24hTotalRainMM != 4 {
		t.Errorf("daily forecast mutated: %+v", w.Daily[0])
	}
}

func TestSetWeather_ReplacesEntryWholesale(t *testing.T) {
	s := New(nil)
	t0 := time.Date(2025, 10, 9, 8, 0, 0, 0, time.UTC)

	s.Dispatch(SetWeather{Key: "a", Data: domain.WeatherReport{Latitude: 1}, FetchedAt: t0})
	s.Dispatch(SetWeather{Key: "b", Data: domain.WeatherReport{Latitude: 2}, FetchedAt: t0.Add(time.Minute)})

	w := s.Snapshot().Weather
	if w.Key != "b" || w.Data.Latitude != 2 || !w.FetchedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("weather = %+v, want entry b", w)
	}
}

func TestSetReco_IgnoresIncompleteEntry(t *testing.T) {
	s := New(nil)
	s.Dispatch(SetReco{Key: "a", Data: []domain.CropReco{{Crop: "Rice"}}})

	if s.Snapshot().Reco.Present() {
		t.Error("entry without timestamp must not be recorded")
	}
}

func TestSubscribe_ReceivesPrevAndNext(t *testing.T) {
	s := New(nil)
	s.Dispatch(SetUser{User: domain.User{ID: "u1", Name: "Asha"}})

	var gotPrev, gotNext State
	s.Subscribe(func(prev, next State) { gotPrev, gotNext = prev, next })
	s.Dispatch(SetUser{User: domain.User{ID: "u2", Name: "Ravi"}})

	if gotPrev.User == nil || gotPrev.User.ID != "u1" {
		t.Errorf("prev user = %+v, want u1", gotPrev.User)
	}
	if gotNext.User == nil || gotNext.User.ID != "u2" {
		t.Errorf("next user = %+v, want u2", gotNext.User)
	}
}

func TestSubscribe_ListenerMayDispatch(t *testing.T) {
	s := New(nil)
	s.Subscribe(func(prev, next State) {
		if next.Farm != nil && next.Farm.Name == "" {
			s.Dispatch(UpdateFarmPartial{Patch: domain.FarmPatch{Name: ptr("My farm")}})
		}
	})

	s.Dispatch(SetFarm{Farm: domain.Farm{ID: "f1"}})

	if got := s.Snapshot().Farm.Name; got != "My farm" {
		t.Errorf("name = %q, want My farm", got)
	}
}
