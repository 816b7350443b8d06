package prefs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

type fakeMandis struct {
	mu    sync.Mutex
	lists map[string][]string
	err   error
	gate  chan struct{}
	calls int
}

func (f *fakeMandis) Mandis(ctx context.Context, district string) ([]string, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[district], nil
}

type fakeWriter struct {
	calls int
	got   domain.Prefs
	err   error
}

func (w *fakeWriter) SetPrefs(_ context.Context, _ string, p domain.Prefs) error {
	w.calls++
	w.got = p
	return w.err
}

func TestSetDistrict_ClearsSelectionNotInNewList(t *testing.T) {
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A", "Market B"}}}
	c := NewCascade(m, nil)

	v := c.Reset(context.Background(), domain.Farm{District: "Pune", PreferredMandi: "Market C"})

	if v.Phase != PhaseLoaded {
		t.Fatalf("phase = %s, want loaded", v.Phase)
	}
	if v.Mandi != "" {
		t.Errorf("mandi = %q, want cleared", v.Mandi)
	}
	if len(v.Mandis) != 2 {
		t.Errorf("mandis = %v", v.Mandis)
	}
}

func TestSetDistrict_KeepsSelectionInNewList(t *testing.T) {
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A", "Market B"}}}
	c := NewCascade(m, nil)

	v := c.Reset(context.Background(), domain.Farm{District: "Pune", PreferredMandi: "Market B"})
	if v.Mandi != "Market B" {
		t.Errorf("mandi = %q, want Market B", v.Mandi)
	}
}

func TestSetDistrict_EmptyClearsSynchronously(t *testing.T) {
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A"}}}
	c := NewCascade(m, nil)
	c.Reset(context.Background(), domain.Farm{District: "Pune"})
	if _, err := c.SelectMandi("Market A"); err != nil {
		t.Fatalf("SelectMandi() error = %v", err)
	}

	v := c.SetDistrict(context.Background(), "")

	if v.Phase != PhaseEmpty || len(v.Mandis) != 0 || v.Mandi != "" {
		t.Errorf("view = %+v, want empty list and no mandi", v)
	}
	if v.MandiEnabled || v.MandiPlaceholder != "Set district first" {
		t.Errorf("mandi selector = enabled %v placeholder %q", v.MandiEnabled, v.MandiPlaceholder)
	}
}

func TestSetDistrict_EmptyWinsOverInFlightLoad(t *testing.T) {
	gate := make(chan struct{})
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A", "Market B"}}, gate: gate}
	c := NewCascade(m, nil)

	done := make(chan View)
	go func() { done <- c.SetDistrict(context.Background(), "Pune") }()

	waitFor(t, func() bool { return c.View().Phase == PhaseLoading })

	v := c.SetDistrict(context.Background(), "")
	if v.Phase != PhaseEmpty || len(v.Mandis) != 0 || v.District != "" {
		t.Fatalf("view = %+v, want cleared before the load resolves", v)
	}

	close(gate)
	<-done

	v = c.View()
	if v.Phase != PhaseEmpty || len(v.Mandis) != 0 || v.Mandi != "" {
		t.Errorf("superseded load wrote into the cascade: %+v", v)
	}
}

func TestSetDistrict_FailureKeepsPreviousList(t *testing.T) {
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A"}}}
	c := NewCascade(m, nil)
	c.Reset(context.Background(), domain.Farm{District: "Pune", PreferredMandi: "Market A"})

	m.err = errors.Join(domain.ErrUnavailable, errors.New("dial tcp"))
	v := c.SetDistrict(context.Background(), "Nashik")

	if v.Phase != PhaseEmpty {
		t.Errorf("phase = %s, want empty after failure", v.Phase)
	}
	if len(v.Mandis) != 1 || v.Mandis[0] != "Market A" {
		t.Errorf("mandis = %v, want previous list kept", v.Mandis)
	}
	if v.Notice != "Failed to load mandis" {
		t.Errorf("notice = %q", v.Notice)
	}
}

func TestSetDistrict_SameDistrictDoesNotReload(t *testing.T) {
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A"}}}
	c := NewCascade(m, nil)
	c.SetDistrict(context.Background(), "Pune")
	c.SetDistrict(context.Background(), " Pune ")

	if m.calls != 1 {
		t.Errorf("mandi loads = %d, want 1", m.calls)
	}
}

func TestSelectMandi(t *testing.T) {
	m := &fakeMandis{lists: map[string][]string{"Pune": {"Market A"}}}
	c := NewCascade(m, nil)

	if _, err := c.SelectMandi("Market A"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("select without district: err = %v", err)
	}

	c.SetDistrict(context.Background(), "Pune")
	if _, err := c.SelectMandi("Market Z"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("select outside list: err = %v", err)
	}
	v, err := c.SelectMandi("Market A")
	if err != nil || v.Mandi != "Market A" {
		t.Errorf("SelectMandi() = %+v, %v", v, err)
	}
	if v, _ := c.SelectMandi(""); v.Mandi != "" {
		t.Error("empty selection should clear")
	}
}

func TestSetCommodities(t *testing.T) {
	c := NewCascade(&fakeMandis{}, nil)

	v, err := c.SetCommodities([]string{"Rice", " Wheat", "Rice", ""})
	if err != nil || len(v.Commodities) != 2 {
		t.Fatalf("SetCommodities() = %v, %v", v.Commodities, err)
	}

	many := make([]string, MaxCommodities+1)
	for i := range many {
		many[i] = string(rune('A' + i))
	}
	if _, err := c.SetCommodities(many); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestView_DistrictSuggestions(t *testing.T) {
	c := NewCascade(&fakeMandis{lists: map[string][]string{}}, nil)
	c.SetMeta(domain.MarketMeta{Districts: []string{"Pune", "Purnia", "Nashik"}, Commodities: []string{"Onion"}})

	v := c.SetDistrict(context.Background(), "PU")
	if len(v.DistrictSuggestions) != 2 || v.CommodityOptions[0] != "Onion" {
		t.Errorf("view = %+v", v)
	}
}

func TestSave_WithoutFarmMakesNoCall(t *testing.T) {
	st := store.New(nil)
	w := &fakeWriter{}

	err := Save(context.Background(), st, w, Draft{Commodities: []string{"Rice"}})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Please create a farm profile first." {
		t.Fatalf("err = %v, want farm-profile validation error", err)
	}
	if w.calls != 0 {
		t.Errorf("SetPrefs calls = %d, want 0", w.calls)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	st := store.New(nil)
	st.Dispatch(store.SetFarm{Farm: domain.Farm{ID: "f-1", District: "Pune", PreferredCommodities: []string{"Onion"}}})
	w := &fakeWriter{}

	if err := Save(context.Background(), st, w, Draft{District: "Pune", Commodities: []string{"Rice", "Wheat"}, Mandi: "Market A"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f := st.Snapshot().Farm
	if len(f.PreferredCommodities) != 2 || f.PreferredCommodities[0] != "Rice" || f.PreferredCommodities[1] != "Wheat" {
		t.Errorf("commodities = %v", f.PreferredCommodities)
	}
	if f.PreferredMandi != "Market A" {
		t.Errorf("mandi = %q", f.PreferredMandi)
	}
	if w.got.Mandi != "Market A" || len(w.got.Commodities) != 2 {
		t.Errorf("remote prefs = %+v", w.got)
	}
}

func TestSave_PatchesChangedDistrictFirst(t *testing.T) {
	st := store.New(nil)
	st.Dispatch(store.SetFarm{Farm: domain.Farm{ID: "f-1", District: "Pune"}})

	var districts []string
	st.Subscribe(func(prev, next store.State) { districts = append(districts, next.Farm.District) })

	if err := Save(context.Background(), st, &fakeWriter{}, Draft{District: "Nashik", Commodities: []string{"Grapes"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(districts) != 2 || districts[0] != "Nashik" {
		t.Errorf("dispatch sequence = %v, want district patch then prefs patch", districts)
	}
}

func TestSave_RemoteFailureLeavesFarm(t *testing.T) {
	st := store.New(nil)
	st.Dispatch(store.SetFarm{Farm: domain.Farm{ID: "f-1", PreferredCommodities: []string{"Onion"}}})

	err := Save(context.Background(), st, &fakeWriter{err: domain.ErrUnavailable}, Draft{Commodities: []string{"Rice"}})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if got := st.Snapshot().Farm.PreferredCommodities; len(got) != 1 || got[0] != "Onion" {
		t.Errorf("commodities = %v, want unchanged", got)
	}
}

func TestSave_RejectsEmptyDraft(t *testing.T) {
	st := store.New(nil)
	st.Dispatch(store.SetFarm{Farm: domain.Farm{ID: "f-1"}})
	w := &fakeWriter{}

	if err := Save(context.Background(), st, w, Draft{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if w.calls != 0 {
		t.Errorf("SetPrefs calls = %d, want 0", w.calls)
	}
}

func TestCascadeSave_Notice(t *testing.T) {
	st := store.New(nil)
	st.Dispatch(store.SetFarm{Farm: domain.Farm{ID: "f-1"}})
	c := NewCascade(&fakeMandis{}, nil)
	c.SetCommodities([]string{"Rice"})

	v, err := c.Save(context.Background(), st, &fakeWriter{})
	if err != nil || v.Notice != "Preferences saved." {
		t.Errorf("Save() = %q, %v", v.Notice, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
