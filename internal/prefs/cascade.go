// Package prefs holds the district -> mandi cascade behind the preferences
// view and the save path that writes accepted preferences into the farm.
package prefs

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Phase is the state of the mandi list for the current district.
type Phase string

const (
	PhaseEmpty   Phase = "empty"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
)

const (
	MaxCommodities        = 20
	MaxDistrictSuggestion = 50
)

// View is what the preferences form renders.
type View struct {
	District            string   `json:"district"`
	DistrictSuggestions []string `json:"district_suggestions"`
	Phase               Phase    `json:"phase"`
	Mandis              []string `json:"mandis"`
	Mandi               string   `json:"mandi"`
	MandiEnabled        bool     `json:"mandi_enabled"`
	MandiPlaceholder    string   `json:"mandi_placeholder"`
	Commodities         []string `json:"commodities"`
	CommodityOptions    []string `json:"commodity_options"`
	CanSave             bool     `json:"can_save"`
	Notice              string   `json:"notice,omitempty"`
}

// Cascade keeps the selected mandi consistent with the selected district. A
// mandi is never left selected for a district whose list does not contain it.
type Cascade struct {
	mandis domain.MandiLister
	logger logrus.FieldLogger
	loads  cache.Guard

	mu          sync.Mutex
	district    string
	phase       Phase
	mandiList   []string
	mandi       string
	commodities []string
	options     []string
	districts   []string
	notice      string
}

// NewCascade creates an empty cascade. Call Reset to seed it from a farm.
func NewCascade(mandis domain.MandiLister, logger logrus.FieldLogger) *Cascade {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Cascade{mandis: mandis, logger: logger, phase: PhaseEmpty, mandiList: []string{}}
}

// SetMeta stores the commodity options and the district list used for
// suggestions.
func (c *Cascade) SetMeta(meta domain.MarketMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = append([]string(nil), meta.Commodities...)
	c.districts = append([]string(nil), meta.Districts...)
}

// Reset re-seeds the form from farm and loads the mandis of its district.
func (c *Cascade) Reset(ctx context.Context, farm domain.Farm) View {
	c.mu.Lock()
	c.commodities = domain.UniqueStrings(farm.PreferredCommodities)
	c.mandi = farm.PreferredMandi
	c.notice = ""
	c.mu.Unlock()

	return c.changeDistrict(ctx, farm.District, true)
}

// SetDistrict changes the district. An empty district clears the mandi list
// and selection before returning, even while a load is in flight. A
// non-empty district loads its mandis and blocks until the load finishes or
// is superseded.
func (c *Cascade) SetDistrict(ctx context.Context, district string) View {
	return c.changeDistrict(ctx, district, false)
}

func (c *Cascade) changeDistrict(ctx context.Context, district string, force bool) View {
	district = strings.TrimSpace(district)

	c.mu.Lock()
	if district == "" {
		c.loads.Invalidate()
		c.district = ""
		c.phase = PhaseEmpty
		c.mandiList = []string{}
		c.mandi = ""
		v := c.viewLocked()
		c.mu.Unlock()
		return v
	}
	if !force && district == c.district && c.phase != PhaseEmpty {
		v := c.viewLocked()
		c.mu.Unlock()
		return v
	}
	ticket := c.loads.Begin()
	c.district = district
	c.phase = PhaseLoading
	c.mu.Unlock()

	list, err := c.mandis.Mandis(ctx, district)

	// The load is committed even if the caller went away; only a newer
	// district change supersedes it.
	ticket.Commit(context.Background(), func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// Begin and Invalidate only happen under c.mu, so this is final.
		if !ticket.Live() {
			return
		}
		if err != nil {
			common.LogWarn(c.logger, "mandi list load failed", err, logrus.Fields{"district": district})
			c.phase = PhaseEmpty
			c.notice = failureNotice(err)
			return
		}
		c.phase = PhaseLoaded
		c.mandiList = domain.UniqueStrings(list)
		if c.mandi != "" && !slices.Contains(c.mandiList, c.mandi) {
			c.mandi = ""
		}
	})
	if !ticket.Live() {
		c.logger.WithField("district", district).Debug("mandi list superseded")
	}
	return c.View()
}

// SelectMandi selects m from the loaded list. An empty m clears the selection.
func (c *Cascade) SelectMandi(m string) (View, error) {
	m = strings.TrimSpace(m)

	c.mu.Lock()
	defer c.mu.Unlock()
	if m == "" {
		c.mandi = ""
		return c.viewLocked(), nil
	}
	if c.district == "" {
		return c.viewLocked(), domain.Invalid("mandi", "Set district first.")
	}
	if c.phase != PhaseLoaded || !slices.Contains(c.mandiList, m) {
		return c.viewLocked(), domain.Invalid("mandi", "Choose a mandi listed for "+c.district+".")
	}
	c.mandi = m
	return c.viewLocked(), nil
}

// SetCommodities replaces the selected commodities.
func (c *Cascade) SetCommodities(list []string) (View, error) {
	list = domain.UniqueStrings(list)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(list) > MaxCommodities {
		return c.viewLocked(), domain.Invalid("commodities", "You can select up to 20 crops.")
	}
	c.commodities = list
	return c.viewLocked(), nil
}

// Draft returns the values a save would write.
func (c *Cascade) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Draft{
		District:    c.district,
		Commodities: append([]string(nil), c.commodities...),
		Mandi:       c.mandi,
	}
}

// Notify records a message shown with the next view.
func (c *Cascade) Notify(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = msg
}

func (c *Cascade) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Cascade) viewLocked() View {
	v := View{
		District:            c.district,
		DistrictSuggestions: common.FilterContains(c.districts, c.district, MaxDistrictSuggestion),
		Phase:               c.phase,
		Mandis:              append([]string{}, c.mandiList...),
		Mandi:               c.mandi,
		MandiEnabled:        c.district != "" && c.phase != PhaseLoading,
		MandiPlaceholder:    "Set district first",
		Commodities:         append([]string{}, c.commodities...),
		CommodityOptions:    append([]string{}, c.options...),
		CanSave:             c.district != "" || len(c.commodities) > 0,
		Notice:              c.notice,
	}
	if c.district != "" {
		v.MandiPlaceholder = "None"
	}
	return v
}

func failureNotice(err error) string {
	msg := domain.UserMessage(err)
	if common.HasAny(msg, "unreachable", "context canceled") {
		return "Failed to load mandis"
	}
	return msg
}
