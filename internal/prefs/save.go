package prefs

import (
	"context"

	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

// Draft is a preference set about to be saved.
type Draft struct {
	District    string   `json:"district"`
	Commodities []string `json:"commodities"`
	Mandi       string   `json:"mandi"`
}

// Save writes d remotely and then into the farm held by st. A district that
// differs from the farm's is patched first, so every screen reading the farm
// sees the new district along with the new preferences.
func Save(ctx context.Context, st *store.Store, w domain.PrefsWriter, d Draft) error {
	snap := st.Snapshot()
	if snap.Farm == nil || snap.Farm.ID == "" {
		return domain.Invalid("farm", "Please create a farm profile first.")
	}
	commodities := domain.UniqueStrings(d.Commodities)
	if d.District == "" && len(commodities) == 0 {
		return domain.Invalid("preferences", "Choose a district or at least one crop.")
	}
	if len(commodities) > MaxCommodities {
		return domain.Invalid("commodities", "You can select up to 20 crops.")
	}

	if err := w.SetPrefs(ctx, snap.Farm.ID, domain.Prefs{Commodities: commodities, Mandi: d.Mandi}); err != nil {
		return err
	}

	if d.District != "" && d.District != snap.Farm.District {
		district := d.District
		st.Dispatch(store.UpdateFarmPartial{Patch: domain.FarmPatch{District: &district}})
	}
	mandi := d.Mandi
	st.Dispatch(store.UpdateFarmPartial{Patch: domain.FarmPatch{
		PreferredCommodities: &commodities,
		PreferredMandi:       &mandi,
	}})
	return nil
}

// Save saves the cascade's current draft and records the outcome as notice.
func (c *Cascade) Save(ctx context.Context, st *store.Store, w domain.PrefsWriter) (View, error) {
	if err := Save(ctx, st, w, c.Draft()); err != nil {
		c.Notify(domain.UserMessage(err))
		return c.View(), err
	}
	c.Notify("Preferences saved.")
	return c.View(), nil
}
