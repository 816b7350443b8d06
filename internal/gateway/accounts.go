package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

type userPayload struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	LanguagePref string `json:"language_pref,omitempty"`
}

type farmPayload struct {
	ID                   string   `json:"id,omitempty"`
	UserID               string   `json:"user_id"`
	Name                 string   `json:"name"`
	AreaHectares         *float64 `json:"area_hectares,omitempty"`
	Location             string   `json:"location,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	District             string   `json:"district,omitempty"`
	State                string   `json:"state,omitempty"`
	PreferredCommodities []string `json:"preferred_commodities"`
	PreferredMandi       *string  `json:"preferred_mandi"`
	RotationHistory      []string `json:"crop_rotation_history"`
}

type prefsPayload struct {
	PreferredCommodities []string `json:"preferred_commodities"`
	PreferredMandi       *string  `json:"preferred_mandi"`
}

// EnsureUserAndFarm registers the user and farm when their ids are empty and
// updates them otherwise.
func (c *Client) EnsureUserAndFarm(ctx context.Context, f domain.RegistrationFields) (domain.User, domain.Farm, error) {
	var user domain.User
	if f.UserID == "" {
		in := userPayload{Name: f.UserName, MobileNumber: f.Mobile, LanguagePref: f.Language}
		if err := c.sendJSON(ctx, http.MethodPost, "/api/users/register", in, &user); err != nil {
			return domain.User{}, domain.Farm{}, err
		}
	} else {
		path := "/api/users/" + url.PathEscape(f.UserID) + "/profile"
		if err := c.getJSON(ctx, path, nil, &user); err != nil {
			return domain.User{}, domain.Farm{}, err
		}
	}
	if user.ID == "" {
		return domain.User{}, domain.Farm{}, fmt.Errorf("%w: user response without id", domain.ErrPartialData)
	}

	in := farmPayload{
		ID:                   f.FarmID,
		UserID:               user.ID,
		Name:                 f.FarmName,
		AreaHectares:         f.FarmAreaHectares,
		Location:             f.Location,
		Latitude:             f.Latitude,
		Longitude:            f.Longitude,
		District:             f.District,
		State:                f.State,
		PreferredCommodities: nonNil(f.Commodities),
		PreferredMandi:       optional(f.Mandi),
		RotationHistory:      nonNil(f.RotationHistory),
	}
	var farm domain.Farm
	if f.FarmID == "" {
		if err := c.sendJSON(ctx, http.MethodPost, "/api/farms/register", in, &farm); err != nil {
			return domain.User{}, domain.Farm{}, err
		}
	} else {
		path := "/api/farms/" + url.PathEscape(f.FarmID)
		if err := c.sendJSON(ctx, http.MethodPut, path, in, &farm); err != nil {
			return domain.User{}, domain.Farm{}, err
		}
	}
	if farm.ID == "" {
		return domain.User{}, domain.Farm{}, fmt.Errorf("%w: farm response without id", domain.ErrPartialData)
	}
	if farm.UserID == "" {
		farm.UserID = user.ID
	}
	return user, farm, nil
}

// SetPrefs overwrites the farm's preferred commodities and mandi.
func (c *Client) SetPrefs(ctx context.Context, farmID string, prefs domain.Prefs) error {
	if farmID == "" {
		return domain.Invalid("farm_id", "Please create a farm profile first.")
	}
	in := prefsPayload{
		PreferredCommodities: nonNil(prefs.Commodities),
		PreferredMandi:       optional(prefs.Mandi),
	}
	return c.sendJSON(ctx, http.MethodPut, "/api/farms/"+url.PathEscape(farmID)+"/preferences", in, nil)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
