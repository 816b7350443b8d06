package screens

import (
	"context"

	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/prefs"
)

const metaNotice = "Failed to load metadata"

// OpenPreferences starts a fresh cascade for the preferences view, seeded
// from the farm. A metadata failure leaves the options empty and is shown as
// a notice.
func (s *Service) OpenPreferences(ctx context.Context) (prefs.View, error) {
	_, farm, err := s.onboarded()
	if err != nil {
		return prefs.View{}, err
	}

	c := prefs.NewCascade(s.gw, s.logger)
	meta, metaErr := s.gw.MarketMeta(ctx)
	if metaErr != nil {
		common.LogWarn(s.logger, "market metadata failed", metaErr, nil)
	} else {
		c.SetMeta(meta)
	}

	s.prefsMu.Lock()
	s.cascade = c
	s.prefsMu.Unlock()

	view := c.Reset(ctx, farm)
	if metaErr != nil && view.Notice == "" {
		c.Notify(metaNotice)
		view = c.View()
	}
	return view, nil
}

// preferences returns the open cascade, opening one when none exists.
func (s *Service) preferences(ctx context.Context) (*prefs.Cascade, error) {
	s.prefsMu.Lock()
	c := s.cascade
	s.prefsMu.Unlock()
	if c != nil {
		return c, nil
	}
	if _, err := s.OpenPreferences(ctx); err != nil {
		return nil, err
	}
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	return s.cascade, nil
}

func (s *Service) PreferencesView(ctx context.Context) (prefs.View, error) {
	c, err := s.preferences(ctx)
	if err != nil {
		return prefs.View{}, err
	}
	return c.View(), nil
}

func (s *Service) SetPreferenceDistrict(ctx context.Context, district string) (prefs.View, error) {
	c, err := s.preferences(ctx)
	if err != nil {
		return prefs.View{}, err
	}
	return c.SetDistrict(ctx, district), nil
}

func (s *Service) SelectPreferenceMandi(ctx context.Context, mandi string) (prefs.View, error) {
	c, err := s.preferences(ctx)
	if err != nil {
		return prefs.View{}, err
	}
	return c.SelectMandi(mandi)
}

func (s *Service) SetPreferenceCommodities(ctx context.Context, list []string) (prefs.View, error) {
	c, err := s.preferences(ctx)
	if err != nil {
		return prefs.View{}, err
	}
	return c.SetCommodities(list)
}

// SavePreferences writes the draft remotely and patches the farm.
func (s *Service) SavePreferences(ctx context.Context) (prefs.View, error) {
	if s.store.Snapshot().Farm == nil {
		return prefs.View{}, prefs.Save(ctx, s.store, s.gw, prefs.Draft{})
	}
	c, err := s.preferences(ctx)
	if err != nil {
		return prefs.View{}, err
	}
	return c.Save(ctx, s.store, s.gw)
}

// ResetPreferences discards the draft and re-seeds it from the farm.
func (s *Service) ResetPreferences(ctx context.Context) (prefs.View, error) {
	_, farm, err := s.onboarded()
	if err != nil {
		return prefs.View{}, err
	}
	c, err := s.preferences(ctx)
	if err != nil {
		return prefs.View{}, err
	}
	return c.Reset(ctx, farm), nil
}
