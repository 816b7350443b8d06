package screens

import (
	"context"
	"errors"
	"strings"

	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/geocoding"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

const gpsNotice = "Could not access GPS. Please enter manually."

// Session is what the app needs at start-up to choose its first screen.
type Session struct {
	User       *domain.User `json:"user"`
	Farm       *domain.Farm `json:"farm"`
	Onboarded  bool         `json:"onboarded"`
	StartRoute string       `json:"start_route"`
}

// OnboardingInput is the registration form. Crops is a comma separated list
// of past crops.
type OnboardingInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Mobile       string   `json:"mobile" validate:"required,min=5,max=30"`
	Language     string   `json:"language" validate:"omitempty,oneof=en hi bn te mr ta ur gu kn pa"`
	Village      string   `json:"village"`
	District     string   `json:"district" validate:"required,min=2"`
	State        string   `json:"state" validate:"required,min=2"`
	AreaHectares *float64 `json:"area_hectares" validate:"omitempty,gte=0"`
	Crops        string   `json:"crops"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// ProfileInput edits an existing user and farm.
type ProfileInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Mobile       string   `json:"mobile" validate:"required,min=5,max=30"`
	Language     string   `json:"language" validate:"omitempty,oneof=en hi bn te mr ta ur gu kn pa"`
	FarmName     string   `json:"farm_name" validate:"required,max=200"`
	AreaHectares *float64 `json:"area_hectares" validate:"omitempty,gte=0"`
	District     string   `json:"district" validate:"required,min=2"`
	State        string   `json:"state" validate:"required,min=2"`
}

// GPSFix is the device position offered to pre-fill the form. When the
// device refuses, Notice is set and no coordinate is returned.
type GPSFix struct {
	Coordinate *domain.Coordinate `json:"coordinate,omitempty"`
	Notice     string             `json:"notice,omitempty"`
}

func (s *Service) Session() Session {
	snap := s.store.Snapshot()
	sess := Session{User: snap.User, Farm: snap.Farm, StartRoute: "/"}
	if snap.User != nil && snap.Farm != nil {
		sess.Onboarded = true
		sess.StartRoute = "/home"
	}
	return sess
}

// Onboard registers the user and farm. A session that is already onboarded
// is returned as is.
func (s *Service) Onboard(ctx context.Context, in OnboardingInput) (Session, error) {
	if sess := s.Session(); sess.Onboarded {
		return sess, nil
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Village = strings.TrimSpace(in.Village)
	in.District = strings.TrimSpace(in.District)
	in.State = strings.TrimSpace(in.State)
	if err := s.check(in); err != nil {
		return Session{}, err
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return Session{}, domain.Invalid("latitude", "Latitude and longitude must be given together.")
	}
	lang := in.Language
	if lang == "" {
		lang = "en"
	}

	user, farm, err := s.gw.EnsureUserAndFarm(ctx, domain.RegistrationFields{
		UserName:         in.Name,
		Mobile:           in.Mobile,
		Language:         lang,
		FarmName:         in.Name + "'s Farm",
		FarmAreaHectares: in.AreaHectares,
		Location:         joinPlace(in.Village, in.District, in.State),
		District:         in.District,
		State:            in.State,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		RotationHistory:  domain.UniqueStrings(strings.Split(in.Crops, ",")),
	})
	if err != nil {
		return Session{}, err
	}

	s.store.Dispatch(store.SetUser{User: user})
	s.store.Dispatch(store.SetFarm{Farm: farm})
	s.logger.WithField("user_id", user.ID).Info("onboarding completed")
	return s.Session(), nil
}

// LocateDevice asks the device for a fix. Refusal is not an error.
func (s *Service) LocateDevice(ctx context.Context) GPSFix {
	if s.device == nil {
		return GPSFix{Notice: gpsNotice}
	}
	c, err := s.device.Locate(ctx)
	if err != nil {
		if !errors.Is(err, geocoding.ErrLocationDenied) {
			s.logger.WithError(err).Warn("device location failed")
		}
		return GPSFix{Notice: gpsNotice}
	}
	return GPSFix{Coordinate: &c}
}

// SaveProfile updates the existing records. Saved coordinates, preferences
// and rotation history are carried over unchanged.
func (s *Service) SaveProfile(ctx context.Context, in ProfileInput) (Session, error) {
	user, farm, err := s.onboarded()
	if err != nil {
		return Session{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.FarmName = strings.TrimSpace(in.FarmName)
	in.District = strings.TrimSpace(in.District)
	in.State = strings.TrimSpace(in.State)
	if err := s.check(in); err != nil {
		return Session{}, err
	}
	lang := in.Language
	if lang == "" {
		lang = user.LanguagePref
	}

	nextUser, nextFarm, err := s.gw.EnsureUserAndFarm(ctx, domain.RegistrationFields{
		UserID:           user.ID,
		FarmID:           farm.ID,
		UserName:         in.Name,
		Mobile:           in.Mobile,
		Language:         lang,
		FarmName:         in.FarmName,
		FarmAreaHectares: in.AreaHectares,
		Location:         joinPlace(in.District, in.State),
		District:         in.District,
		State:            in.State,
		Latitude:         farm.Latitude,
		Longitude:        farm.Longitude,
		RotationHistory:  farm.RotationHistory,
		Commodities:      farm.PreferredCommodities,
		Mandi:            farm.PreferredMandi,
	})
	if err != nil {
		return Session{}, err
	}

	s.store.Dispatch(store.SetUser{User: nextUser})
	s.store.Dispatch(store.SetFarm{Farm: nextFarm})
	return s.Session(), nil
}

func joinPlace(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
