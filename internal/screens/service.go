// Package screens orchestrates the data each screen of the app needs: which
// coordinate to use, whether cached results can be served, and which state
// transitions follow a gateway call.
package screens

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/location"
	"github.com/i474232898/krishimitra-sync/internal/prefs"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

const defaultBackgroundTimeout = 30 * time.Second

// Deps are the collaborators of a Service. Logger, Device, Now and
// BackgroundTimeout are optional.
type Deps struct {
	Store             *store.Store
	Gateway           domain.Gateway
	Resolver          *location.Resolver
	Device            domain.DeviceLocator
	Logger            logrus.FieldLogger
	BackgroundTimeout time.Duration
	Now               func() time.Time
}

// Service serves every screen from one shared store.
type Service struct {
	store     *store.Store
	gw        domain.Gateway
	resolver  *location.Resolver
	device    domain.DeviceLocator
	logger    logrus.FieldLogger
	bgTimeout time.Duration
	now       func() time.Time
	validate  *validator.Validate

	weather *resource[domain.WeatherReport]
	recos   *resource[[]domain.CropReco]

	wg sync.WaitGroup

	prefsMu sync.Mutex
	cascade *prefs.Cascade
}

func NewService(d Deps) *Service {
	s := &Service{
		store:     d.Store,
		gw:        d.Gateway,
		resolver:  d.Resolver,
		device:    d.Device,
		logger:    d.Logger,
		bgTimeout: d.BackgroundTimeout,
		now:       d.Now,
		validate:  newValidator(),
	}
	if s.logger == nil {
		s.logger = common.DiscardLogger()
	}
	if s.resolver == nil {
		s.resolver = location.NewResolver(nil, s.logger)
	}
	if s.bgTimeout <= 0 {
		s.bgTimeout = defaultBackgroundTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.weather = &resource[domain.WeatherReport]{
		name:  "weather",
		entry: func(st store.State) cache.Entry[domain.WeatherReport] { return st.Weather },
		action: func(key string, data domain.WeatherReport, at time.Time) store.Action {
			return store.SetWeather{Key: key, Data: data, FetchedAt: at}
		},
	}
	s.recos = &resource[[]domain.CropReco]{
		name:  "recommendations",
		entry: func(st store.State) cache.Entry[[]domain.CropReco] { return st.Reco },
		action: func(key string, data []domain.CropReco, at time.Time) store.Action {
			return store.SetReco{Key: key, Data: data, FetchedAt: at}
		},
	}

	s.store.Subscribe(s.onStateChange)
	return s
}

// Wait blocks until background refreshes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

type locationInputs struct {
	hasLat, hasLon  bool
	lat, lon        float64
	district, state string
}

func inputsOf(f *domain.Farm) locationInputs {
	if f == nil {
		return locationInputs{}
	}
	in := locationInputs{district: f.District, state: f.State}
	if f.Latitude != nil {
		in.hasLat, in.lat = true, *f.Latitude
	}
	if f.Longitude != nil {
		in.hasLon, in.lon = true, *f.Longitude
	}
	return in
}

func userID(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// onStateChange retires in-flight refreshes whose inputs no longer match the
// state, so a slow answer for the old location never lands.
func (s *Service) onStateChange(prev, next store.State) {
	moved := inputsOf(prev.Farm) != inputsOf(next.Farm)
	if moved {
		s.weather.invalidate()
		s.logger.Debug("farm location changed, weather refresh invalidated")
	}
	if moved || userID(prev.User) != userID(next.User) {
		s.recos.invalidate()
	}
}

// onboarded returns the current user and farm or ErrNotOnboarded.
func (s *Service) onboarded() (domain.User, domain.Farm, error) {
	snap := s.store.Snapshot()
	if snap.User == nil || snap.Farm == nil {
		return domain.User{}, domain.Farm{}, domain.ErrNotOnboarded
	}
	return *snap.User, *snap.Farm, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// check validates in and turns the first violation into a ValidationError
// with a message for the farmer.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalid("", err.Error())
	}
	fe := verrs[0]
	return domain.Invalid(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "min":
		return label + " must be at least " + fe.Param() + unit + "."
	case "max":
		return label + " must be at most " + fe.Param() + unit + "."
	case "gt":
		return label + " must be greater than " + fe.Param() + "."
	case "gte", "lte":
		return label + " is out of range."
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	}
	return label + " is invalid."
}
