package cache

import (
	"strconv"
	"time"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// StaleWindow is how long a fetched result is served without revalidation.
const StaleWindow = 30 * time.Minute

// Key quantizes a coordinate to 4 decimals so repeated geocoding of the same
// place maps to the same entry. Values that round to zero share one key
// whatever their sign.
func Key(c domain.Coordinate) string {
	return quantize(c.Lat) + "," + quantize(c.Lon)
}

func quantize(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	if s == "-0.0000" {
		return "0.0000"
	}
	return s
}

// Entry is a keyed, timestamped result. The zero value is the empty entry;
// Data and FetchedAt are only set together, by NewEntry.
type Entry[T any] struct {
	Key       string
	Data      T
	FetchedAt time.Time
}

// NewEntry builds a present entry for key.
func NewEntry[T any](key string, data T, at time.Time) Entry[T] {
	return Entry[T]{Key: key, Data: data, FetchedAt: at}
}

// Present reports whether a successful fetch has been recorded.
func (e Entry[T]) Present() bool {
	return !e.FetchedAt.IsZero()
}

// IsFresh reports whether e was fetched for exactly key less than
// StaleWindow before now.
func IsFresh[T any](e Entry[T], key string, now time.Time) bool {
	if !e.Present() || e.Key != key {
		return false
	}
	return now.Sub(e.FetchedAt) < StaleWindow
}

// Lookup is the read model screens render from.
type Lookup[T any] struct {
	Data       T          `json:"data"`
	Present    bool       `json:"present"`
	Fresh      bool       `json:"fresh"`
	Refreshing bool       `json:"refreshing,omitempty"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
}

// View projects e onto key. An entry recorded for another key is reported
// as absent so a screen never shows data for a different location.
func View[T any](e Entry[T], key string, now time.Time) Lookup[T] {
	var out Lookup[T]
	if !e.Present() || e.Key != key {
		return out
	}
	at := e.FetchedAt
	out.Data = e.Data
	out.Present = true
	out.Fresh = IsFresh(e, key, now)
	out.FetchedAt = &at
	return out
}
