// Package scenario defines the typed key that scopes every aggregation query
// and the validation rules that guard the engine's boundary. Raw strings from
// callers are parsed into a Key exactly once, here; aggregation code never
// sees unvalidated input.
package scenario

import (
	"fmt"
	"regexp"
	"time"
)

// TimestampLayout is the fixed-width UTC forecast timestamp format used in
// view filenames and across the caller surface (e.g. "20251010000000").
const TimestampLayout = "20060102150405"

// DeterministicMember is the ensemble member carrying the deterministic
// (control) track in the ECMWF ensemble layout the views are built from.
const DeterministicMember = 51

// ReferenceThreshold is the wind threshold used when looking up forecast
// history. 34 kt is the lowest enumerated threshold and therefore the most
// data-rich: any run that produced views at all produced them at 34 kt.
const ReferenceThreshold = 34

// WindThresholds enumerates the valid wind-speed thresholds in knots, from
// tropical-storm force up to a category 5 hurricane.
var WindThresholds = []int{34, 40, 50, 64, 83, 96, 113, 137}

// ThresholdLabels maps each threshold to its Saffir-Simpson style label.
var ThresholdLabels = map[int]string{
	34:  "Tropical storm force",
	40:  "Strong tropical storm",
	50:  "Very strong tropical storm",
	64:  "Category 1 hurricane",
	83:  "Category 2 hurricane",
	96:  "Category 3 hurricane",
	113: "Category 4 hurricane",
	137: "Category 5 hurricane",
}

var countryPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Key scopes one aggregation query: one country, one storm, one forecast run,
// one wind threshold. Mixing runs or thresholds within a single aggregation is
// an invariant violation, so every engine operation takes a full Key.
type Key struct {
	Country       string `json:"country"`
	Storm         string `json:"storm"`
	ForecastDate  string `json:"forecast_date"`
	WindThreshold int    `json:"wind_threshold"`
}

// New builds and validates a Key from raw caller input.
func New(country, storm, forecastDate string, windThreshold int) (Key, error) {
	k := Key{
		Country:       country,
		Storm:         storm,
		ForecastDate:  forecastDate,
		WindThreshold: windThreshold,
	}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// Validate checks every component of the key. Failures are caller errors and
// wrap ErrInvalidKey; they must not be retried.
func (k Key) Validate() error {
	if !countryPattern.MatchString(k.Country) {
		return invalidf("country %q is not an ISO3 code", k.Country)
	}
	if k.Storm == "" {
		return invalidf("storm name is empty")
	}
	if _, err := ParseForecastDate(k.ForecastDate); err != nil {
		return err
	}
	if !ValidThreshold(k.WindThreshold) {
		return invalidf("wind threshold %d kt is not one of %v", k.WindThreshold, WindThresholds)
	}
	return nil
}

// Time returns the forecast issue time. Validate must have succeeded first.
func (k Key) Time() time.Time {
	t, _ := ParseForecastDate(k.ForecastDate)
	return t
}

// WithForecastDate returns a copy of the key pointing at another forecast run
// of the same storm. Used by the trend comparator.
func (k Key) WithForecastDate(date string) Key {
	k.ForecastDate = date
	return k
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s_%d", k.Country, k.Storm, k.ForecastDate, k.WindThreshold)
}

// ParseForecastDate parses a fixed-width YYYYMMDDHHMMSS timestamp as UTC.
func ParseForecastDate(s string) (time.Time, error) {
	if len(s) != len(TimestampLayout) {
		return time.Time{}, invalidf("forecast date %q is not a %d-digit timestamp", s, len(TimestampLayout))
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, invalidf("forecast date %q: %v", s, err)
	}
	return t, nil
}

// FormatForecastDate renders a time in the fixed-width timestamp format.
func FormatForecastDate(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidThreshold reports whether t is one of the enumerated thresholds.
// Unrecognized values are a caller error, never silently coerced.
func ValidThreshold(t int) bool {
	for _, th := range WindThresholds {
		if th == t {
			return true
		}
	}
	return false
}

// PreferredThreshold picks the default analysis threshold from an available
// set: 50 kt when present, otherwise the highest available. Returns false when
// the set is empty.
func PreferredThreshold(available []int) (int, bool) {
	if len(available) == 0 {
		return 0, false
	}
	best := available[0]
	for _, t := range available {
		if t == 50 {
			return 50, true
		}
		if t > best {
			best = t
		}
	}
	return best, true
}
