// Package rates holds the externally supplied rate tables the cost
// calculators depend on: hotel nightly rates, extra-meal rates and the
// coordinator pay rule.
package rates

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Converter converts an amount from the given currency into the base
// currency. The current policy is identity; a real multi-currency
// policy can be substituted without touching the calculators.
type Converter func(amount float64, currency string) float64

// Identity is the default Converter.
func Identity(amount float64, _ string) float64 { return amount }

// Table holds all configured rates. Amounts are per person unless noted.
type Table struct {
	HotelNightly        map[string]float64 `yaml:"hotel_nightly" mapstructure:"hotel_nightly"` // by destination
	HotelNightlyDefault float64            `yaml:"hotel_nightly_default" mapstructure:"hotel_nightly_default"`
	Lunch               float64            `yaml:"lunch" mapstructure:"lunch"`
	Dinner              float64            `yaml:"dinner" mapstructure:"dinner"`
	CoordinatorPerDay   float64            `yaml:"coordinator_per_day" mapstructure:"coordinator_per_day"` // per group per day
	CoordinatorPerPax   float64            `yaml:"coordinator_per_pax" mapstructure:"coordinator_per_pax"` // per person per trip
}

// NightlyFor returns the hotel nightly per-person rate for a
// destination, falling back to the default rate. Destination matching
// is case-insensitive.
func (t Table) NightlyFor(destination string) float64 {
	key := strings.ToUpper(strings.TrimSpace(destination))
	for dest, rate := range t.HotelNightly {
		if strings.ToUpper(strings.TrimSpace(dest)) == key {
			return rate
		}
	}
	return t.HotelNightlyDefault
}

// CoordinatorFee applies the day/pax pay rule for groups without a
// fixed coordinator fee.
func (t Table) CoordinatorFee(dayCount, pax int) float64 {
	if dayCount < 0 {
		dayCount = 0
	}
	if pax < 0 {
		pax = 0
	}
	return t.CoordinatorPerDay*float64(dayCount) + t.CoordinatorPerPax*float64(pax)
}

// LoadFile reads a standalone rates file, used to override the rates
// embedded in the main config.
func LoadFile(path string) (Table, error) {
	var t Table
	data, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrapf(err, "rates: read %s", path)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrapf(err, "rates: parse %s", path)
	}
	return t, nil
}
