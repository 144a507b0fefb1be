// Package calc implements the four independent cost calculators:
// activities, hotel lodging plus extra meals, coordinator pay and
// approved field expenses. Each is a pure function returning a subtotal
// and a list of data-quality alerts; alerts never abort a computation.
package calc

import (
	"time"

	"github.com/solandes-viajes/cost-console/internal/model"
)

const isoDate = "2006-01-02"

// DateRange captures a group's stay length. Nights is the day count
// between start and end dates; DayCount is nights+1. When the group
// carries no dates both fall back to the itinerary span.
type DateRange struct {
	Start    string
	End      string
	Nights   int
	DayCount int
}

// RangeOf derives the group's date range from its start/end dates,
// falling back to the first and last itinerary dates.
func RangeOf(g model.GroupRecord) DateRange {
	start, end := g.StartDate, g.EndDate
	if start == "" || end == "" {
		if dates := g.ItineraryDates(); len(dates) > 0 {
			start, end = dates[0], dates[len(dates)-1]
		}
	}

	dr := DateRange{Start: start, End: end}
	dr.Nights = daysBetween(start, end)
	dr.DayCount = dr.Nights + 1
	if dr.Nights == 0 && start == "" {
		dr.DayCount = 0
	}
	return dr
}

func daysBetween(start, end string) int {
	s, err := time.Parse(isoDate, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(isoDate, end)
	if err != nil {
		return 0
	}
	n := int(e.Sub(s).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Result is a calculator's output: the subtotal in base currency and
// any data-quality alerts raised along the way.
type Result struct {
	Subtotal float64
	Alerts   []string
}
