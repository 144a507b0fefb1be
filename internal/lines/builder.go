// Package lines expands a group into its ordered list of addressable
// cost lines. Line identities must be reproducible across independent
// rebuilds so persisted overrides keep applying after the underlying
// group data shifts shape.
package lines

import (
	"fmt"
	"strings"

	"github.com/solandes-viajes/cost-console/internal/calc"
	"github.com/solandes-viajes/cost-console/internal/catalog"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

// summaryDate is the date placeholder for per-group summary lines.
const summaryDate = "-"

// Grouping keys for the single summary line of each non-activity kind.
const (
	keyHotel       = "hotel"
	keyMealsExtra  = "meals-extra"
	keyCoordinator = "coordinator"
	keyExpenses    = "approved-expenses"
)

// SummaryInputs carries the per-group figures the summary lines are
// priced from. They must come from the same rate tables the calculators
// used so line totals reconcile with calculator subtotals.
type SummaryInputs struct {
	CoordinatorTotal      float64
	ApprovedExpensesTotal float64
}

// Build expands the group into activity lines (itinerary order: date
// ascending, then entry order) followed by the four summary lines.
// Rebuilding from unchanged data always yields the same LineID list in
// the same relative order.
func Build(g model.GroupRecord, idx *catalog.Index, r rates.Table, pax int, dr calc.DateRange, in SummaryInputs) []model.CostLine {
	var out []model.CostLine

	seq := make(map[string]int)
	for _, date := range g.ItineraryDates() {
		for _, entry := range g.Itinerary[date] {
			out = append(out, activityLine(g, entry, idx, pax, date, seq))
		}
	}

	out = append(out,
		hotelLine(g, r, pax, dr),
		mealsExtraLine(g, r, pax, dr),
		summaryLine(g, model.LineCoordinator, keyCoordinator, "Coordinator", in.CoordinatorTotal),
		summaryLine(g, model.LineApprovedExpenses, keyExpenses, "Approved expenses", in.ApprovedExpensesTotal),
	)
	return out
}

// LineID joins the identity tuple into one addressable key.
func LineID(groupID string, kind model.LineKind, date, groupingKey string, seq int) string {
	return strings.Join([]string{
		groupID,
		string(kind),
		date,
		groupingKey,
		fmt.Sprintf("%d", seq),
	}, "|")
}

func activityLine(g model.GroupRecord, entry model.ItineraryEntry, idx *catalog.Index, pax int, date string, seq map[string]int) model.CostLine {
	key := catalog.Normalize(entry.ServiceID)
	if key == "" {
		key = catalog.Normalize(entry.Activity)
	}

	// Disambiguate repeated same-key occurrences within one date.
	seqKey := date + "|" + key
	n := seq[seqKey]
	seq[seqKey] = n + 1

	line := model.CostLine{
		LineID:       LineID(g.ID, model.LineActivity, date, key, n),
		Kind:         model.LineActivity,
		Date:         date,
		Concept:      entry.Activity,
		Currency:     g.Currency,
		BaseQuantity: 1,
	}

	dest := entry.Destination
	if dest == "" {
		dest = g.Destination
	}
	if rec := idx.Resolve(dest, entry.ServiceID, entry.Activity); rec != nil {
		if rec.CanonicalName != "" {
			line.Concept = rec.CanonicalName
		}
		line.Provider = rec.Provider
		line.Currency = rec.Currency
		line.BasePrice = rec.UnitPrice
		line.BaseQuantity = calc.ActivityQuantity(*rec, entry, pax)
		line.UnitLabel = unitLabel(rec.ChargeType)
	}
	return line
}

func hotelLine(g model.GroupRecord, r rates.Table, pax int, dr calc.DateRange) model.CostLine {
	line := model.CostLine{
		LineID:    LineID(g.ID, model.LineHotel, summaryDate, keyHotel, 0),
		Kind:      model.LineHotel,
		Concept:   g.HotelName,
		UnitLabel: "night-person",
		Currency:  g.Currency,
	}
	if line.Concept == "" {
		line.Concept = "Hotel"
	}
	if g.HotelName != "" {
		line.BasePrice = r.NightlyFor(g.Destination)
		line.BaseQuantity = float64(pax) * float64(dr.Nights)
	}
	return line
}

func mealsExtraLine(g model.GroupRecord, r rates.Table, pax int, dr calc.DateRange) model.CostLine {
	line := model.CostLine{
		LineID:    LineID(g.ID, model.LineMealsExtra, summaryDate, keyMealsExtra, 0),
		Kind:      model.LineMealsExtra,
		Concept:   "Extra meals",
		UnitLabel: "person-day",
		Currency:  g.Currency,
	}
	line.BasePrice = calc.ExcludedMealsRate(g.MealPlan, r)
	if line.BasePrice > 0 {
		line.BaseQuantity = float64(pax) * float64(dr.DayCount)
	}
	return line
}

func summaryLine(g model.GroupRecord, kind model.LineKind, key, concept string, total float64) model.CostLine {
	return model.CostLine{
		LineID:       LineID(g.ID, kind, summaryDate, key, 0),
		Kind:         kind,
		Concept:      concept,
		UnitLabel:    "total",
		Currency:     g.Currency,
		BasePrice:    total,
		BaseQuantity: 1,
	}
}

func unitLabel(ct model.ChargeType) string {
	switch ct {
	case model.ChargePerPerson:
		return "person"
	case model.ChargePerGroup:
		return "group"
	case model.ChargePerDay:
		return "day"
	default:
		return "unit"
	}
}
