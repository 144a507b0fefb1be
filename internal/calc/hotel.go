package calc

import (
	"strings"

	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

// HotelResult splits the hotel calculator's subtotal into lodging and
// extra (non-included) meals.
type HotelResult struct {
	Lodging    float64
	MealsExtra float64
	Alerts     []string
}

// Total returns lodging plus extra meals.
func (r HotelResult) Total() float64 {
	return r.Lodging + r.MealsExtra
}

// MealInclusion reports which meals a board regimen code bundles into
// the nightly rate: a code containing "PC" includes lunch and dinner,
// one containing "MP" includes dinner only, anything else neither.
func MealInclusion(mealPlan string) (lunch, dinner bool) {
	code := strings.ToUpper(mealPlan)
	switch {
	case strings.Contains(code, "PC"):
		return true, true
	case strings.Contains(code, "MP"):
		return false, true
	default:
		return false, false
	}
}

// ExcludedMealsRate is the combined per-person daily rate of the meals
// the regimen does not include. It is also the base price of the
// group's single meals-extra cost line.
func ExcludedMealsRate(mealPlan string, r rates.Table) float64 {
	lunch, dinner := MealInclusion(mealPlan)
	var rate float64
	if !lunch {
		rate += r.Lunch
	}
	if !dinner {
		rate += r.Dinner
	}
	return rate
}

// HotelMeals computes lodging (nightly per-person rate x pax x nights)
// and extra meals (per-person meal rate x pax x dayCount for each meal
// the regimen excludes).
func HotelMeals(g model.GroupRecord, r rates.Table, pax int, dr DateRange, convert rates.Converter) HotelResult {
	var res HotelResult

	if dr.Nights == 0 {
		res.Alerts = append(res.Alerts, "group has no nights")
	}

	if g.HotelName == "" {
		res.Alerts = append(res.Alerts, "no hotel set")
	} else {
		nightly := r.NightlyFor(g.Destination)
		if nightly == 0 {
			res.Alerts = append(res.Alerts, "hotel nightly rate is zero")
		}
		res.Lodging = convert(nightly*float64(pax)*float64(dr.Nights), g.Currency)
	}

	lunch, dinner := MealInclusion(g.MealPlan)
	if !lunch {
		res.MealsExtra += mealExtra(r.Lunch, "lunch rate is zero", pax, dr, g.Currency, convert, &res.Alerts)
	}
	if !dinner {
		res.MealsExtra += mealExtra(r.Dinner, "dinner rate is zero", pax, dr, g.Currency, convert, &res.Alerts)
	}

	return res
}

func mealExtra(rate float64, zeroAlert string, pax int, dr DateRange, currency string, convert rates.Converter, alerts *[]string) float64 {
	if rate == 0 {
		*alerts = append(*alerts, zeroAlert)
		return 0
	}
	return convert(rate*float64(pax)*float64(dr.DayCount), currency)
}
