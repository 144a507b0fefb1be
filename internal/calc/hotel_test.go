package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

func testRates() rates.Table {
	return rates.Table{
		HotelNightlyDefault: 15000,
		Lunch:               5000,
		Dinner:              6000,
		CoordinatorPerDay:   20000,
	}
}

func TestMealInclusion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		plan       string
		wantLunch  bool
		wantDinner bool
	}{
		{"PC", true, true},
		{"pension completa / PC", true, true},
		{"MP", false, true},
		{"media pension MP", false, true},
		{"desayuno", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			t.Parallel()
			lunch, dinner := MealInclusion(tt.plan)
			assert.Equal(t, tt.wantLunch, lunch)
			assert.Equal(t, tt.wantDinner, dinner)
		})
	}
}

func TestHotelMeals_MPScenario(t *testing.T) {
	t.Parallel()

	// 3 nights, MP (dinner included), 10 pax, nightly 15000, lunch 5000:
	// lodging 450000, extra meals 5000 x 10 x 4 days = 200000.
	g := model.GroupRecord{
		ID:          "G1",
		Destination: "Bariloche",
		PaxTotal:    10,
		StartDate:   "2026-01-10",
		EndDate:     "2026-01-13",
		HotelName:   "Hotel Nahuel",
		MealPlan:    "MP",
	}
	r := rates.Table{HotelNightlyDefault: 15000, Lunch: 5000, Dinner: 6000}

	res := HotelMeals(g, r, g.Pax(), RangeOf(g), rates.Identity)
	assert.InDelta(t, 450000, res.Lodging, 0.001)
	assert.InDelta(t, 200000, res.MealsExtra, 0.001)
	assert.InDelta(t, 650000, res.Total(), 0.001)
	assert.Empty(t, res.Alerts)
}

func TestHotelMeals_PCIncludesEverything(t *testing.T) {
	t.Parallel()

	g := model.GroupRecord{
		ID:          "G1",
		Destination: "Bariloche",
		PaxTotal:    10,
		StartDate:   "2026-01-10",
		EndDate:     "2026-01-12",
		HotelName:   "Hotel Nahuel",
		MealPlan:    "PC",
	}

	res := HotelMeals(g, testRates(), g.Pax(), RangeOf(g), rates.Identity)
	assert.InDelta(t, 300000, res.Lodging, 0.001)
	assert.Zero(t, res.MealsExtra)
	assert.Empty(t, res.Alerts)
}

func TestHotelMeals_Alerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		group      model.GroupRecord
		rates      rates.Table
		wantAlerts []string
	}{
		{
			name: "no hotel set",
			group: model.GroupRecord{
				ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-12", MealPlan: "PC",
			},
			rates:      testRates(),
			wantAlerts: []string{"no hotel set"},
		},
		{
			name: "zero nights",
			group: model.GroupRecord{
				ID: "G1", PaxTotal: 10, HotelName: "Hotel", MealPlan: "PC",
			},
			rates:      testRates(),
			wantAlerts: []string{"group has no nights"},
		},
		{
			name: "zero nightly rate",
			group: model.GroupRecord{
				ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-12", HotelName: "Hotel", MealPlan: "PC",
			},
			rates:      rates.Table{Lunch: 5000, Dinner: 6000},
			wantAlerts: []string{"hotel nightly rate is zero"},
		},
		{
			name: "zero meal rates",
			group: model.GroupRecord{
				ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-12", HotelName: "Hotel", MealPlan: "desayuno",
			},
			rates:      rates.Table{HotelNightlyDefault: 15000},
			wantAlerts: []string{"lunch rate is zero", "dinner rate is zero"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := HotelMeals(tt.group, tt.rates, tt.group.Pax(), RangeOf(tt.group), rates.Identity)
			assert.Equal(t, tt.wantAlerts, res.Alerts)
		})
	}
}

func TestHotelMeals_NightsFromItinerary(t *testing.T) {
	t.Parallel()

	// No start/end dates: nights fall back to the itinerary span.
	g := model.GroupRecord{
		ID:          "G1",
		Destination: "Bariloche",
		PaxTotal:    10,
		HotelName:   "Hotel Nahuel",
		MealPlan:    "PC",
		Itinerary: map[string][]model.ItineraryEntry{
			"2026-01-10": {{Activity: "a"}},
			"2026-01-12": {{Activity: "b"}},
		},
	}

	dr := RangeOf(g)
	assert.Equal(t, 2, dr.Nights)
	assert.Equal(t, 3, dr.DayCount)

	res := HotelMeals(g, testRates(), g.Pax(), dr, rates.Identity)
	assert.InDelta(t, 300000, res.Lodging, 0.001)
}

func TestRangeOf_NoDatesAtAll(t *testing.T) {
	t.Parallel()

	dr := RangeOf(model.GroupRecord{ID: "G1"})
	assert.Zero(t, dr.Nights)
	assert.Zero(t, dr.DayCount)
}

func TestExcludedMealsRate(t *testing.T) {
	t.Parallel()
	r := rates.Table{Lunch: 5000, Dinner: 6000}

	tests := []struct {
		plan string
		want float64
	}{
		{"PC", 0},
		{"MP", 5000},
		{"desayuno", 11000},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, ExcludedMealsRate(tt.plan, r), 0.001)
		})
	}
}
