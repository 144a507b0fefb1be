package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
	"github.com/solandes-viajes/cost-console/internal/reconcile"
	"github.com/solandes-viajes/cost-console/internal/store"
)

const raftLineID = "G1|ACTIVITY|2026-09-11|RAFT-01|0"

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }

func testRates() rates.Table {
	return rates.Table{
		HotelNightly:      map[string]float64{"Bariloche": 12000},
		Lunch:             2500,
		Dinner:            3000,
		CoordinatorPerDay: 4000,
	}
}

// seedStore loads a SQLite store with one destination catalog, one full
// group and one expense document.
func seedStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	require.NoError(t, s.ReplaceServices(ctx, "Bariloche", []model.ServiceRecord{
		{
			Destination:   "Bariloche",
			ID:            "RAFT-01",
			CanonicalName: "Rafting Río Manso",
			ChargeType:    model.ChargePerPerson,
			Currency:      "ARS",
			UnitPrice:     5000,
		},
	}))

	require.NoError(t, s.PutGroup(ctx, model.GroupRecord{
		ID:          "G1",
		Name:        "Colegio San Martín",
		Destination: "Bariloche",
		Adults:      2,
		Students:    38,
		StartDate:   "2026-09-10",
		EndDate:     "2026-09-13",
		HotelName:   "Hotel Nevada",
		MealPlan:    "MP",
		Currency:    "ARS",
		Itinerary: map[string][]model.ItineraryEntry{
			"2026-09-11": {{ServiceID: "RAFT-01", Activity: "Rafting"}},
		},
	}))

	require.NoError(t, s.PutExpenseDocs(ctx, "G1", "group_expenses", []model.ExpenseEntry{
		{DocType: "EXPENSE", Concept: "Fuel", ApprovedAmount: 300},
		{Concept: "Tolls", ApprovedAmount: 100},
		{Concept: "Pending", ApprovedAmount: 0},
	}))

	return s
}

func TestEngine_Evaluate(t *testing.T) {
	t.Parallel()

	e := New(seedStore(t), testRates(), "")
	ev, err := e.Evaluate(context.Background(), "G1")
	require.NoError(t, err)

	sum := ev.Summary
	assert.Equal(t, 40, sum.Pax)
	assert.Equal(t, 3, sum.Nights)

	// One PER_PERSON activity at 5000 for 40 pax.
	assert.InDelta(t, 200000, sum.ActivitiesTotal, 0.001)
	// Nightly 12000 for 40 pax over 3 nights.
	assert.InDelta(t, 1440000, sum.HotelTotal, 0.001)
	// Half board leaves lunch out: 2500 for 40 pax over 4 days.
	assert.InDelta(t, 400000, sum.MealsExtraTotal, 0.001)
	// No fixed fee, so the per-day rule applies over 4 days.
	assert.InDelta(t, 16000, sum.CoordinatorTotal, 0.001)
	// Two approved entries; the zero-amount one is ignored.
	assert.InDelta(t, 400, sum.ApprovedExpensesTotal, 0.001)

	assert.InDelta(t, 2056400, sum.GrandTotalBase, 0.001)
	assert.InDelta(t, sum.GrandTotalBase, sum.GrandTotalFinal, 0.001)
	assert.InDelta(t, sum.GrandTotalFinal/40, sum.PerPax, 0.001)
	assert.False(t, sum.Overridden)
	assert.Empty(t, sum.Alerts)

	// One activity line plus the four summary lines.
	require.Len(t, ev.Lines, 5)
	assert.Equal(t, raftLineID, ev.Lines[0].LineID)
	assert.Empty(t, ev.Overrides)
}

func TestEngine_LineSumMatchesCalculators(t *testing.T) {
	t.Parallel()

	e := New(seedStore(t), testRates(), "")
	ev, err := e.Evaluate(context.Background(), "G1")
	require.NoError(t, err)

	var lineSum float64
	for _, line := range ev.Lines {
		lineSum += line.BaseTotal()
	}
	assert.InDelta(t, ev.Summary.GrandTotalBase, lineSum, 0.001)
}

func TestEngine_ApplyOverrideChangesTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := New(seedStore(t), testRates(), "")

	_, err := e.ApplyOverride(ctx, "G1", raftLineID,
		model.OverridePatch{Price: f(6000), UpdatedBy: "ana"}, "")
	require.NoError(t, err)

	ev, err := e.Evaluate(ctx, "G1")
	require.NoError(t, err)

	// The repriced activity line adds 40000 on top of the base total.
	assert.True(t, ev.Summary.Overridden)
	assert.InDelta(t, 2056400, ev.Summary.GrandTotalBase, 0.001)
	assert.InDelta(t, 2096400, ev.Summary.GrandTotalFinal, 0.001)

	rec, ok := ev.Overrides[raftLineID]
	require.True(t, ok)
	require.NotNil(t, rec.PriceOverride)
	assert.InDelta(t, 6000, *rec.PriceOverride, 0.001)
}

func TestEngine_ApplyOverrideEmptyPatch(t *testing.T) {
	t.Parallel()

	e := New(seedStore(t), testRates(), "")
	_, err := e.ApplyOverride(context.Background(), "G1", raftLineID,
		model.OverridePatch{UpdatedBy: "ana"}, "")
	assert.Error(t, err)
}

func TestEngine_ReviewLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := New(seedStore(t), testRates(), "pin-1234")

	_, err := e.ApplyOverride(ctx, "G1", raftLineID, model.OverridePatch{Reviewed: b(true)}, "")
	require.NoError(t, err)

	// Unlocking without the secret leaves the flag set.
	_, err = e.ApplyOverride(ctx, "G1", raftLineID, model.OverridePatch{Reviewed: b(false)}, "")
	require.True(t, eris.Is(err, reconcile.ErrReviewLocked))

	ev, err := e.Evaluate(ctx, "G1")
	require.NoError(t, err)
	assert.True(t, ev.Overrides[raftLineID].Reviewed)

	// The correct secret clears it.
	_, err = e.ApplyOverride(ctx, "G1", raftLineID, model.OverridePatch{Reviewed: b(false)}, "pin-1234")
	require.NoError(t, err)

	ev, err = e.Evaluate(ctx, "G1")
	require.NoError(t, err)
	assert.False(t, ev.Overrides[raftLineID].Reviewed)
}

func TestEngine_EvaluateAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := seedStore(t)
	require.NoError(t, s.PutGroup(ctx, model.GroupRecord{
		ID:          "G0",
		Destination: "Bariloche",
		Adults:      10,
	}))

	e := New(s, testRates(), "", WithMaxConcurrentGroups(2))
	evals, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, evals, 2)

	// Store order is by id.
	assert.Equal(t, "G0", evals[0].Summary.GroupID)
	assert.Equal(t, "G1", evals[1].Summary.GroupID)

	// The dateless group evaluates with alerts instead of failing.
	assert.NotEmpty(t, evals[0].Summary.Alerts)
	assert.Zero(t, evals[0].Summary.HotelTotal)
}

func TestEngine_CustomConverter(t *testing.T) {
	t.Parallel()

	halve := func(amount float64, _ string) float64 { return amount / 2 }
	e := New(seedStore(t), testRates(), "", WithConverter(halve))

	ev, err := e.Evaluate(context.Background(), "G1")
	require.NoError(t, err)
	assert.InDelta(t, 1028200, ev.Summary.GrandTotalBase, 0.001)
}
