package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solandes-viajes/cost-console/internal/catalog"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

func testCatalog() *catalog.Index {
	return catalog.NewIndex(
		[]string{"Bariloche"},
		map[string][]model.ServiceRecord{
			"Bariloche": {
				{
					Destination:   "Bariloche",
					ID:            "BRC-RAFT",
					CanonicalName: "Rafting Rio Manso",
					ChargeType:    model.ChargePerPerson,
					Currency:      "ARS",
					UnitPrice:     10000,
					Aliases:       []string{"rafting"},
				},
				{
					Destination:   "Bariloche",
					ID:            "BRC-BUS",
					CanonicalName: "Traslado Circuito Chico",
					ChargeType:    model.ChargePerGroup,
					Currency:      "ARS",
					UnitPrice:     50000,
				},
				{
					Destination:   "Bariloche",
					ID:            "BRC-FREE",
					CanonicalName: "Caminata Gratuita",
					ChargeType:    model.ChargePerPerson,
					Currency:      "ARS",
					UnitPrice:     0,
				},
			},
		},
	)
}

func TestActivities_PerPersonScenario(t *testing.T) {
	t.Parallel()

	// One itinerary day, one PER_PERSON activity at 10000 for 20 pax.
	g := model.GroupRecord{
		ID:          "G1",
		Destination: "Bariloche",
		PaxTotal:    20,
		Itinerary: map[string][]model.ItineraryEntry{
			"2026-01-10": {{Activity: "rafting"}},
		},
	}

	res := Activities(g, testCatalog(), g.Pax(), rates.Identity)
	assert.InDelta(t, 200000, res.Subtotal, 0.001)
	assert.Empty(t, res.Alerts)
}

func TestActivities_QuantityByChargeType(t *testing.T) {
	t.Parallel()
	idx := testCatalog()

	tests := []struct {
		name  string
		entry model.ItineraryEntry
		want  float64
	}{
		{"per person uses group pax", model.ItineraryEntry{ServiceID: "BRC-RAFT"}, 10000 * 20},
		{"per person prefers entry pax", model.ItineraryEntry{ServiceID: "BRC-RAFT", Pax: 5}, 10000 * 5},
		{"per person sums adults and students", model.ItineraryEntry{ServiceID: "BRC-RAFT", Adults: 2, Students: 6}, 10000 * 8},
		{"per group charges one unit", model.ItineraryEntry{ServiceID: "BRC-BUS", Pax: 5}, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := model.GroupRecord{
				ID:          "G1",
				Destination: "Bariloche",
				PaxTotal:    20,
				Itinerary: map[string][]model.ItineraryEntry{
					"2026-01-10": {tt.entry},
				},
			}
			res := Activities(g, idx, g.Pax(), rates.Identity)
			assert.InDelta(t, tt.want, res.Subtotal, 0.001)
			assert.Empty(t, res.Alerts)
		})
	}
}

func TestActivities_Alerts(t *testing.T) {
	t.Parallel()
	idx := testCatalog()

	tests := []struct {
		name      string
		entry     model.ItineraryEntry
		wantAlert string
	}{
		{"unresolved service", model.ItineraryEntry{Activity: "paseo inexistente"}, "no rate found for paseo inexistente"},
		{"zero rate", model.ItineraryEntry{ServiceID: "BRC-FREE", Activity: "Caminata"}, "rate is zero for Caminata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := model.GroupRecord{
				ID:          "G1",
				Destination: "Bariloche",
				PaxTotal:    10,
				Itinerary: map[string][]model.ItineraryEntry{
					"2026-01-10": {tt.entry},
				},
			}
			res := Activities(g, idx, g.Pax(), rates.Identity)
			assert.Zero(t, res.Subtotal)
			require.Len(t, res.Alerts, 1)
			assert.Equal(t, tt.wantAlert, res.Alerts[0])
		})
	}
}

func TestActivities_EntryDestinationHint(t *testing.T) {
	t.Parallel()

	idx := catalog.NewIndex(
		[]string{"Bariloche", "Mendoza"},
		map[string][]model.ServiceRecord{
			"Bariloche": {{Destination: "Bariloche", ID: "SVC", CanonicalName: "Excursion Lago", ChargeType: model.ChargePerGroup, UnitPrice: 100}},
			"Mendoza":   {{Destination: "Mendoza", ID: "SVC", CanonicalName: "Excursion Vino", ChargeType: model.ChargePerGroup, UnitPrice: 900}},
		},
	)

	g := model.GroupRecord{
		ID:          "G1",
		Destination: "Bariloche",
		PaxTotal:    10,
		Itinerary: map[string][]model.ItineraryEntry{
			"2026-01-10": {{ServiceID: "SVC", Destination: "Mendoza"}},
		},
	}

	res := Activities(g, idx, g.Pax(), rates.Identity)
	assert.InDelta(t, 900, res.Subtotal, 0.001)
}

func TestActivities_AlertKeepsComputing(t *testing.T) {
	t.Parallel()

	// A bad entry reduces its own contribution to 0 and the rest proceeds.
	g := model.GroupRecord{
		ID:          "G1",
		Destination: "Bariloche",
		PaxTotal:    10,
		Itinerary: map[string][]model.ItineraryEntry{
			"2026-01-10": {{Activity: "inexistente"}, {ServiceID: "BRC-BUS"}},
		},
	}

	res := Activities(g, testCatalog(), g.Pax(), rates.Identity)
	assert.InDelta(t, 50000, res.Subtotal, 0.001)
	assert.Len(t, res.Alerts, 1)
}
