package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

func TestCoordinator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		group      model.GroupRecord
		rates      rates.Table
		want       float64
		wantAlerts []string
	}{
		{
			name:  "fixed fee wins",
			group: model.GroupRecord{ID: "G1", PaxTotal: 10, CoordinatorFee: 120000, StartDate: "2026-01-10", EndDate: "2026-01-13"},
			rates: rates.Table{CoordinatorPerDay: 20000},
			want:  120000,
		},
		{
			name:  "per day rule",
			group: model.GroupRecord{ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-13"},
			rates: rates.Table{CoordinatorPerDay: 20000},
			want:  20000 * 4, // dayCount = nights+1
		},
		{
			name:  "per pax rule",
			group: model.GroupRecord{ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-13"},
			rates: rates.Table{CoordinatorPerPax: 3000},
			want:  3000 * 10,
		},
		{
			name:  "combined rule",
			group: model.GroupRecord{ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-13"},
			rates: rates.Table{CoordinatorPerDay: 20000, CoordinatorPerPax: 3000},
			want:  20000*4 + 3000*10,
		},
		{
			name:       "no rate anywhere",
			group:      model.GroupRecord{ID: "G1", PaxTotal: 10, StartDate: "2026-01-10", EndDate: "2026-01-13"},
			rates:      rates.Table{},
			want:       0,
			wantAlerts: []string{"no coordinator rate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Coordinator(tt.group, tt.rates, tt.group.Pax(), RangeOf(tt.group), rates.Identity)
			assert.InDelta(t, tt.want, res.Subtotal, 0.001)
			assert.Equal(t, tt.wantAlerts, res.Alerts)
		})
	}
}
