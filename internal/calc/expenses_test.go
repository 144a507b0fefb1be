package calc

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/solandes-viajes/cost-console/internal/expense"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

type stubSource struct {
	name    string
	entries []model.ExpenseEntry
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Read(context.Context, string) ([]model.ExpenseEntry, error) {
	return s.entries, s.err
}

func TestSumApproved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []model.ExpenseEntry
		want    float64
	}{
		{
			name: "typed expenses",
			entries: []model.ExpenseEntry{
				{DocType: "EXPENSE", ApprovedAmount: 1000},
				{DocType: " expense ", ApprovedAmount: 500},
			},
			want: 1500,
		},
		{
			name: "untyped entries with approved amounts count too",
			entries: []model.ExpenseEntry{
				{ApprovedAmount: 700},
				{DocType: "RECEIPT", ApprovedAmount: 300},
			},
			want: 1000,
		},
		{
			name: "zero and negative amounts excluded",
			entries: []model.ExpenseEntry{
				{DocType: "EXPENSE", ApprovedAmount: 0},
				{DocType: "EXPENSE", ApprovedAmount: -50},
				{DocType: "EXPENSE", ApprovedAmount: 250},
			},
			want: 250,
		},
		{name: "no entries", entries: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := SumApproved(tt.entries, rates.Identity)
			assert.InDelta(t, tt.want, res.Subtotal, 0.001)
		})
	}
}

func TestApprovedExpenses_ProbeOrder(t *testing.T) {
	t.Parallel()

	// The first non-empty source wins; later sources are never consulted.
	prober := expense.NewProber(
		&stubSource{name: "empty"},
		&stubSource{name: "primary", entries: []model.ExpenseEntry{{DocType: "EXPENSE", ApprovedAmount: 800}}},
		&stubSource{name: "legacy", entries: []model.ExpenseEntry{{DocType: "EXPENSE", ApprovedAmount: 9999}}},
	)

	res := ApprovedExpenses(context.Background(), "G1", prober, rates.Identity)
	assert.InDelta(t, 800, res.Subtotal, 0.001)
}

func TestApprovedExpenses_ReadErrorDegrades(t *testing.T) {
	t.Parallel()

	// A failing source degrades to "nothing found there", not an abort.
	prober := expense.NewProber(
		&stubSource{name: "broken", err: eris.New("storage down")},
		&stubSource{name: "fallback", entries: []model.ExpenseEntry{{ApprovedAmount: 400}}},
	)

	res := ApprovedExpenses(context.Background(), "G1", prober, rates.Identity)
	assert.InDelta(t, 400, res.Subtotal, 0.001)
	assert.Empty(t, res.Alerts)
}

func TestApprovedExpenses_AllEmpty(t *testing.T) {
	t.Parallel()

	prober := expense.NewProber(&stubSource{name: "a"}, &stubSource{name: "b"})
	res := ApprovedExpenses(context.Background(), "G1", prober, rates.Identity)
	assert.Zero(t, res.Subtotal)
}
