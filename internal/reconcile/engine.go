// Package reconcile merges persisted overrides into a freshly built
// line list and produces the group's authoritative total.
package reconcile

import (
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

// Outcome is the result of reconciling one group.
type Outcome struct {
	FinalTotal float64
	// LineTotals holds each line's effective total, keyed by LineID.
	// Populated only when at least one override exists.
	LineTotals map[string]float64
	// Overridden reports whether any override row applied.
	Overridden bool
	// FellBack reports that the overridden sum was zero and the base
	// total was used instead.
	FellBack bool
}

// Effective resolves a line's price and quantity with override
// precedence: an override value wins, the computed base otherwise.
func Effective(line model.CostLine, ov *model.OverrideRecord) (price, quantity float64) {
	price = line.BasePrice
	quantity = line.BaseQuantity
	if ov == nil {
		return price, quantity
	}
	if ov.PriceOverride != nil {
		price = *ov.PriceOverride
	}
	if ov.QuantityOverride != nil {
		quantity = *ov.QuantityOverride
	}
	return price, quantity
}

// Reconcile computes the group's final total. With no overrides the raw
// calculators' base total passes through untouched. With any override
// present, every line of the complete rebuilt list is summed in one
// pass so a single override cannot drop the rest of the total. A zero
// overridden sum falls back to the base total.
func Reconcile(baseTotal float64, lineList []model.CostLine, overrides map[string]model.OverrideRecord, convert rates.Converter) Outcome {
	if len(overrides) == 0 {
		return Outcome{FinalTotal: baseTotal}
	}

	out := Outcome{
		Overridden: true,
		LineTotals: make(map[string]float64, len(lineList)),
	}
	for _, line := range lineList {
		var ov *model.OverrideRecord
		if rec, ok := overrides[line.LineID]; ok {
			ov = &rec
		}
		price, qty := Effective(line, ov)
		total := convert(price*qty, line.Currency)
		out.LineTotals[line.LineID] = total
		out.FinalTotal += total
	}

	if out.FinalTotal == 0 {
		out.FinalTotal = baseTotal
		out.FellBack = true
	}
	return out
}
