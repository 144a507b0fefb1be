package calc

import (
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

// Coordinator computes coordinator pay. A fixed fee declared on the
// group wins outright; otherwise the configured day/pax rule applies,
// and a zero result raises an alert.
func Coordinator(g model.GroupRecord, r rates.Table, pax int, dr DateRange, convert rates.Converter) Result {
	if g.CoordinatorFee > 0 {
		return Result{Subtotal: convert(g.CoordinatorFee, g.Currency)}
	}

	fee := r.CoordinatorFee(dr.DayCount, pax)
	if fee == 0 {
		return Result{Alerts: []string{"no coordinator rate"}}
	}
	return Result{Subtotal: convert(fee, g.Currency)}
}
