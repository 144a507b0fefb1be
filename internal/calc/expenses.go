package calc

import (
	"context"
	"strings"

	"github.com/solandes-viajes/cost-console/internal/expense"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

// ApprovedExpenses sums a group's approved field expenses from the
// first expense source that holds any entries for the group.
func ApprovedExpenses(ctx context.Context, groupID string, prober *expense.Prober, convert rates.Converter) Result {
	entries := prober.First(ctx, groupID)
	return SumApproved(entries, convert)
}

// SumApproved totals the approved amounts of the given entries.
// An entry counts when it is a typed expense document with an approved
// amount, or when any entry carries an approved amount regardless of
// its declared type (legacy documents often lack one).
func SumApproved(entries []model.ExpenseEntry, convert rates.Converter) Result {
	var res Result
	for _, e := range entries {
		typed := strings.ToUpper(strings.TrimSpace(e.DocType)) == "EXPENSE"
		if (typed && e.ApprovedAmount > 0) || e.ApprovedAmount > 0 {
			res.Subtotal += convert(e.ApprovedAmount, e.Currency)
		}
	}
	return res
}
