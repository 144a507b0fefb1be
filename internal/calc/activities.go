package calc

import (
	"fmt"

	"github.com/solandes-viajes/cost-console/internal/catalog"
	"github.com/solandes-viajes/cost-console/internal/model"
	"github.com/solandes-viajes/cost-console/internal/rates"
)

// Activities sums the group's booked itinerary activities. Each entry
// is resolved against the catalog index using its own destination hint
// (falling back to the group's destination), its service id and its
// free-text name. Unresolved or zero-rated entries contribute 0 and
// raise an alert.
func Activities(g model.GroupRecord, idx *catalog.Index, pax int, convert rates.Converter) Result {
	var res Result
	for _, date := range g.ItineraryDates() {
		for _, entry := range g.Itinerary[date] {
			amount, alert := activityAmount(g, entry, idx, pax)
			if alert != "" {
				res.Alerts = append(res.Alerts, alert)
				continue
			}
			currency := g.Currency
			if rec := resolveEntry(g, entry, idx); rec != nil {
				currency = rec.Currency
			}
			res.Subtotal += convert(amount, currency)
		}
	}
	return res
}

func resolveEntry(g model.GroupRecord, entry model.ItineraryEntry, idx *catalog.Index) *model.ServiceRecord {
	dest := entry.Destination
	if dest == "" {
		dest = g.Destination
	}
	return idx.Resolve(dest, entry.ServiceID, entry.Activity)
}

func activityAmount(g model.GroupRecord, entry model.ItineraryEntry, idx *catalog.Index, pax int) (float64, string) {
	rec := resolveEntry(g, entry, idx)
	if rec == nil {
		return 0, fmt.Sprintf("no rate found for %s", entryName(entry))
	}
	if rec.UnitPrice == 0 {
		return 0, fmt.Sprintf("rate is zero for %s", entryName(entry))
	}
	return rec.UnitPrice * ActivityQuantity(*rec, entry, pax), ""
}

// ActivityQuantity applies the charge-type scaling rule: per-person
// services use the entry's declared pax when present, otherwise the
// group total; everything else charges a single unit.
func ActivityQuantity(rec model.ServiceRecord, entry model.ItineraryEntry, groupPax int) float64 {
	if rec.ChargeType != model.ChargePerPerson {
		return 1
	}
	if p := entry.DeclaredPax(); p > 0 {
		return float64(p)
	}
	return float64(groupPax)
}

func entryName(entry model.ItineraryEntry) string {
	if entry.Activity != "" {
		return entry.Activity
	}
	return entry.ServiceID
}
