package model

// LineKind identifies which cost source a line belongs to.
type LineKind string

const (
	LineActivity         LineKind = "ACTIVITY"
	LineHotel            LineKind = "HOTEL"
	LineMealsExtra       LineKind = "MEALS_EXTRA"
	LineCoordinator      LineKind = "COORDINATOR"
	LineApprovedExpenses LineKind = "APPROVED_EXPENSES"
)

// CostLine is one addressable unit of group cost. Lines are rebuilt
// fresh on every evaluation and are never persisted; LineID is the only
// identity they carry and must be stable across rebuilds.
type CostLine struct {
	LineID       string   `json:"line_id"`
	Kind         LineKind `json:"kind"`
	Date         string   `json:"date,omitempty"` // ISO date, empty for summary lines
	Concept      string   `json:"concept"`
	Provider     string   `json:"provider,omitempty"`
	UnitLabel    string   `json:"unit_label,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	BasePrice    float64  `json:"base_price"`
	BaseQuantity float64  `json:"base_quantity"`
}

// BaseTotal is the line's pre-override amount.
func (l CostLine) BaseTotal() float64 {
	return l.BasePrice * l.BaseQuantity
}
