package model

// GroupCostSummary is the derived, non-persisted cost rollup for one
// group. It is recomputed on every evaluation.
type GroupCostSummary struct {
	GroupID               string   `json:"group_id"`
	GroupName             string   `json:"group_name,omitempty"`
	Destination           string   `json:"destination"`
	Pax                   int      `json:"pax"`
	Nights                int      `json:"nights"`
	ActivitiesTotal       float64  `json:"activities_total"`
	HotelTotal            float64  `json:"hotel_total"`
	MealsExtraTotal       float64  `json:"meals_extra_total"`
	CoordinatorTotal      float64  `json:"coordinator_total"`
	ApprovedExpensesTotal float64  `json:"approved_expenses_total"`
	GrandTotalBase        float64  `json:"grand_total_base"`
	GrandTotalFinal       float64  `json:"grand_total_final"`
	PerPax                float64  `json:"per_pax"`
	Overridden            bool     `json:"overridden"`
	Alerts                []string `json:"alerts,omitempty"`
}

// Evaluation is the contract consumed by the presentation layer: the
// summary, the full addressable line list and any persisted overrides.
type Evaluation struct {
	Summary   GroupCostSummary          `json:"summary"`
	Lines     []CostLine                `json:"lines"`
	Overrides map[string]OverrideRecord `json:"overrides,omitempty"`
}
