package model

import "sort"

// ItineraryEntry is one booked activity on a specific itinerary day.
type ItineraryEntry struct {
	ServiceID   string `json:"service_id,omitempty"`
	Activity    string `json:"activity"`
	Destination string `json:"destination,omitempty"` // overrides the group destination when set
	Adults      int    `json:"adults,omitempty"`
	Students    int    `json:"students,omitempty"`
	Pax         int    `json:"pax,omitempty"`
}

// DeclaredPax returns the entry's own head count, or 0 when the entry
// declares none and the group total should be used instead.
func (e ItineraryEntry) DeclaredPax() int {
	if e.Pax > 0 {
		return e.Pax
	}
	return e.Adults + e.Students
}

// GroupRecord is a travel group as stored in the document store.
// The engine treats it as read-only input.
type GroupRecord struct {
	ID             string                      `json:"id"`
	Name           string                      `json:"name,omitempty"`
	Destination    string                      `json:"destination"`
	Adults         int                         `json:"adults,omitempty"`
	Students       int                         `json:"students,omitempty"`
	PaxTotal       int                         `json:"pax_total,omitempty"`
	StartDate      string                      `json:"start_date,omitempty"` // ISO date or empty
	EndDate        string                      `json:"end_date,omitempty"`   // ISO date or empty
	Itinerary      map[string][]ItineraryEntry `json:"itinerary,omitempty"`  // ISO date -> ordered entries
	HotelName      string                      `json:"hotel_name,omitempty"`
	MealPlan       string                      `json:"meal_plan,omitempty"` // board regimen code
	CoordinatorFee float64                     `json:"coordinator_fee,omitempty"`
	Currency       string                      `json:"currency,omitempty"`
}

// Pax returns the group's total head count, derived from the adult and
// student counts when no explicit total is set.
func (g GroupRecord) Pax() int {
	if g.PaxTotal > 0 {
		return g.PaxTotal
	}
	return g.Adults + g.Students
}

// ItineraryDates returns the itinerary's dates in ascending order.
// ISO dates sort correctly as strings.
func (g GroupRecord) ItineraryDates() []string {
	dates := make([]string, 0, len(g.Itinerary))
	for d := range g.Itinerary {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// ExpenseEntry is one field-expense document attached to a group.
type ExpenseEntry struct {
	ID             string  `json:"id,omitempty"`
	DocType        string  `json:"doc_type,omitempty"`
	Concept        string  `json:"concept,omitempty"`
	ApprovedAmount float64 `json:"approved_amount"`
	Currency       string  `json:"currency,omitempty"`
	SubmittedBy    string  `json:"submitted_by,omitempty"`
}
