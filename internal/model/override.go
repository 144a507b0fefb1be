package model

import "time"

// OverrideRecord is a persisted manual correction to one cost line.
// It is the only mutable entity the engine writes; concurrent writers
// get last-write-wins per field.
type OverrideRecord struct {
	GroupID          string    `json:"group_id"`
	LineID           string    `json:"line_id"`
	PriceOverride    *float64  `json:"price_override,omitempty"`
	QuantityOverride *float64  `json:"quantity_override,omitempty"`
	Reviewed         bool      `json:"reviewed"`
	Note             string    `json:"note,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
	UpdatedBy        string    `json:"updated_by,omitempty"`
}

// HasOverride reports whether the record actually overrides anything.
// A record can exist purely to carry the reviewed flag or a note.
func (r OverrideRecord) HasOverride() bool {
	return r.PriceOverride != nil || r.QuantityOverride != nil
}

// OverridePatch is a field-level partial update to an OverrideRecord.
// Each field is independently settable; the Clear flags remove a field's
// override without touching the others.
type OverridePatch struct {
	Price         *float64 `json:"price,omitempty"`
	ClearPrice    bool     `json:"clear_price,omitempty"`
	Quantity      *float64 `json:"quantity,omitempty"`
	ClearQuantity bool     `json:"clear_quantity,omitempty"`
	Reviewed      *bool    `json:"reviewed,omitempty"`
	Note          *string  `json:"note,omitempty"`
	ClearNote     bool     `json:"clear_note,omitempty"`
	UpdatedBy     string   `json:"updated_by,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p OverridePatch) Empty() bool {
	return p.Price == nil && !p.ClearPrice &&
		p.Quantity == nil && !p.ClearQuantity &&
		p.Reviewed == nil &&
		p.Note == nil && !p.ClearNote
}

// Apply merges the patch into the record field by field. Clear flags win
// over set values for the same field.
func (r *OverrideRecord) Apply(p OverridePatch, now time.Time) {
	if p.ClearPrice {
		r.PriceOverride = nil
	} else if p.Price != nil {
		v := *p.Price
		r.PriceOverride = &v
	}

	if p.ClearQuantity {
		r.QuantityOverride = nil
	} else if p.Quantity != nil {
		v := *p.Quantity
		r.QuantityOverride = &v
	}

	if p.Reviewed != nil {
		r.Reviewed = *p.Reviewed
	}

	if p.ClearNote {
		r.Note = ""
	} else if p.Note != nil {
		r.Note = *p.Note
	}

	r.UpdatedAt = now.UTC()
	if p.UpdatedBy != "" {
		r.UpdatedBy = p.UpdatedBy
	}
}
