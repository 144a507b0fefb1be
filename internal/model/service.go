package model

// ChargeType describes how a service's unit price scales.
type ChargeType string

const (
	ChargePerPerson ChargeType = "PER_PERSON"
	ChargePerGroup  ChargeType = "PER_GROUP"
	ChargePerDay    ChargeType = "PER_DAY"
	ChargeOther     ChargeType = "OTHER"
)

// ParseChargeType maps a raw charge-type string to a known ChargeType,
// defaulting to ChargeOther for anything unrecognized.
func ParseChargeType(s string) ChargeType {
	switch ChargeType(s) {
	case ChargePerPerson, ChargePerGroup, ChargePerDay:
		return ChargeType(s)
	default:
		return ChargeOther
	}
}

// ServiceRecord is one bookable service in a destination's catalog.
// Records are immutable snapshots loaded per session.
type ServiceRecord struct {
	Destination   string     `json:"destination"`
	ID            string     `json:"id"`
	CanonicalName string     `json:"canonical_name"`
	Provider      string     `json:"provider,omitempty"`
	City          string     `json:"city,omitempty"`
	ChargeType    ChargeType `json:"charge_type"`
	Currency      string     `json:"currency"`
	UnitPrice     float64    `json:"unit_price"`
	Aliases       []string   `json:"aliases,omitempty"`
}
