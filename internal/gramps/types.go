package gramps

import (
	"encoding/json"

	"github.com/EdgarM73/gramps-ha/internal/config"
)

// EventReference is a pointer-like mapping identifying an event. Depending on
// the exporter, the handle may appear under different keys ("ref", "handle"
// or "hlink"), and values are not guaranteed to be strings. Keeping the raw
// map makes absence distinguishable from malformed data.
type EventReference map[string]any

// Surname is one entry of a person's surname list.
type Surname struct {
	Surname string `json:"surname"`
}

// PrimaryName carries the display-relevant parts of a person's name.
type PrimaryName struct {
	FirstName   string    `json:"first_name"`
	SurnameList []Surname `json:"surname_list"`
}

// PersonRecord is the subset of a Gramps Web person payload this service
// reads. Records are owned by the upstream service and never mutated here.
type PersonRecord struct {
	PrimaryName   *PrimaryName     `json:"primary_name"`
	EventRefList  []EventReference `json:"event_ref_list"`
	BirthRefIndex int              `json:"birth_ref_index"`
	DeathRefIndex int              `json:"death_ref_index"`
}

// UnmarshalJSON decodes a person while defaulting absent reference indexes to
// the unknown sentinel. A plain decode would turn "field missing" into 0,
// which for death_ref_index means "deceased".
func (p *PersonRecord) UnmarshalJSON(data []byte) error {
	type alias PersonRecord
	aux := alias{
		BirthRefIndex: config.RefIndexUnknown,
		DeathRefIndex: config.RefIndexUnknown,
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PersonRecord(aux)
	return nil
}

// EventType is the event type label. Gramps serializes it either as an
// object carrying a "string" field or as a bare string.
type EventType struct {
	Label string
}

// UnmarshalJSON accepts both representations; anything else yields an empty
// label, which downstream classification treats as "not a birth event".
func (t *EventType) UnmarshalJSON(data []byte) error {
	var obj struct {
		String string `json:"string"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		t.Label = obj.String
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Label = s
		return nil
	}
	t.Label = ""
	return nil
}

// EventDate wraps the raw dateval triple. Elements are kept untyped because
// the upstream encoder is not consistent about numeric representation.
type EventDate struct {
	Dateval []any `json:"dateval"`
}

// EventRecord is the subset of a Gramps Web event payload this service reads.
type EventRecord struct {
	Type EventType  `json:"type"`
	Date *EventDate `json:"date"`
}

// Dateval returns the raw triple, or nil when the event carries no date.
func (e EventRecord) Dateval() []any {
	if e.Date == nil {
		return nil
	}
	return e.Date.Dateval
}
