package engine

import (
	"encoding/json"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
)

// BirthdayResult is one upcoming birthday of a living person.
// Results are created fresh each refresh cycle, never mutated after
// construction, and fully replaced by the next cycle's output.
type BirthdayResult struct {
	// PersonName is the display name (first name plus first surname).
	PersonName string

	// BirthDate is the parsed date of birth.
	BirthDate time.Time

	// NextBirthday is the next annual occurrence, today or later.
	// This is the primary sorting key of the pipeline output.
	NextBirthday time.Time

	// Age is the age turned at NextBirthday.
	Age int

	// DaysUntil is the number of whole days from today until NextBirthday.
	// Zero exactly on the birthday itself.
	DaysUntil int
}

// MarshalJSON renders dates as plain ISO calendar dates, the shape the host
// consumes in sensor attributes.
func (r BirthdayResult) MarshalJSON() ([]byte, error) {
	type payload struct {
		PersonName   string `json:"person_name"`
		BirthDate    string `json:"birth_date"`
		NextBirthday string `json:"next_birthday"`
		Age          int    `json:"age"`
		DaysUntil    int    `json:"days_until"`
	}
	return json.Marshal(payload{
		PersonName:   r.PersonName,
		BirthDate:    r.BirthDate.Format(config.DateFormatISO),
		NextBirthday: r.NextBirthday.Format(config.DateFormatISO),
		Age:          r.Age,
		DaysUntil:    r.DaysUntil,
	})
}
