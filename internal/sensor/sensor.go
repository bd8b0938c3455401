// Package sensor renders pipeline results as the named values the host
// automation platform consumes: one state per rank position up to the
// display count, plus one aggregate state carrying the full list.
package sensor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/engine"
	"github.com/EdgarM73/gramps-ha/internal/i18n"
)

// State is one host-facing value.
type State struct {
	EntityID   string         `json:"entity_id"`
	Name       string         `json:"name"`
	State      string         `json:"state"`
	Icon       string         `json:"icon"`
	Attributes map[string]any `json:"attributes"`
}

// Build produces the ranked states and the aggregate state for one refresh
// cycle. Ranks beyond the result count read "unknown" with empty attributes.
func Build(tr *i18n.Translator, results []engine.BirthdayResult, displayCount int) []State {
	if displayCount <= 0 {
		displayCount = config.DefaultDisplayCount
	}

	states := make([]State, 0, displayCount+1)

	for i := 0; i < displayCount; i++ {
		rank := i + 1
		state := State{
			EntityID:   fmt.Sprintf(config.SensorIDNextFormat, rank),
			Name:       rankName(tr, rank),
			State:      config.SensorStateUnknown,
			Icon:       config.IconCake,
			Attributes: map[string]any{},
		}

		if i < len(results) {
			r := results[i]
			state.State = fmt.Sprintf(config.SensorStateFormat,
				r.PersonName,
				r.NextBirthday.Format(config.SensorDateFormat),
				rank,
			)
			state.Attributes = map[string]any{
				config.AttrPersonName:   r.PersonName,
				config.AttrBirthDate:    r.BirthDate.Format(config.DateFormatISO),
				config.AttrAge:          r.Age,
				config.AttrDaysUntil:    r.DaysUntil,
				config.AttrNextBirthday: r.NextBirthday.Format(config.DateFormatISO),
			}
		}

		states = append(states, state)
	}

	if results == nil {
		results = []engine.BirthdayResult{}
	}
	states = append(states, State{
		EntityID: config.SensorIDAll,
		Name:     aggregateName(tr),
		State:    strconv.Itoa(len(results)),
		Icon:     config.IconCalendar,
		Attributes: map[string]any{
			config.AttrBirthdays: results,
		},
	})

	return states
}

// Encode marshals the states for the HTTP surface.
func Encode(states []State) ([]byte, error) {
	return json.Marshal(states)
}

func rankName(tr *i18n.Translator, rank int) string {
	if tr != nil {
		if msg := tr.MsgTpl(config.TKeySensorNext, map[string]any{"Rank": rank}); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf(config.FallbackSensorNext, rank)
}

func aggregateName(tr *i18n.Translator) string {
	if tr != nil {
		if msg := tr.Msg(config.TKeySensorAll); msg != config.TKeySensorAll {
			return msg
		}
	}
	return config.FallbackSensorAll
}
