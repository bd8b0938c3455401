package sensor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []engine.BirthdayResult {
	return []engine.BirthdayResult{
		{
			PersonName:   "Jean Dupont",
			BirthDate:    time.Date(1990, 7, 15, 0, 0, 0, 0, time.UTC),
			NextBirthday: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
			Age:          35,
			DaysUntil:    5,
		},
		{
			PersonName:   "Marie Martin",
			BirthDate:    time.Date(1985, 12, 24, 0, 0, 0, 0, time.UTC),
			NextBirthday: time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC),
			Age:          40,
			DaysUntil:    167,
		},
	}
}

func TestBuild_RankedStates(t *testing.T) {
	states := Build(nil, sampleResults(), 3)

	// 3 ranked states plus the aggregate.
	require.Len(t, states, 4)

	first := states[0]
	assert.Equal(t, "next_birthday_1", first.EntityID)
	assert.Equal(t, "Jean Dupont - 15.07.2025 (1)", first.State)
	assert.Equal(t, config.IconCake, first.Icon)
	assert.Equal(t, "Jean Dupont", first.Attributes[config.AttrPersonName])
	assert.Equal(t, "1990-07-15", first.Attributes[config.AttrBirthDate])
	assert.Equal(t, 35, first.Attributes[config.AttrAge])
	assert.Equal(t, 5, first.Attributes[config.AttrDaysUntil])

	second := states[1]
	assert.Equal(t, "next_birthday_2", second.EntityID)
	assert.Equal(t, "Marie Martin - 24.12.2025 (2)", second.State)

	// Rank 3 has no matching result.
	third := states[2]
	assert.Equal(t, "next_birthday_3", third.EntityID)
	assert.Equal(t, config.SensorStateUnknown, third.State)
	assert.Empty(t, third.Attributes)
}

func TestBuild_AggregateState(t *testing.T) {
	states := Build(nil, sampleResults(), 2)
	require.Len(t, states, 3)

	agg := states[len(states)-1]
	assert.Equal(t, config.SensorIDAll, agg.EntityID)
	assert.Equal(t, "2", agg.State, "Aggregate state is the total count")
	assert.Equal(t, config.IconCalendar, agg.Icon)

	birthdays, ok := agg.Attributes[config.AttrBirthdays].([]engine.BirthdayResult)
	require.True(t, ok)
	assert.Len(t, birthdays, 2)
}

func TestBuild_EmptyCycle(t *testing.T) {
	// A failed or empty cycle still produces the full sensor set, with
	// every rank unknown and a zero aggregate.
	states := Build(nil, nil, 2)
	require.Len(t, states, 3)

	assert.Equal(t, config.SensorStateUnknown, states[0].State)
	assert.Equal(t, config.SensorStateUnknown, states[1].State)
	assert.Equal(t, "0", states[2].State)
}

func TestBuild_DefaultDisplayCount(t *testing.T) {
	states := Build(nil, nil, 0)
	assert.Len(t, states, config.DefaultDisplayCount+1)
}

func TestEncode_RoundTrip(t *testing.T) {
	data, err := Encode(Build(nil, sampleResults(), 1))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "next_birthday_1", decoded[0]["entity_id"])
	assert.Equal(t, config.SensorIDAll, decoded[1]["entity_id"])

	// BirthdayResult marshals dates as ISO strings.
	attrs, ok := decoded[1]["attributes"].(map[string]any)
	require.True(t, ok)
	list, ok := attrs[config.AttrBirthdays].([]any)
	require.True(t, ok)
	entry, ok := list[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1990-07-15", entry["birth_date"])
	assert.Equal(t, "2025-07-15", entry["next_birthday"])
	assert.Equal(t, "Jean Dupont", entry["person_name"])
}
