package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/gramps"
	"github.com/EdgarM73/gramps-ha/internal/metrics"
)

// HasBirthDate reports whether any candidate event of the person carries a
// parseable date. Birth-type filtering is deliberately not applied at this
// stage; any dated event counts. The definitive check happens in
// ExtractBirthDate.
func (g *Generator) HasBirthDate(ctx context.Context, person gramps.PersonRecord) bool {
	_, ok := g.searchEventDate(ctx, person, false)
	return ok
}

// ExtractBirthDate returns the person's birth date, following the same
// candidate search order as HasBirthDate but additionally requiring the
// event type label to contain "birth" (case-insensitive).
func (g *Generator) ExtractBirthDate(ctx context.Context, person gramps.PersonRecord) (time.Time, bool) {
	return g.searchEventDate(ctx, person, true)
}

// searchEventDate walks the candidate events in the documented order: the
// birth_ref_index entry first when it is a valid index into the event list,
// then every entry of the list in sequence. A failure on one candidate means
// "try the next one".
func (g *Generator) searchEventDate(ctx context.Context, person gramps.PersonRecord, requireBirth bool) (time.Time, bool) {
	refs := person.EventRefList

	if idx := person.BirthRefIndex; idx >= 0 && idx < len(refs) {
		if d, ok := g.candidateDate(ctx, refs[idx], requireBirth); ok {
			return d, true
		}
	}

	for _, ref := range refs {
		if d, ok := g.candidateDate(ctx, ref, requireBirth); ok {
			return d, true
		}
	}

	return time.Time{}, false
}

// candidateDate resolves, fetches and parses a single candidate event.
// Transport errors and missing events alike mean "no data for this
// candidate"; they never escape this scope.
func (g *Generator) candidateDate(ctx context.Context, ref gramps.EventReference, requireBirth bool) (time.Time, bool) {
	handle, ok := ResolveEventHandle(ref)
	if !ok {
		return time.Time{}, false
	}

	metrics.EventFetches.Inc()
	event, err := g.Source.FetchEvent(ctx, handle)
	if err != nil {
		metrics.EventFetchFailures.Inc()
		slog.Debug(config.MsgSkippedEvent,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyHandle, handle,
			config.LogKeyError, err,
		)
		return time.Time{}, false
	}

	if requireBirth &&
		!strings.Contains(strings.ToLower(event.Type.Label), config.BirthTypeSubstring) {
		return time.Time{}, false
	}

	return ParseDateval(event.Dateval())
}

// IsAlive reports whether the person has no death event. The mere presence
// of a death reference index (any value other than the unknown sentinel,
// including 0) marks the person deceased, regardless of whether that event
// is itself resolvable.
func IsAlive(person gramps.PersonRecord) bool {
	return person.DeathRefIndex == config.RefIndexUnknown
}

// DisplayName joins the first name and the first surname, trimmed.
// Missing fields degrade to the fallback name.
func DisplayName(person gramps.PersonRecord) string {
	if person.PrimaryName == nil {
		return config.FallbackName
	}

	surname := ""
	if list := person.PrimaryName.SurnameList; len(list) > 0 {
		surname = list[0].Surname
	}

	full := strings.TrimSpace(person.PrimaryName.FirstName + " " + surname)
	if full == "" {
		return config.FallbackName
	}
	return full
}
