package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
)

// datevalOrderings holds the candidate index assignments (year, month, day)
// into the triple, in fixed priority order. The upstream serializer most
// often emits [day, month, year], so that interpretation is tried first.
var datevalOrderings = [...][3]int{
	{2, 1, 0}, // dateval = [day, month, year]
	{0, 1, 2}, // dateval = [year, month, day]
	{0, 2, 1}, // dateval = [year, day, month]
}

// ParseDateval interprets a raw dateval triple of unknown field order as a
// calendar date. Only the first three elements are considered; all must be
// integral. The first ordering whose year is >= 100, month is 1..12 and day
// is 1..31 is committed to. If the resulting calendar date is invalid
// (e.g. April 31) the whole triple is unparseable; later orderings are not
// retried.
//
// The result is "plausible", not "certainly correct": genuinely ambiguous
// triples resolve to the highest-priority interpretation.
func ParseDateval(vals []any) (time.Time, bool) {
	if len(vals) < 3 {
		return time.Time{}, false
	}

	var ints [3]int
	for i := 0; i < 3; i++ {
		n, ok := asInt(vals[i])
		if !ok {
			return time.Time{}, false
		}
		ints[i] = n
	}

	for _, ord := range datevalOrderings {
		year, month, day := ints[ord[0]], ints[ord[1]], ints[ord[2]]
		if year < config.MinPlausibleYear {
			continue
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
			return time.Time{}, false
		}
		return d, true
	}

	return time.Time{}, false
}

// asInt coerces the loosely-typed dateval elements into integers.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
