package engine

import (
	"math"
	"time"
)

// NextOccurrence computes the next annual occurrence of a birth date
// relative to now, the age turned at that occurrence, and the count of whole
// days until it. The occurrence is never in the past; the day count is zero
// exactly on the birthday itself.
//
// Leap-day births: time.Date normalizes Feb 29 to Mar 1 in non-leap years,
// and that normalized day is the occurrence used. In leap years Feb 29 is
// preserved.
func NextOccurrence(now, birth time.Time) (next time.Time, age, daysUntil int) {
	// Birthdays are defined by the local calendar date, so the comparison
	// happens in now's location.
	loc := now.Location()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	candidate := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, loc)

	if candidate.Before(today) {
		candidate = time.Date(now.Year()+1, birth.Month(), birth.Day(), 0, 0, 0, 0, loc)
	}

	age = candidate.Year() - birth.Year()

	// Rounding absorbs DST transitions between today and the occurrence.
	daysUntil = int(math.Round(candidate.Sub(today).Hours() / 24))

	return candidate, age, daysUntil
}
