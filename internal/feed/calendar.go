// Package feed renders pipeline results as an iCalendar object, one all-day
// event per upcoming birthday.
package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/engine"
	"github.com/EdgarM73/gramps-ha/internal/i18n"
	"github.com/emersion/go-ical"
)

// Builder constructs the calendar feed. The zero value renders with fallback
// summaries and no reminders.
type Builder struct {
	Translator *i18n.Translator

	// ReminderTrigger, when set, attaches a DISPLAY alarm with this ISO8601
	// trigger (e.g. "-P1D") to every event.
	ReminderTrigger string
}

// Build encodes the results into an iCalendar byte stream. An empty result
// set yields a minimal valid VCALENDAR so clients do not flag the feed.
func (b *Builder) Build(now time.Time, results []engine.BirthdayResult) ([]byte, error) {
	if len(results) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: suggest a refresh interval matching the polling cadence.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, r := range results {
		event := ical.NewEvent()

		uidBase := resultUID(r)
		event.Props.SetText(config.PropUID,
			fmt.Sprintf(config.FormatUID, uidBase, r.NextBirthday.Year(), config.ICalDomain))

		summary := b.summary(r)
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(r.NextBirthday)
		event.Props.Set(dtStartProp)

		if b.ReminderTrigger != "" {
			addAlarm(event, b.ReminderTrigger, summary)
		}

		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// summary renders the localized event title.
func (b *Builder) summary(r engine.BirthdayResult) string {
	if b.Translator != nil {
		msg := b.Translator.MsgTpl(config.TKeyEvtSummaryAge, map[string]any{
			"Name": r.PersonName,
			"Age":  r.Age,
		})
		if msg != "" {
			return msg
		}
	}
	return fmt.Sprintf(config.FallbackSummaryAge, r.PersonName, r.Age)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// resultUID derives a deterministic identifier so feed entries stay stable
// across refreshes.
func resultUID(r engine.BirthdayResult) string {
	input := fmt.Sprintf(config.FormatHashInput,
		r.PersonName,
		r.BirthDate.Format(config.DateFormatISO),
		config.UIDSalt,
	)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
