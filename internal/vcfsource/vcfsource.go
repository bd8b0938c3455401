// Package vcfsource serves person records synthesized from a local vCard
// file. It implements the same source contract as the Gramps Web client,
// which lets the birthday pipeline run without a reachable server.
package vcfsource

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/gramps"
	"github.com/emersion/go-vcard"
)

// Source reads a .vcf file on every listing, so edits to the file are picked
// up on the next refresh cycle without a restart.
type Source struct {
	Path string

	mu     sync.Mutex
	events map[string]gramps.EventRecord
}

// New creates a Source for the given vCard file path.
func New(path string) *Source {
	return &Source{
		Path:   path,
		events: make(map[string]gramps.EventRecord),
	}
}

// ListPeople decodes the vCard file and synthesizes one person record per
// card. Cards with a parseable BDAY get a single birth event reachable
// through FetchEvent; malformed cards are skipped to maximize data recovery.
func (s *Source) ListPeople(ctx context.Context) ([]gramps.PersonRecord, error) {
	if s.Path == "" {
		return nil, errors.New(config.ErrLocalPathEmpty)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = f.Close() }()

	decoder := vcard.NewDecoder(f)
	events := make(map[string]gramps.EventRecord)
	var people []gramps.PersonRecord

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompVCF,
				config.LogKeyError, err,
			)
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		refs := []gramps.EventReference{}
		birthIdx := config.RefIndexUnknown

		if bday := card.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
			if t, ok := parseBDAY(bday.Value); ok {
				handle := eventHandle(name, bday.Value)
				events[handle] = gramps.EventRecord{
					Type: gramps.EventType{Label: config.EventTypeBirth},
					Date: &gramps.EventDate{
						// Native dateval order: [day, month, year].
						Dateval: []any{t.Day(), int(t.Month()), t.Year()},
					},
				}
				refs = append(refs, gramps.EventReference{"ref": handle})
				birthIdx = 0
			} else {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompVCF,
					config.LogKeyValue, bday.Value,
				)
			}
		}

		first, surname := splitName(name)
		primary := &gramps.PrimaryName{FirstName: first}
		if surname != "" {
			primary.SurnameList = []gramps.Surname{{Surname: surname}}
		}

		people = append(people, gramps.PersonRecord{
			PrimaryName:   primary,
			EventRefList:  refs,
			BirthRefIndex: birthIdx,
			DeathRefIndex: config.RefIndexUnknown,
		})
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	return people, nil
}

// FetchEvent serves the events synthesized by the last ListPeople call.
func (s *Source) FetchEvent(_ context.Context, handle string) (gramps.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[handle]
	if !ok {
		return gramps.EventRecord{}, fmt.Errorf("%s %q: %w", config.ErrEventFetch, handle, gramps.ErrNotFound)
	}
	return event, nil
}

// parseBDAY accepts the full-date vCard layouts. Truncated no-year forms are
// rejected; the pipeline needs a birth year for age math.
func parseBDAY(value string) (time.Time, bool) {
	for _, layout := range []string{config.DateFormatFullDash, config.DateFormatFullBasic} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// splitName separates a formatted name into first name and surname on the
// last space. Single-token names carry no surname.
func splitName(name string) (first, surname string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, " "); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// eventHandle derives a stable handle from the card contents, so repeated
// listings resolve identically.
func eventHandle(name, bday string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, bday, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
