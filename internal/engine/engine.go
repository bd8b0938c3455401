package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/gramps"
	"github.com/EdgarM73/gramps-ha/internal/metrics"
)

// Source provides the person list and the event lookup capability. The HTTP
// client and the local vCard source both implement it, which keeps the
// pipeline independent of the transport.
type Source interface {
	ListPeople(ctx context.Context) ([]gramps.PersonRecord, error)
	FetchEvent(ctx context.Context, handle string) (gramps.EventRecord, error)
}

// Generator runs the birthday derivation pipeline against a Source.
// It holds no state between runs; every invocation resolves from scratch.
type Generator struct {
	Clock  Clock  // Interface for time mocking.
	Source Source // Interface for transport abstraction.
}

// Options tunes one pipeline run.
type Options struct {
	// SurnameFilter, when non-empty, retains only people whose display name
	// contains it (case-insensitive).
	SurnameFilter string

	// Limit truncates the sorted output. Zero or negative means the default.
	Limit int
}

// ComputeBirthdays derives the upcoming birthdays of living people.
//
// The returned error is reserved for the systemic case: the person list
// itself could not be fetched. Every per-person and per-event condition
// (unresolvable reference, unparseable date, missing birth event, failed
// single fetch) is a silent skip of that person or candidate. Callers are
// expected to degrade a returned error into an empty result set.
func (g *Generator) ComputeBirthdays(ctx context.Context, opts Options) ([]BirthdayResult, error) {
	start := time.Now()

	limit := opts.Limit
	if limit <= 0 {
		limit = config.DefaultLimit
	}
	filter := strings.ToLower(strings.TrimSpace(opts.SurnameFilter))

	log := slog.With(config.LogKeyComponent, config.CompEngine)
	if filter != "" {
		log.Debug(config.MsgFilterActive, config.LogKeyFilter, filter)
	}

	people, err := g.Source.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	metrics.PeopleListed.Set(float64(len(people)))

	now := g.Clock.Now()
	stats := struct{ listed, withBirth, living, deceased int }{listed: len(people)}

	var results []BirthdayResult
	for _, person := range people {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if !g.HasBirthDate(ctx, person) {
			continue
		}

		name := DisplayName(person)
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}

		// The pre-filter accepts any dated event, so a missing birth-typed
		// date at this point is a legitimate skip, not an inconsistency.
		birth, ok := g.ExtractBirthDate(ctx, person)
		if !ok {
			continue
		}
		stats.withBirth++

		if !IsAlive(person) {
			stats.deceased++
			log.Debug(config.MsgDeceasedSkip, config.LogKeyName, name)
			continue
		}
		stats.living++

		next, age, days := NextOccurrence(now, birth)
		results = append(results, BirthdayResult{
			PersonName:   name,
			BirthDate:    birth,
			NextBirthday: next,
			Age:          age,
			DaysUntil:    days,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DaysUntil < results[j].DaysUntil
	})
	if len(results) > limit {
		results = results[:limit]
	}

	log.Info(config.MsgPipelineStats,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyPeople, stats.listed),
			slog.Int(config.LogKeyWithBirth, stats.withBirth),
			slog.Int(config.LogKeyLiving, stats.living),
			slog.Int(config.LogKeyDeceased, stats.deceased),
			slog.Int(config.LogKeyResults, len(results)),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)

	return results, nil
}
