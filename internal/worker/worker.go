// Package worker drives the refresh cadence: it runs the pipeline, renders
// the outputs and publishes them as one atomic snapshot.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/engine"
	"github.com/EdgarM73/gramps-ha/internal/feed"
	"github.com/EdgarM73/gramps-ha/internal/i18n"
	"github.com/EdgarM73/gramps-ha/internal/metrics"
	"github.com/EdgarM73/gramps-ha/internal/sensor"
	"github.com/EdgarM73/gramps-ha/internal/server"
)

// Worker owns the periodic refresh loop. It never terminates the process on
// a failed cycle; the host only ever observes "data" or "no data this
// cycle".
type Worker struct {
	Generator  *engine.Generator
	Server     *server.Server
	Feed       *feed.Builder
	Translator *i18n.Translator
	Settings   *config.Settings
}

// Run performs an immediate first refresh, then refreshes on the configured
// interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	w.Refresh(ctx)

	interval := w.Settings.RefreshInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-ticker.C:
			w.Refresh(ctx)
		}
	}
}

// Refresh executes one full cycle: pipeline, rendering, publish. A pipeline
// failure publishes an empty snapshot that replaces the previous data in
// full.
func (w *Worker) Refresh(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Info(config.MsgCycleStarted)

	start := time.Now()
	metrics.CyclesTotal.Inc()

	results, err := w.Generator.ComputeBirthdays(ctx, engine.Options{
		SurnameFilter: w.Settings.SurnameFilter,
		Limit:         w.Settings.Limit,
	})
	if err != nil {
		metrics.CycleFailures.Inc()
		log.Error(config.MsgCycleFailed, config.LogKeyError, err)
		results = nil
	}

	metrics.UpcomingBirthdays.Set(float64(len(results)))
	metrics.CycleDuration.Observe(time.Since(start).Seconds())

	states := sensor.Build(w.Translator, results, w.Settings.DisplayCount)
	sensorsJSON, err := sensor.Encode(states)
	if err != nil {
		log.Error(config.ErrSensorEncode, config.LogKeyError, err)
		sensorsJSON = []byte("[]")
	}

	calendar, err := w.Feed.Build(w.Generator.Clock.Now(), results)
	if err != nil {
		log.Error(config.ErrICalEncode, config.LogKeyError, err)
		calendar = []byte(config.StubVCalendar)
	}

	w.Server.Update(sensorsJSON, calendar)

	log.Info(config.MsgCycleSuccess,
		config.LogKeyCount, len(results),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
}
