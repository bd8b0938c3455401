package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// snapshot stores one cycle's rendered outputs and the metadata for HTTP
// caching of the calendar feed.
type snapshot struct {
	sensors      []byte
	calendar     []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// Server exposes the latest snapshot to the host: sensor states as JSON, the
// iCalendar feed, a health probe and the metrics endpoint.
type Server struct {
	// cache uses atomic.Pointer for lock-free reads. Snapshots are read
	// frequently by clients but replaced only once per refresh cycle, so
	// this avoids contention on the hot path (HTTP GET).
	cache atomic.Pointer[snapshot]

	BindAddr string
	Port     string
}

// New creates a server bound to addr:port.
func New(bindAddr, port string) *Server {
	return &Server{
		BindAddr: bindAddr,
		Port:     port,
	}
}

// Start initializes the HTTP server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteSensors, s.handleSensors)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendar)
	mux.HandleFunc(config.RouteHealth, s.handleHealth)
	mux.Handle(config.RouteMetrics,
		promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         s.BindAddr + config.AddrSeparator + s.Port,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served snapshot.
func (s *Server) Update(sensors, calendar []byte) {
	hash := sha256.Sum256(calendar)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
	lastMod := time.Now().UTC().Format(http.TimeFormat)

	item := &snapshot{
		sensors:      sensors,
		calendar:     calendar,
		etag:         etag,
		lastModified: lastMod,
	}

	// Atomic store ensures concurrent readers see either the old or the new
	// complete snapshot, never a partial state.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(sensors)+len(calendar),
		config.LogKeyETag, etag,
	)
}

// Snapshot returns the currently served payloads. The boolean is false
// before the first Update.
func (s *Server) Snapshot() (sensors, calendar []byte, ok bool) {
	item := s.cache.Load()
	if item == nil {
		return nil, nil, false
	}
	return item.sensors, item.calendar, true
}

// handleSensors serves the sensor states as JSON.
func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequests.WithLabelValues(config.RouteSensors).Inc()

	item, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)

	if r.Method == http.MethodGet {
		s.writeBody(w, item.sensors)
	}
}

// handleCalendar serves the ICS content with HTTP caching support.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequests.WithLabelValues(config.RouteCalendar).Inc()

	item, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				// If the snapshot is not newer than the client cache, return 304.
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		s.writeBody(w, item.calendar)
	}
}

// handleHealth reports process liveness. It intentionally succeeds before
// the first refresh completes; readiness is what the snapshot check covers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics.HTTPRequests.WithLabelValues(config.RouteHealth).Inc()

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, config.HTTPMsgOK)
}

// requireSnapshot validates the method and loads the current snapshot,
// answering 503 with a retry hint while the first cycle is still pending.
func (s *Server) requireSnapshot(w http.ResponseWriter, r *http.Request) (*snapshot, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return nil, false
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return nil, false
	}
	return item, true
}

func (s *Server) writeBody(w http.ResponseWriter, data []byte) {
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
