// Package web serves the pre-sale calendar over HTTP.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pfrederiksen/hsv-vvk/internal/calendar"
	"github.com/pfrederiksen/hsv-vvk/internal/logger"
	"github.com/pfrederiksen/hsv-vvk/internal/scraper"
)

// Source produces the events for one feed request.
type Source interface {
	FetchMatches(ctx context.Context) *scraper.Result
}

// Options configures the feed handler.
type Options struct {
	CalendarName   string
	Team           string
	RequestTimeout time.Duration
}

// Handler holds the HTTP handlers and their dependencies. It keeps no state
// between requests.
type Handler struct {
	source   Source
	opts     Options
	filename string
}

// New creates a new Handler that reads events from source.
func New(source Source, opts Options) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = time.Minute
	}
	return &Handler{
		source:   source,
		opts:     opts,
		filename: calendar.Filename(opts.Team),
	}
}

// RegisterRoutes registers all HTTP routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/cal.ics", h.noCache(h.handleCalendar))
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/metrics", h.handleMetrics)
}

func (h *Handler) noCache(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next(w, r)
	}
}

// handleCalendar always answers 200 with a calendar body; a failed fetch
// produces an empty calendar.
func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	started := time.Now()
	logger.IncrCounter("feed.requests")

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	result := h.source.FetchMatches(ctx)
	body := calendar.Generate(h.opts.CalendarName, result.Events)

	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+h.filename)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write([]byte(body))
	}

	if result.Failed {
		logger.IncrCounter("feed.degraded")
	}
	logger.SetGauge("feed.last_event_count", float64(len(result.Events)))
	logger.RecordTiming("feed.request", time.Since(started))
	logger.Info("Feed served", logger.Fields{
		"events":     len(result.Events),
		"rows":       result.Rows,
		"skipped":    result.Skipped,
		"mismatched": result.Mismatched,
		"degraded":   result.Failed,
		"duration":   time.Since(started).String(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(logger.GetMetricsSnapshot())
}
