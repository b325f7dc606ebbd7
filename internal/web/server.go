// Package web provides an HTTP status server for the plant-sensor daemon.
package web

import (
	"context"
	"fmt"
	"image"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sweeney/plant-sensor/internal/status"
	"github.com/sweeney/plant-sensor/internal/storage"
)

const (
	defaultHistoryLimit = 48
	maxHistoryLimit     = 1000
	maxScreenScale      = 8
)

// ScreenSource provides the frame currently on the display.
type ScreenSource interface {
	Snapshot() image.Image
}

// HistorySource provides recent telemetry cycles.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]storage.Entry, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	screen     ScreenSource
	history    HistorySource
	logger     zerolog.Logger
}

// New creates a Server that reads state from the given tracker.
// screen and history may be nil, in which case their endpoints return 404.
func New(addr string, tracker *status.Tracker, screen ScreenSource, history HistorySource, logger zerolog.Logger) *Server {
	s := &Server{
		tracker: tracker,
		screen:  screen,
		history: history,
		logger:  logger.With().Str("component", "web").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/screen.png", s.handleScreen)
	mux.HandleFunc("/history.json", s.handleHistory)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap, s.screen != nil, s.history != nil); err != nil {
		s.logger.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if s.screen == nil {
		http.NotFound(w, r)
		return
	}
	scale, err := intParam(r, "scale", 1, 1, maxScreenScale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := encodeScreen(w, s.screen.Snapshot(), scale); err != nil {
		s.logger.Error().Err(err).Msg("encode screen")
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}
	limit, err := intParam(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("read history")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatHistory(entries))
}

// intParam reads an integer query parameter within [lo, hi].
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}
