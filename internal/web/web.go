package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"timertable/internal/board"
	"timertable/internal/config"
	"timertable/internal/ics"
	appLog "timertable/internal/log"
	"timertable/internal/model"
)

// maxUpcomingDays bounds /api/upcoming windows.
const maxUpcomingDays = 31

// Server exposes the live board and the timetable over HTTP.
type Server struct {
	cfg   *config.Config
	board *board.Board
	mux   *http.ServeMux
	now   func() time.Time
}

// embeddedStatic contains the board page.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, b *board.Board) *Server {
	s := &Server{
		cfg:   cfg,
		board: b,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth rather than locking everyone out.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Timertable", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/timetable", s.handleTimetable)
	s.mux.HandleFunc("GET /api/theme", s.handleTheme)
	s.mux.HandleFunc("GET /api/upcoming", s.handleUpcoming)
	s.mux.HandleFunc("GET /calendar.ics", s.handleCalendar)

	// Everything else that is not /api/* is the embedded board page.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, s.board.Snapshot())
}

// timetableResponse is the JSON response shape for /api/timetable.
type timetableResponse struct {
	Timezone string                   `json:"timezone"`
	Days     []model.DayTimetable     `json:"days"`
	Names    [model.SchoolDays]string `json:"names"`
}

func (s *Server) handleTimetable(w http.ResponseWriter, _ *http.Request) {
	week := s.board.Week()
	resp := timetableResponse{
		Timezone: s.board.Location().String(),
		Days:     make([]model.DayTimetable, model.SchoolDays),
	}
	for d, day := range week {
		resp.Days[d] = day
		if resp.Days[d] == nil {
			resp.Days[d] = model.DayTimetable{}
		}
		resp.Names[d] = board.WeekdayName(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// cellColorDTO is a theme entry with hex colors.
type cellColorDTO struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

func (s *Server) handleTheme(w http.ResponseWriter, _ *http.Request) {
	resp := make(map[string]cellColorDTO, len(s.board.Theme()))
	for subject, c := range s.board.Theme() {
		resp[subject] = cellColorDTO{Background: c.Background.Hex(), Foreground: c.Foreground.Hex()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// upcomingResponse is the JSON response shape for /api/upcoming.
type upcomingResponse struct {
	Occurrences []ics.Occurrence `json:"occurrences"`
	RangeStart  time.Time        `json:"range_start"`
	RangeEnd    time.Time        `json:"range_end"`
}

// handleUpcoming lists lecture occurrences overlapping [now, now+days).
//
// GET /api/upcoming?days=7
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := parseIntDefault(r.URL.Query().Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	days = min(days, maxUpcomingDays)

	now := s.now().In(s.board.Location())
	end := now.AddDate(0, 0, days)
	occ := ics.Upcoming(s.board.Week(), now, end)
	if occ == nil {
		occ = []ics.Occurrence{}
	}
	writeJSON(w, http.StatusOK, upcomingResponse{Occurrences: occ, RangeStart: now, RangeEnd: end})
}

// handleCalendar exports the timetable as weekly recurring events anchored
// on the current week.
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	loc := s.board.Location()
	cal := ics.Export(s.board.Week(), ics.ExportOptions{From: s.now().In(loc), Location: loc})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timetable.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		appLog.Error("failed to write calendar", err)
	}
}

// staticFileServer serves the embedded board page from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		// Unknown API paths must 404 rather than return HTML.
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
