// Package bridge serves a read-only JSON view of the orchestrator's
// iteration history and agent weights for external dashboards.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/orchestrator"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

var errServerDisabled = errors.New("bridge: server disabled")

// Source is the read surface the bridge exposes.
type Source interface {
	Iterations() []*orchestrator.Iteration
	Weights() map[council.AgentID]float64
	WeightHistory() map[council.AgentID][]float64
	CompareIterations(i, j int) (*orchestrator.ComparisonReport, error)
}

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server wraps the HTTP listener and handlers backing the bridge.
type Server struct {
	settings Settings
	source   Source
	logger   Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a bridge server over the given source.
func NewServer(settings Settings, source Source, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		source:   source,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("bridge: server is nil")
	}
	if !s.settings.Enabled {
		return errServerDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("bridge: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/iterations", s.handleIterations)
	mux.HandleFunc("/iterations/compare", s.handleCompare)
	mux.HandleFunc("/weights", s.handleWeights)
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("bridge: serve error: %v", err)
		}
	}()
	s.logger.Printf("bridge: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}

type healthResponse struct {
	Status        string `json:"status"`
	Iterations    int    `json:"iterations"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// iterationListing is the compact row served by /iterations; dashboards
// needing the full record read the state files directly.
type iterationListing struct {
	Index      int             `json:"index"`
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Winner     council.AgentID `json:"winner"`
	Platform   string          `json:"platform"`
	Engagement float64         `json:"engagement"`
}

type weightsResponse struct {
	Current map[council.AgentID]float64   `json:"current"`
	History map[council.AgentID][]float64 `json:"history"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Iterations:    len(s.source.Iterations()),
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleIterations(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	history := s.source.Iterations()
	listings := make([]iterationListing, 0, len(history))
	for i, iter := range history {
		row := iterationListing{
			Index:      i,
			ID:         iter.ID,
			Timestamp:  iter.Timestamp,
			Winner:     iter.Decision.Winner,
			Engagement: iter.Engagement.OverallScore,
		}
		if iter.Content != nil {
			row.Platform = string(iter.Content.Platform)
		}
		listings = append(listings, row)
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	a, errA := strconv.Atoi(r.URL.Query().Get("a"))
	b, errB := strconv.Atoi(r.URL.Query().Get("b"))
	if errA != nil || errB != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query params a and b must be integers"})
		return
	}
	report, err := s.source.CompareIterations(a, b)
	if err != nil {
		var rangeErr *orchestrator.RangeError
		if errors.As(err, &rangeErr) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": rangeErr.Error()})
			return
		}
		s.logger.Printf("bridge: compare error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "comparison failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, weightsResponse{
		Current: s.source.Weights(),
		History: s.source.WeightHistory(),
	})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
