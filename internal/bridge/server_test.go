package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tkaria/council/internal/config"
	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/engagement"
	"github.com/tkaria/council/internal/orchestrator"
)

type stubSource struct {
	iterations []*orchestrator.Iteration
	weights    map[council.AgentID]float64
	history    map[council.AgentID][]float64
}

func (s *stubSource) Iterations() []*orchestrator.Iteration        { return s.iterations }
func (s *stubSource) Weights() map[council.AgentID]float64         { return s.weights }
func (s *stubSource) WeightHistory() map[council.AgentID][]float64 { return s.history }

func (s *stubSource) CompareIterations(i, j int) (*orchestrator.ComparisonReport, error) {
	length := len(s.iterations)
	if i < 0 || i >= length {
		return nil, &orchestrator.RangeError{Index: i, Length: length}
	}
	if j < 0 || j >= length {
		return nil, &orchestrator.RangeError{Index: j, Length: length}
	}
	return &orchestrator.ComparisonReport{
		First:          orchestrator.IterationSummary{Index: i, Winner: s.iterations[i].Decision.Winner},
		Second:         orchestrator.IterationSummary{Index: j, Winner: s.iterations[j].Decision.Winner},
		WinnerChanged:  s.iterations[i].Decision.Winner != s.iterations[j].Decision.Winner,
		EngagementDiff: s.iterations[j].Engagement.OverallScore - s.iterations[i].Engagement.OverallScore,
	}, nil
}

func testSource() *stubSource {
	return &stubSource{
		iterations: []*orchestrator.Iteration{
			{
				ID:         "iter-1",
				Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				Decision:   council.Decision{Winner: "viral_hunter"},
				Engagement: engagement.Result{OverallScore: 6.5},
			},
			{
				ID:         "iter-2",
				Timestamp:  time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
				Decision:   council.Decision{Winner: "brand_guardian"},
				Engagement: engagement.Result{OverallScore: 8.0},
			},
		},
		weights: map[council.AgentID]float64{"viral_hunter": 1.1, "brand_guardian": 0.99},
		history: map[council.AgentID][]float64{"viral_hunter": {1.05, 1.1}, "brand_guardian": {1.0, 0.99}},
	}
}

func testSettings() Settings {
	return Settings{Enabled: true, Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
}

func startServer(t *testing.T, source Source) *Server {
	t.Helper()
	srv := NewServer(testSettings(), source)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("COUNCIL_BRIDGE_PORT", "9001")
	t.Setenv("COUNCIL_BRIDGE_HOST", "0.0.0.0")
	t.Setenv("COUNCIL_BRIDGE_ENABLED", "false")
	cfg := &config.Config{}
	settings := SettingsFromConfig(cfg)
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
}

func TestServerHealth(t *testing.T) {
	srv := startServer(t, testSource())

	var health healthResponse
	getJSON(t, srv.BaseURL()+"/health", http.StatusOK, &health)
	if health.Status != string(StatusReady) {
		t.Errorf("status = %q, want ready", health.Status)
	}
	if health.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", health.Iterations)
	}
}

func TestServerIterations(t *testing.T) {
	srv := startServer(t, testSource())

	var listings []iterationListing
	getJSON(t, srv.BaseURL()+"/iterations", http.StatusOK, &listings)
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(listings))
	}
	if listings[0].ID != "iter-1" || listings[0].Winner != "viral_hunter" {
		t.Errorf("first listing = %+v", listings[0])
	}
	if listings[1].Index != 1 || listings[1].Engagement != 8.0 {
		t.Errorf("second listing = %+v", listings[1])
	}
}

func TestServerCompare(t *testing.T) {
	srv := startServer(t, testSource())

	var report orchestrator.ComparisonReport
	getJSON(t, srv.BaseURL()+"/iterations/compare?a=0&b=1", http.StatusOK, &report)
	if !report.WinnerChanged {
		t.Errorf("winner_changed = false, want true")
	}
	if report.EngagementDiff != 1.5 {
		t.Errorf("engagement diff = %v, want 1.5", report.EngagementDiff)
	}

	getJSON(t, srv.BaseURL()+"/iterations/compare?a=0&b=9", http.StatusNotFound, nil)
	getJSON(t, srv.BaseURL()+"/iterations/compare?a=zero&b=1", http.StatusBadRequest, nil)
}

func TestServerWeights(t *testing.T) {
	srv := startServer(t, testSource())

	var weights weightsResponse
	getJSON(t, srv.BaseURL()+"/weights", http.StatusOK, &weights)
	if weights.Current["viral_hunter"] != 1.1 {
		t.Errorf("current viral_hunter = %v, want 1.1", weights.Current["viral_hunter"])
	}
	if len(weights.History["brand_guardian"]) != 2 {
		t.Errorf("history brand_guardian = %v", weights.History["brand_guardian"])
	}
}

func TestServerRejectsWrites(t *testing.T) {
	srv := startServer(t, testSource())

	resp, err := http.Post(srv.BaseURL()+"/iterations", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServerDisabled(t *testing.T) {
	settings := testSettings()
	settings.Enabled = false
	srv := NewServer(settings, testSource())
	if err := srv.Start(context.Background()); err == nil {
		t.Fatalf("expected disabled error")
	}
}
