package trends

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// googleStub serves the two-request widget dance: the explore call
// yields the timeseries token, the multiline call yields the timeline.
// Both carry Google's junk prefix line.
func googleStub(t *testing.T, timeline string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/trends/api/explore", func(w http.ResponseWriter, r *http.Request) {
		req := r.URL.Query().Get("req")
		if !strings.Contains(req, "now 7-d") {
			t.Errorf("explore req missing timeframe: %q", req)
		}
		fmt.Fprint(w, ")]}'\n{\"widgets\":[{\"id\":\"RELATED_QUERIES\",\"token\":\"nope\"},{\"id\":\"TIMESERIES\",\"token\":\"tok123\",\"request\":{\"time\":\"now 7-d\"}}]}")
	})
	mux.HandleFunc("/trends/api/widgetdata/multiline", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "tok123" {
			t.Errorf("token = %q, want tok123", got)
		}
		fmt.Fprint(w, ")]}'\n"+timeline)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGoogleFetchAveragesAndTiers(t *testing.T) {
	// AI averages 60 (high), startup 30 (medium), productivity 10 (low).
	timeline := `{"default":{"timelineData":[
	  {"value":[40,20,0]},
	  {"value":[80,40,20]}
	]}}`
	server := googleStub(t, timeline)
	source := NewGoogleSource([]string{"AI", "startup", "productivity"},
		WithGoogleBaseURL(server.URL),
		WithGoogleHTTPClient(server.Client()),
	)

	got, err := source.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("length = %d, want 3", len(got))
	}
	if got[0].Topic != "AI" || got[0].Volume != "high" {
		t.Errorf("first = %q/%q, want AI/high", got[0].Topic, got[0].Volume)
	}
	if math.Abs(got[0].Relevance-0.6) > 1e-9 {
		t.Errorf("AI relevance = %v, want 0.6", got[0].Relevance)
	}
	if got[1].Topic != "startup" || got[1].Volume != "medium" {
		t.Errorf("second = %q/%q, want startup/medium", got[1].Topic, got[1].Volume)
	}
	if got[2].Topic != "productivity" || got[2].Volume != "low" {
		t.Errorf("third = %q/%q, want productivity/low", got[2].Topic, got[2].Volume)
	}
	if got[0].Source != "google_trends" {
		t.Errorf("source = %q, want google_trends", got[0].Source)
	}
}

func TestGoogleFetchLimitsAfterSorting(t *testing.T) {
	timeline := `{"default":{"timelineData":[{"value":[10,90]}]}}`
	server := googleStub(t, timeline)
	source := NewGoogleSource([]string{"low", "hot"},
		WithGoogleBaseURL(server.URL),
		WithGoogleHTTPClient(server.Client()),
	)

	got, err := source.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Topic != "hot" {
		t.Fatalf("got = %+v, want just the hot keyword", got)
	}
}

func TestGoogleFetchNoKeywords(t *testing.T) {
	source := NewGoogleSource(nil)
	got, err := source.Fetch(context.Background(), 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d trends from no keywords", len(got))
	}
}

func TestGoogleFetchMissingTimeseriesWidget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ")]}'\n{\"widgets\":[{\"id\":\"RELATED_QUERIES\",\"token\":\"nope\"}]}")
	}))
	t.Cleanup(server.Close)
	source := NewGoogleSource([]string{"AI"},
		WithGoogleBaseURL(server.URL),
		WithGoogleHTTPClient(server.Client()),
	)

	if _, err := source.Fetch(context.Background(), 5); err == nil {
		t.Fatalf("expected error when no timeseries widget is offered")
	}
}

func TestGoogleFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)
	source := NewGoogleSource([]string{"AI"},
		WithGoogleBaseURL(server.URL),
		WithGoogleHTTPClient(server.Client()),
	)

	if _, err := source.Fetch(context.Background(), 5); err == nil {
		t.Fatalf("expected error on status 429")
	}
}
