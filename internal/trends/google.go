package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

const (
	googleBaseURL   = "https://trends.google.com"
	googleTimeframe = "now 7-d"
	googleLocale    = "en-US"
	googleTZ        = "360"

	googleTimeout = 10 * time.Second
)

// GoogleSource scores configured keywords by their recent search
// interest. Google's unauthenticated trends API hands out a widget
// token first; the interest timeline is fetched with that token and
// averaged per keyword over the last week.
type GoogleSource struct {
	keywords []string
	baseURL  string
	client   *http.Client
}

// GoogleOption customizes a GoogleSource.
type GoogleOption func(*GoogleSource)

// WithGoogleBaseURL points the source at an alternate endpoint (tests).
func WithGoogleBaseURL(base string) GoogleOption {
	return func(g *GoogleSource) {
		if base != "" {
			g.baseURL = base
		}
	}
}

// WithGoogleHTTPClient overrides the HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(g *GoogleSource) {
		if client != nil {
			g.client = client
		}
	}
}

// NewGoogleSource builds a source scoring the given keywords.
func NewGoogleSource(keywords []string, opts ...GoogleOption) *GoogleSource {
	g := &GoogleSource{
		keywords: keywords,
		baseURL:  googleBaseURL,
		client:   &http.Client{Timeout: googleTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name identifies this source in logs.
func (g *GoogleSource) Name() string { return "google_trends" }

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Value []int `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// Fetch averages each keyword's interest over the timeframe and tiers
// the result: above 50 is high volume, above 20 medium, the rest low.
// Relevance is the average scaled onto [0, 1].
func (g *GoogleSource) Fetch(ctx context.Context, limit int) ([]Trend, error) {
	if len(g.keywords) == 0 {
		return nil, nil
	}

	token, request, err := g.explore(ctx)
	if err != nil {
		return nil, err
	}
	timeline, err := g.timeline(ctx, token, request)
	if err != nil {
		return nil, err
	}

	averages := averageByKeyword(timeline, len(g.keywords))
	trends := make([]Trend, 0, len(g.keywords))
	for i, keyword := range g.keywords {
		avg := averages[i]
		trends = append(trends, Trend{
			Topic:     keyword,
			Source:    "google_trends",
			Volume:    interestTier(avg),
			Relevance: math.Min(avg/100, 1.0),
		})
	}

	sortByRelevance(trends)
	if len(trends) > limit {
		trends = trends[:limit]
	}
	return trends, nil
}

// explore requests the widget catalog and returns the timeseries
// widget's token plus the request payload it must be echoed with.
func (g *GoogleSource) explore(ctx context.Context) (string, json.RawMessage, error) {
	type comparisonItem struct {
		Keyword string `json:"keyword"`
		Geo     string `json:"geo"`
		Time    string `json:"time"`
	}
	items := make([]comparisonItem, 0, len(g.keywords))
	for _, keyword := range g.keywords {
		items = append(items, comparisonItem{Keyword: keyword, Time: googleTimeframe})
	}
	payload, err := json.Marshal(map[string]any{
		"comparisonItem": items,
		"category":       0,
		"property":       "",
	})
	if err != nil {
		return "", nil, fmt.Errorf("trends: google explore payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/trends/api/explore?hl=%s&tz=%s&req=%s",
		g.baseURL, googleLocale, googleTZ, url.QueryEscape(string(payload)))
	body, err := g.get(ctx, endpoint)
	if err != nil {
		return "", nil, fmt.Errorf("trends: google explore: %w", err)
	}

	var parsed exploreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("trends: google explore: decode: %w", err)
	}
	for _, widget := range parsed.Widgets {
		if widget.ID == "TIMESERIES" {
			return widget.Token, widget.Request, nil
		}
	}
	return "", nil, fmt.Errorf("trends: google explore: no timeseries widget in response")
}

func (g *GoogleSource) timeline(ctx context.Context, token string, request json.RawMessage) ([][]int, error) {
	endpoint := fmt.Sprintf("%s/trends/api/widgetdata/multiline?hl=%s&tz=%s&req=%s&token=%s",
		g.baseURL, googleLocale, googleTZ, url.QueryEscape(string(request)), url.QueryEscape(token))
	body, err := g.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("trends: google timeline: %w", err)
	}

	var parsed multilineResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("trends: google timeline: decode: %w", err)
	}
	points := make([][]int, 0, len(parsed.Default.TimelineData))
	for _, point := range parsed.Default.TimelineData {
		points = append(points, point.Value)
	}
	return points, nil
}

// get fetches the endpoint and strips Google's anti-hijack prefix, a
// junk line (")]}'") preceding the JSON body.
func (g *GoogleSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(body, '{'); i > 0 {
		body = body[i:]
	}
	return body, nil
}

// averageByKeyword reduces the timeline to one mean interest value per
// keyword column. Short rows leave later columns at zero.
func averageByKeyword(points [][]int, keywords int) []float64 {
	sums := make([]float64, keywords)
	counts := make([]int, keywords)
	for _, row := range points {
		for i := 0; i < keywords && i < len(row); i++ {
			sums[i] += float64(row[i])
			counts[i]++
		}
	}
	averages := make([]float64, keywords)
	for i := range sums {
		if counts[i] > 0 {
			averages[i] = sums[i] / float64(counts[i])
		}
	}
	return averages
}

func interestTier(avg float64) string {
	switch {
	case avg > 50:
		return "high"
	case avg > 20:
		return "medium"
	default:
		return "low"
	}
}
