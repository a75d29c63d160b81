package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

const (
	redditBaseURL   = "https://www.reddit.com"
	redditUserAgent = "council-trends/1.0"

	redditTimeout = 10 * time.Second
)

// RedditSource pulls hot-post titles from the public listing endpoint of
// each configured subreddit. No credentials are required for read-only
// listings.
type RedditSource struct {
	subreddits []string
	baseURL    string
	client     *http.Client
}

// RedditOption customizes a RedditSource.
type RedditOption func(*RedditSource)

// WithRedditBaseURL points the source at an alternate endpoint (tests).
func WithRedditBaseURL(base string) RedditOption {
	return func(r *RedditSource) {
		if base != "" {
			r.baseURL = base
		}
	}
}

// WithRedditHTTPClient overrides the HTTP client.
func WithRedditHTTPClient(client *http.Client) RedditOption {
	return func(r *RedditSource) {
		if client != nil {
			r.client = client
		}
	}
}

// NewRedditSource builds a source over the given subreddits.
func NewRedditSource(subreddits []string, opts ...RedditOption) *RedditSource {
	r := &RedditSource{
		subreddits: subreddits,
		baseURL:    redditBaseURL,
		client:     &http.Client{Timeout: redditTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name identifies this source in logs.
func (r *RedditSource) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Score     int    `json:"score"`
				Permalink string `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch collects hot posts across the configured subreddits, tiers them
// by score, and returns the most relevant limit entries.
func (r *RedditSource) Fetch(ctx context.Context, limit int) ([]Trend, error) {
	var all []Trend
	for _, subreddit := range r.subreddits {
		fetched, err := r.fetchSubreddit(ctx, subreddit, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, fetched...)
	}

	sortByRelevance(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *RedditSource) fetchSubreddit(ctx context.Context, subreddit string, limit int) ([]Trend, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", r.baseURL, url.PathEscape(subreddit), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("trends: reddit request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trends: reddit r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends: reddit r/%s: unexpected status %d", subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("trends: reddit r/%s: decode listing: %w", subreddit, err)
	}

	trends := make([]Trend, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Title == "" {
			continue
		}
		trends = append(trends, Trend{
			Topic:     post.Title,
			Source:    "reddit_r/" + subreddit,
			Volume:    volumeTier(post.Score),
			Relevance: math.Min(float64(post.Score)/5000, 1.0),
			URL:       redditBaseURL + post.Permalink,
		})
	}
	return trends, nil
}

func volumeTier(score int) string {
	switch {
	case score > 1000:
		return "high"
	case score > 100:
		return "medium"
	default:
		return "low"
	}
}
