package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sanonone/hashgraph/pkg/post"
	"github.com/sanonone/hashgraph/pkg/textanalyzer"
)

const (
	searchPath  = "/tweets/search/recent"
	tweetFields = "author_id,created_at,entities,referenced_tweets,public_metrics"
	userFields  = "description,public_metrics"
	expansions  = "author_id,referenced_tweets.id,referenced_tweets.id.author_id,entities.mentions.username"
)

// ErrUnauthorized is returned when the API rejects the bearer token.
var ErrUnauthorized = errors.New("fetch: unauthorized")

// ClientConfig configures an APIClient.
type ClientConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	PageSize    int // 10..100

	// SearchWindow is how far back the endpoint accepts a start_time.
	// Older Since values are not sent; records are filtered locally instead.
	SearchWindow time.Duration
}

// DefaultSearchWindow is the lookback of the recent-search endpoint.
const DefaultSearchWindow = 7 * 24 * time.Hour

// APIClient is a Source backed by the recent-search REST endpoint.
type APIClient struct {
	cfg        ClientConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewAPIClient initializes a new search client.
func NewAPIClient(cfg ClientConfig) *APIClient {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.PageSize = min(max(cfg.PageSize, 10), 100)
	if cfg.SearchWindow <= 0 {
		cfg.SearchWindow = DefaultSearchWindow
	}

	return &APIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

// startTime returns the start_time to send for since, or the zero time when
// since is unset or lies outside the search window.
func (c *APIClient) startTime(since time.Time) time.Time {
	if since.IsZero() {
		return time.Time{}
	}
	// A minute of slack keeps the boundary clear of clock skew.
	cutoff := c.now().Add(-c.cfg.SearchWindow + time.Minute)
	if since.Before(cutoff) {
		slog.Debug("[Fetch] Since is outside the search window, filtering locally", "since", since, "window", c.cfg.SearchWindow)
		return time.Time{}
	}
	return since
}

// Fetch pages through the search results until q.Limit records are
// collected or the upstream runs out of pages.
func (c *APIClient) Fetch(ctx context.Context, q Query) ([]post.Record, error) {
	if len(q.Terms) == 0 {
		return nil, errors.New("fetch: query has no terms")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = c.cfg.PageSize
	}

	start := c.startTime(q.Since)

	var records []post.Record
	token := ""
	for len(records) < limit {
		pageSize := min(c.cfg.PageSize, max(limit-len(records), 10))
		page, err := c.search(ctx, q, start, pageSize, token)
		if err != nil {
			return records, err
		}
		for _, r := range page.records() {
			if !q.Since.IsZero() && !r.CreatedAt.IsZero() && r.CreatedAt.Before(q.Since) {
				continue
			}
			records = append(records, r)
		}

		slog.Debug("[Fetch] Page received", "query", q.String(), "count", page.Meta.ResultCount, "total", len(records))

		if page.Meta.NextToken == "" {
			break
		}
		token = page.Meta.NextToken
	}

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (c *APIClient) search(ctx context.Context, q Query, start time.Time, pageSize int, token string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("query", q.String())
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("tweet.fields", tweetFields)
	params.Set("user.fields", userFields)
	params.Set("expansions", expansions)
	if !start.IsZero() {
		params.Set("start_time", start.UTC().Format(time.RFC3339))
	}
	if token != "" {
		params.Set("next_token", token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	if c.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("search api error (status %d): %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(sr.Data) == 0 && len(sr.Errors) > 0 {
		return nil, fmt.Errorf("provider error: %s: %s", sr.Errors[0].Title, sr.Errors[0].Detail)
	}
	return &sr, nil
}

// records converts one page into post records.
// Tweets whose author cannot be resolved are skipped.
func (sr *searchResponse) records() []post.Record {
	users := make(map[string]apiUser, len(sr.Includes.Users))
	for _, u := range sr.Includes.Users {
		users[u.ID] = u
	}
	tweets := make(map[string]apiTweet, len(sr.Includes.Tweets))
	for _, t := range sr.Includes.Tweets {
		tweets[t.ID] = t
	}

	out := make([]post.Record, 0, len(sr.Data))
	for _, t := range sr.Data {
		author, ok := users[t.AuthorID]
		if !ok || author.Username == "" {
			slog.Warn("[Fetch] Skipping tweet with unknown author", "id", t.ID, "author_id", t.AuthorID)
			continue
		}

		rec := post.Record{
			Actor:        textanalyzer.NormalizeHandle(author.Username),
			ID:           t.ID,
			CreatedAt:    t.CreatedAt,
			Description:  author.Description,
			Following:    author.PublicMetrics.FollowingCount,
			Followers:    author.PublicMetrics.FollowersCount,
			TotalPosts:   author.PublicMetrics.TweetCount,
			ReshareCount: t.PublicMetrics.RetweetCount,
			Text:         t.Text,
			Truncated:    strings.HasSuffix(t.Text, "…"),
		}

		if t.Entities != nil {
			for _, m := range t.Entities.Mentions {
				rec.MentionedActors = append(rec.MentionedActors, textanalyzer.NormalizeHandle(m.Username))
			}
			for _, h := range t.Entities.Hashtags {
				rec.Hashtags = append(rec.Hashtags, h.Tag)
			}
		} else {
			rec.MentionedActors = textanalyzer.ExtractMentions(t.Text)
			rec.Hashtags = textanalyzer.ExtractHashtags(t.Text)
		}

		// A retweet carries the origin's full text and author.
		for _, ref := range t.ReferencedTweets {
			if ref.Type != "retweeted" {
				continue
			}
			if orig, ok := tweets[ref.ID]; ok {
				rec.Text = orig.Text
				if u, ok := users[orig.AuthorID]; ok {
					rec.ResharedFromActor = textanalyzer.NormalizeHandle(u.Username)
				}
			}
			if rec.ResharedFromActor == "" {
				rec.ResharedFromActor = textanalyzer.ReshareOrigin(t.Text)
			}
		}

		out = append(out, rec)
	}
	return out
}
