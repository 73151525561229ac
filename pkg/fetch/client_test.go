package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sanonone/hashgraph/pkg/post"
)

const pageOne = `{
  "data": [
    {"id": "1", "text": "Booked my shot with @clinic #GetVaccinated", "author_id": "u1",
     "created_at": "2021-08-01T10:00:00Z",
     "entities": {"mentions": [{"username": "clinic"}], "hashtags": [{"tag": "GetVaccinated"}]},
     "public_metrics": {"retweet_count": 3}},
    {"id": "2", "text": "RT @nurse: Do it for your family…", "author_id": "u2",
     "created_at": "2021-08-01T11:00:00Z",
     "referenced_tweets": [{"type": "retweeted", "id": "99"}]}
  ],
  "includes": {
    "users": [
      {"id": "u1", "username": "alice", "description": "bio", "public_metrics": {"followers_count": 10, "following_count": 5, "tweet_count": 100}},
      {"id": "u2", "username": "bob"},
      {"id": "u3", "username": "nurse"}
    ],
    "tweets": [
      {"id": "99", "text": "Do it for your family and friends #VaccinesWork", "author_id": "u3"}
    ]
  },
  "meta": {"result_count": 2, "next_token": "page2"}
}`

const pageTwo = `{
  "data": [
    {"id": "3", "text": "thanks @alice and @bob", "author_id": "u4", "created_at": "2021-08-02T09:00:00Z"},
    {"id": "4", "text": "ghost", "author_id": "missing"}
  ],
  "includes": {"users": [{"id": "u4", "username": "carol"}]},
  "meta": {"result_count": 2}
}`

// requestLog records the requests seen by the fake search server.
type requestLog struct {
	mu   sync.Mutex
	reqs []*http.Request
}

func (l *requestLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) all() []*http.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.reqs)
}

func newSearchServer(t *testing.T, log *requestLog) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		if r.URL.Path != searchPath {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("next_token") == "page2" {
			fmt.Fprint(w, pageTwo)
			return
		}
		fmt.Fprint(w, pageOne)
	}))
}

func TestFormQuery(t *testing.T) {
	if got := FormQuery([]string{"#a", "#b", "c"}); got != "#a OR #b OR c" {
		t.Errorf("FormQuery = %q", got)
	}
	if got := FormQuery(nil); got != "" {
		t.Errorf("FormQuery(nil) = %q", got)
	}
	q := Query{Terms: []string{"#a", "#b"}}
	if got := q.String(); got != "(#a OR #b) lang:en" {
		t.Errorf("Query.String = %q", got)
	}
	q = Query{Terms: []string{"#a"}, Lang: "it"}
	if got := q.String(); got != "#a lang:it" {
		t.Errorf("Query.String = %q", got)
	}
}

func TestAPIClientFetch(t *testing.T) {
	var log requestLog
	srv := newSearchServer(t, &log)
	defer srv.Close()

	c := NewAPIClient(ClientConfig{BaseURL: srv.URL + "/", BearerToken: "test-token", PageSize: 100})
	c.now = func() time.Time { return time.Date(2021, 7, 3, 0, 0, 0, 0, time.UTC) }
	since := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	recs, err := c.Fetch(context.Background(), Query{Terms: []string{"#GetVaccinated", "#VaccinesWork"}, Since: since, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}

	requests := log.all()
	if len(requests) != 2 {
		t.Fatalf("expected 2 page requests, got %d", len(requests))
	}
	q := requests[0].URL.Query()
	if q.Get("query") != "(#GetVaccinated OR #VaccinesWork) lang:en" {
		t.Errorf("query param = %q", q.Get("query"))
	}
	if q.Get("start_time") != "2021-07-01T00:00:00Z" {
		t.Errorf("start_time = %q", q.Get("start_time"))
	}
	if q.Get("max_results") != "50" {
		t.Errorf("max_results = %q", q.Get("max_results"))
	}

	// The tweet with an unknown author is dropped.
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(recs), recs)
	}

	alice := recs[0]
	if alice.Actor != "alice" || !slices.Equal(alice.MentionedActors, []string{"clinic"}) || alice.IsReshare() {
		t.Errorf("alice record: %+v", alice)
	}
	if alice.Followers != 10 || alice.Following != 5 || alice.TotalPosts != 100 || alice.ReshareCount != 3 {
		t.Errorf("alice metrics: %+v", alice)
	}
	if !slices.Equal(alice.Hashtags, []string{"GetVaccinated"}) {
		t.Errorf("alice hashtags: %v", alice.Hashtags)
	}

	bob := recs[1]
	if bob.ResharedFromActor != "nurse" {
		t.Errorf("bob reshare origin = %q", bob.ResharedFromActor)
	}
	if !strings.HasSuffix(bob.Text, "#VaccinesWork") || !bob.Truncated {
		t.Errorf("retweet should carry the origin text: %+v", bob)
	}
	if len(bob.MentionedActors) != 1 || bob.MentionedActors[0] != "nurse" {
		t.Errorf("mentions from text fallback: %v", bob.MentionedActors)
	}

	carol := recs[2]
	if !slices.Equal(carol.MentionedActors, []string{"alice", "bob"}) {
		t.Errorf("carol mentions: %v", carol.MentionedActors)
	}

	if err := post.Validate(recs); err != nil {
		t.Errorf("fetched records should be valid: %v", err)
	}
}

func TestAPIClientLimit(t *testing.T) {
	var log requestLog
	srv := newSearchServer(t, &log)
	defer srv.Close()

	c := NewAPIClient(ClientConfig{BaseURL: srv.URL, BearerToken: "test-token"})
	recs, err := c.Fetch(context.Background(), Query{Terms: []string{"#x"}, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	requests := log.all()
	if len(recs) != 1 || len(requests) != 1 {
		t.Errorf("limit not honoured: %d records, %d requests", len(recs), len(requests))
	}
	if got := requests[0].URL.Query().Get("max_results"); got != "10" {
		t.Errorf("max_results should be clamped to the API minimum, got %s", got)
	}
}

const mixedAgePage = `{
  "data": [
    {"id": "10", "text": "old news", "author_id": "u1", "created_at": "2019-06-01T10:00:00Z"},
    {"id": "11", "text": "fresh @dave", "author_id": "u1", "created_at": "2021-08-01T10:00:00Z",
     "entities": {"mentions": [{"username": "@dave "}]}}
  ],
  "includes": {"users": [{"id": "u1", "username": "alice"}]},
  "meta": {"result_count": 2}
}`

func TestAPIClientSinceOutsideSearchWindow(t *testing.T) {
	var log requestLog
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		fmt.Fprint(w, mixedAgePage)
	}))
	defer srv.Close()

	c := NewAPIClient(ClientConfig{BaseURL: srv.URL, BearerToken: "test-token"})
	c.now = func() time.Time { return time.Date(2021, 8, 2, 0, 0, 0, 0, time.UTC) }
	since := time.Date(2019, 12, 12, 0, 0, 0, 0, time.UTC)
	recs, err := c.Fetch(context.Background(), Query{Terms: []string{"#x"}, Since: since, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}

	requests := log.all()
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if got := requests[0].URL.Query().Get("start_time"); got != "" {
		t.Errorf("start_time older than the search window must not be sent, got %q", got)
	}
	if len(recs) != 1 || recs[0].ID != "11" {
		t.Fatalf("records before since should be filtered locally: %+v", recs)
	}
	if !slices.Equal(recs[0].MentionedActors, []string{"dave"}) {
		t.Errorf("entity usernames should be normalised: %v", recs[0].MentionedActors)
	}

	// Inside the window the bound is forwarded.
	recent := time.Date(2021, 7, 30, 0, 0, 0, 0, time.UTC)
	if _, err := c.Fetch(context.Background(), Query{Terms: []string{"#x"}, Since: recent, Limit: 10}); err != nil {
		t.Fatal(err)
	}
	requests = log.all()
	if got := requests[1].URL.Query().Get("start_time"); got != "2021-07-30T00:00:00Z" {
		t.Errorf("start_time = %q", got)
	}
}

func TestAPIClientErrors(t *testing.T) {
	var log requestLog
	srv := newSearchServer(t, &log)
	defer srv.Close()

	c := NewAPIClient(ClientConfig{BaseURL: srv.URL, BearerToken: "wrong"})
	if _, err := c.Fetch(context.Background(), Query{Terms: []string{"#x"}}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := c.Fetch(context.Background(), Query{}); err == nil {
		t.Error("empty query should fail")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	c = NewAPIClient(ClientConfig{BaseURL: broken.URL})
	_, err := c.Fetch(context.Background(), Query{Terms: []string{"#x"}})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("expected status error, got %v", err)
	}

	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		fmt.Fprint(w, `{"data": [`)
	}))
	defer short.Close()
	c = NewAPIClient(ClientConfig{BaseURL: short.URL})
	_, err = c.Fetch(context.Background(), Query{Terms: []string{"#x"}})
	if err == nil || !strings.Contains(err.Error(), "read response body") {
		t.Errorf("expected body read error, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	day := func(d int) time.Time { return time.Date(2021, 8, d, 0, 0, 0, 0, time.UTC) }
	recs := []post.Record{
		{Actor: "a", Hashtags: []string{"VaccinesWork"}, CreatedAt: day(1)},
		{Actor: "b", Hashtags: []string{"#vaccineswork"}, CreatedAt: day(5)},
		{Actor: "c", Hashtags: []string{"Other"}, CreatedAt: day(6)},
		{Actor: "d", Hashtags: []string{"VACCINESWORK"}, CreatedAt: day(7)},
	}
	if err := post.WriteJSONL(f, recs); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src := FileSource{Path: path}
	got, err := src.Fetch(context.Background(), Query{Terms: []string{"#VaccinesWork"}, Since: day(2)})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Actor != "b" || got[1].Actor != "d" {
		t.Errorf("filtered records: %+v", got)
	}

	got, err = src.Fetch(context.Background(), Query{Limit: 3})
	if err != nil || len(got) != 3 {
		t.Errorf("limit: %d records, err %v", len(got), err)
	}

	if _, err := (FileSource{Path: filepath.Join(t.TempDir(), "nope")}).Fetch(context.Background(), Query{}); err == nil {
		t.Error("missing file should fail")
	}
}
