// Package client provides a Go client for the hashgraph HTTP API.
//
// It covers graph listing, node and edge queries, statistics, path finding
// and asynchronous campaign refreshes with task polling. Non-2xx responses
// are returned as *APIError.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sanonone/hashgraph/pkg/analysis"
	"github.com/sanonone/hashgraph/pkg/graph"
)

// --- Custom Errors ---

// APIError represents an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Response Structs ---

// GraphInfo describes a named graph.
type GraphInfo struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interactions lists an actor's direct neighbours.
type Interactions struct {
	Actor    string   `json:"actor"`
	Outgoing []string `json:"outgoing"`
	Incoming []string `json:"incoming"`
}

// Path is a shortest interaction chain between two actors.
type Path struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Found  bool     `json:"found"`
	Hops   int      `json:"hops"`
	Path   []string `json:"path"`
}

// Stats is the statistics response. Top is only set by TopActors.
type Stats struct {
	Graph  string                `json:"graph"`
	Report *analysis.Report      `json:"report"`
	Top    []analysis.ActorStats `json:"top,omitempty"`
}

// Task represents an asynchronous refresh on the server.
type Task struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	Target          string          `json:"target"`
	Status          string          `json:"status"`
	ProgressMessage string          `json:"progress_message,omitempty"`
	Error           string          `json:"error,omitempty"`
	Result          json.RawMessage `json:"result,omitempty"`

	client *Client // Reference to the client for polling.
}

// --- Client ---

// Client is the Go client for the hashgraph API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:9300").
// apiKey may be empty when the server runs without authentication.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// jsonRequest executes a request and decodes the JSON response into out.
func (c *Client) jsonRequest(ctx context.Context, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// --- Graph Methods ---

// ListGraphs returns every graph served.
func (c *Client) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	var resp struct {
		Graphs []GraphInfo `json:"graphs"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/graphs", &resp)
	return resp.Graphs, err
}

// GetGraph returns the description of one graph.
func (c *Client) GetGraph(ctx context.Context, name string) (*GraphInfo, error) {
	var info GraphInfo
	if err := c.jsonRequest(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Nodes returns the sorted actor handles of a graph.
func (c *Client) Nodes(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Nodes []string `json:"nodes"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name)+"/nodes", &resp)
	return resp.Nodes, err
}

// Interactions returns an actor's direct neighbours.
func (c *Client) Interactions(ctx context.Context, name, actor string) (*Interactions, error) {
	var in Interactions
	endpoint := "/graphs/" + url.PathEscape(name) + "/nodes/" + url.PathEscape(actor) + "/edges"
	if err := c.jsonRequest(ctx, http.MethodGet, endpoint, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Edges returns a graph's edges, optionally filtered by source and/or target.
func (c *Client) Edges(ctx context.Context, name, from, to string) ([]graph.Edge, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	endpoint := "/graphs/" + url.PathEscape(name) + "/edges"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp struct {
		Edges []graph.Edge `json:"edges"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, endpoint, &resp)
	return resp.Edges, err
}

// HasInteraction reports whether from mentioned or reshared to.
func (c *Client) HasInteraction(ctx context.Context, name, from, to string) (bool, error) {
	edges, err := c.Edges(ctx, name, from, to)
	return len(edges) > 0, err
}

// Stats returns the full statistics report of a graph.
func (c *Client) Stats(ctx context.Context, name string) (*analysis.Report, error) {
	var s Stats
	if err := c.jsonRequest(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name)+"/stats", &s); err != nil {
		return nil, err
	}
	return s.Report, nil
}

// TopActors returns the k best actors by metric, plus the graph summary.
func (c *Client) TopActors(ctx context.Context, name string, k int, by analysis.Metric) (*Stats, error) {
	q := url.Values{}
	q.Set("top", strconv.Itoa(k))
	if by != "" {
		q.Set("by", string(by))
	}
	var s Stats
	if err := c.jsonRequest(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name)+"/stats?"+q.Encode(), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindPath returns a shortest interaction chain from source to target.
func (c *Client) FindPath(ctx context.Context, name, source, target string) (*Path, error) {
	q := url.Values{}
	q.Set("from", source)
	q.Set("to", target)
	var p Path
	if err := c.jsonRequest(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name)+"/path?"+q.Encode(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Tasks ---

// Refresh starts an asynchronous re-run of the named campaign.
func (c *Client) Refresh(ctx context.Context, name string) (*Task, error) {
	var resp struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	}
	if err := c.jsonRequest(ctx, http.MethodPost, "/graphs/"+url.PathEscape(name)+"/refresh", &resp); err != nil {
		return nil, err
	}
	return &Task{ID: resp.TaskID, Status: resp.Status, Target: name, client: c}, nil
}

// GetTaskStatus retrieves the current state of a task.
func (c *Client) GetTaskStatus(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := c.jsonRequest(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	t.client = c
	return &t, nil
}

// Refresh updates the task's status by querying the server.
func (t *Task) Refresh(ctx context.Context) error {
	if t.client == nil {
		return fmt.Errorf("client is not associated with the task")
	}
	updated, err := t.client.GetTaskStatus(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Status = updated.Status
	t.ProgressMessage = updated.ProgressMessage
	t.Error = updated.Error
	t.Result = updated.Result
	return nil
}

// Wait blocks until the task finishes, checking its status every interval.
// The context bounds the total wait.
func (t *Task) Wait(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("stopped waiting for task %s: %w", t.ID, ctx.Err())
		case <-ticker.C:
			if err := t.Refresh(ctx); err != nil {
				return err
			}
			switch t.Status {
			case "completed":
				return nil
			case "failed":
				return fmt.Errorf("task %s failed with error: %s", t.ID, t.Error)
			case "running", "started":
				// Continue waiting.
			default:
				return fmt.Errorf("unknown task status: %s", t.Status)
			}
		}
	}
}
