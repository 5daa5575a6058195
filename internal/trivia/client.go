// internal/trivia/client.go
//
// HTTP client for a jservice-compatible trivia API.
// Endpoints:
//   - GET {base}categories?count=N → [{id, title, clues_count}]
//   - GET {base}category?id=ID     → {id, title, clues: [{question, answer, ...}]}
//
// Notes:
//   - No retries; callers treat any error as fatal to the current build.
//   - A non-zero timeout bounds each request.

package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CategorySummary is one entry of the pool listing.
type CategorySummary struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	CluesCount int    `json:"clues_count"`
}

// RemoteClue is a clue as the API returns it. Other fields are ignored.
type RemoteClue struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CategoryDetail is a single category with its clues.
type CategoryDetail struct {
	ID    int          `json:"id"`
	Title string       `json:"title"`
	Clues []RemoteClue `json:"clues"`
}

// Source is anything that can list categories and load one by id.
// Implemented by *Client and by the SQLite cache wrapper.
type Source interface {
	Categories(ctx context.Context, count int) ([]CategorySummary, error)
	Category(ctx context.Context, id int) (*CategoryDetail, error)
}

// ErrStatus is wrapped when the API answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

// Client talks to the trivia API over HTTP.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient constructs a client for base (a trailing slash is added if missing).
func NewClient(base string, timeout time.Duration) *Client {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{base: base, hc: &http.Client{Timeout: timeout}}
}

// Categories fetches the pool listing.
func (c *Client) Categories(ctx context.Context, count int) ([]CategorySummary, error) {
	var out []CategorySummary
	q := url.Values{"count": {strconv.Itoa(count)}}
	if err := c.getJSON(ctx, "categories", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Category fetches one category with its clues.
func (c *Client) Category(ctx context.Context, id int) (*CategoryDetail, error) {
	var out CategoryDetail
	q := url.Values{"id": {strconv.Itoa(id)}}
	if err := c.getJSON(ctx, "category", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON issues a GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	u := c.base + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: %w %d", path, ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
