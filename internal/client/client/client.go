// Package client is a typed HTTP client for the siegesync API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/common"
	"github.com/dmitrijs2005/siegesync/internal/server/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// SyncRequest is the snapshot sent to /sync.
type SyncRequest struct {
	Username    string   `json:"username"`
	Coins       float64  `json:"coins"`
	Hours       *float64 `json:"hours,omitempty"`
	LastUpdated int64    `json:"lastUpdated"`
}

// PopulateResult is the body of a successful /test/populate call.
type PopulateResult struct {
	TestUsers   int `json:"testUsers"`
	TestSignals int `json:"testSignals"`
}

// Client calls the siegesync HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	adminToken string
}

// New returns a client for the API at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithAdminToken makes Populate and Clear send token as a bearer credential.
func (c *Client) WithAdminToken(token string) *Client {
	c.adminToken = token
	return c
}

// Sync uploads a progress snapshot.
func (c *Client) Sync(ctx context.Context, req SyncRequest) error {
	return c.do(ctx, http.MethodPost, "/sync", req, nil, false)
}

// Leaderboard fetches active users, highest coins first.
func (c *Client) Leaderboard(ctx context.Context) ([]models.UserRecord, error) {
	var out []models.UserRecord
	if err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// SendSignal sends a signal of signalType from one user to another.
func (c *Client) SendSignal(ctx context.Context, from, to, signalType string) error {
	body := map[string]string{"from": from, "to": to, "type": signalType}
	return c.do(ctx, http.MethodPost, "/signal", body, nil, false)
}

// Signals lists the inbox of username, newest first.
func (c *Client) Signals(ctx context.Context, username string) ([]models.SignalRecord, error) {
	var out []models.SignalRecord
	if err := c.do(ctx, http.MethodGet, "/signals/"+url.PathEscape(username), nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags the given signal ids as read.
func (c *Client) MarkRead(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return c.do(ctx, http.MethodPost, "/signal/read", map[string][]string{"signalIds": ids}, nil, false)
}

// Populate seeds fixture users and signals addressed to username.
func (c *Client) Populate(ctx context.Context, username string) (*PopulateResult, error) {
	var out PopulateResult
	if err := c.do(ctx, http.MethodPost, "/test/populate", map[string]string{"username": username}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clear wipes the store and returns how many keys were removed.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var out struct {
		Cleared int `json:"cleared"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/clear", nil, &out, true); err != nil {
		return 0, err
	}
	return out.Cleared, nil
}

// Health reports nil when the server answers /health with 200.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, false)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, admin bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin && c.adminToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
