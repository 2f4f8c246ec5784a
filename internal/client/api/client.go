package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/pkg/api"
)

// Client is the HTTP client for the readiness API. It satisfies the
// readiness engine's Fetcher interface, so a Store can talk to the
// server through it directly.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu          sync.RWMutex
	accessToken string
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Keep the Authorization header across redirects
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetAccessToken installs the bearer token attached to subsequent
// authenticated requests. Safe for concurrent use.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// Login authenticates the user and returns an access token.
// The token is not installed automatically; callers decide whether to
// persist it first.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, "POST", "/api/v1/auth/login", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// FetchRecord reads the authoritative readiness record for a project
func (c *Client) FetchRecord(ctx context.Context, projectID string) (*models.Record, error) {
	var resp api.ReadinessRecord
	url := fmt.Sprintf("/api/v1/projects/%s/readiness", projectID)
	err := c.doAuthRequest(ctx, "GET", url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch record request failed: %w", err)
	}
	return recordFromWire(&resp), nil
}

// InvalidateRecord asks the server to recompute the record and returns
// the recomputed result
func (c *Client) InvalidateRecord(ctx context.Context, projectID, reason string) (*models.Record, error) {
	var resp api.ReadinessRecord
	url := fmt.Sprintf("/api/v1/projects/%s/readiness/invalidate", projectID)
	err := c.doAuthRequest(ctx, "POST", url, api.InvalidateRequest{Reason: reason}, &resp)
	if err != nil {
		return nil, fmt.Errorf("invalidate request failed: %w", err)
	}
	return recordFromWire(&resp), nil
}

// UpdateFeatures pushes client-owned feature flag changes to the server
// and returns the record as recomputed after the write
func (c *Client) UpdateFeatures(ctx context.Context, projectID string, features map[string]bool) (*models.Record, error) {
	var resp api.ReadinessRecord
	url := fmt.Sprintf("/api/v1/projects/%s/features", projectID)
	err := c.doAuthRequest(ctx, "PATCH", url, api.FeatureUpdateRequest{Features: features}, &resp)
	if err != nil {
		return nil, fmt.Errorf("update features request failed: %w", err)
	}
	return recordFromWire(&resp), nil
}

// doAuthRequest is doRequest with the bearer token attached
func (c *Client) doAuthRequest(ctx context.Context, method, path string, body, result interface{}) error {
	return c.do(ctx, method, path, c.token(), body, result)
}

// doRequest performs an unauthenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	return c.do(ctx, method, path, "", body, result)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// recordFromWire converts the wire representation to the domain model
func recordFromWire(r *api.ReadinessRecord) *models.Record {
	return &models.Record{
		ProjectID:      r.ProjectID,
		Status:         models.Status(r.Status),
		Features:       r.Features,
		BlockingIssues: r.BlockingIssues,
		CalculatedAt:   r.CalculatedAt,
	}
}
