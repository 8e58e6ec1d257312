// Package supabase contains HTTP clients for the platform surfaces the MCP
// tools delegate to: the PostgREST data API, the Storage API, Edge
// Functions, the GoTrue admin API, and the Management API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/basefolk/supabase-mcp/internal/common"
)

// maxResponseSize caps response bodies to prevent OOM from unexpectedly
// large responses.
const maxResponseSize = 50 << 20 // 50MB

// Client talks to one Supabase project using its service-role key.
// All sub-APIs (rest, storage, functions, auth admin) share the same
// base URL and credentials.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *common.Logger
}

// NewClient creates a client for the project at baseURL authenticated with
// the service-role key.
func NewClient(baseURL, serviceKey string, logger *common.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// BaseURL returns the configured project URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// applyAuth sets the service-role credentials on an outgoing request.
func (c *Client) applyAuth(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

// do executes a prepared request, logs it, and returns the response body.
// Status >= 400 is converted into an error carrying the upstream message.
func (c *Client) do(req *http.Request, headers http.Header) ([]byte, string, error) {
	c.logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("supabase request")

	c.applyAuth(req)
	for key, vals := range headers {
		for _, v := range vals {
			req.Header.Set(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("method", req.Method).Str("path", req.URL.Path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("supabase request failed")
		return nil, "", fmt.Errorf("supabase request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("supabase response")

	if resp.StatusCode >= 400 {
		return nil, "", parseErrorResponse(resp.StatusCode, body)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	body, _, err := c.do(req, nil)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// doJSON performs a request with a JSON body and returns the raw response.
func (c *Client) doJSON(ctx context.Context, method, path string, data interface{}, headers http.Header) ([]byte, error) {
	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, _, err := c.do(req, headers)
	return body, err
}

// parseErrorResponse extracts a meaningful error message from an HTTP error
// response. PostgREST uses "message", GoTrue uses "msg" or
// "error_description", the storage API uses "error"; the first non-empty
// field wins so the upstream message is preserved verbatim.
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		for _, m := range []string{errResp.Message, errResp.Msg, errResp.ErrorDescription, errResp.Error} {
			if m != "" {
				return fmt.Errorf("%s", m)
			}
		}
	}
	return fmt.Errorf("server returned %d: %s", statusCode, strings.TrimSpace(string(body)))
}
