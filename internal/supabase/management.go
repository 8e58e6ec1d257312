package supabase

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

	"github.com/basefolk/supabase-mcp/internal/common"
)

// ManagementClient talks to the Supabase Management API with a personal
// access token. It is a separate client from Client because the endpoint,
// credentials, and audience (platform, not project) all differ.
type ManagementClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *common.Logger
}

// NewManagementClient creates a Management API client.
func NewManagementClient(baseURL, accessToken string, logger *common.Logger) *ManagementClient {
	return &ManagementClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// ListProjects returns every project the token can see.
func (m *ManagementClient) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := m.doJSON(ctx, http.MethodGet, "/v1/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project by its reference id.
func (m *ManagementClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := m.doJSON(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject provisions a new project in an organization.
func (m *ManagementClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	var project Project
	if err := m.doJSON(ctx, http.MethodPost, "/v1/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project by its reference id.
func (m *ManagementClient) DeleteProject(ctx context.Context, projectID string) error {
	return m.doJSON(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(projectID), nil, nil)
}

// ListOrganizations returns every organization the token belongs to.
func (m *ManagementClient) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := m.doJSON(ctx, http.MethodGet, "/v1/organizations", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetOrganization fetches one organization by id.
func (m *ManagementClient) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	var org Organization
	if err := m.doJSON(ctx, http.MethodGet, "/v1/organizations/"+url.PathEscape(orgID), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateOrganization creates a new organization.
func (m *ManagementClient) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	var org Organization
	payload := map[string]string{"name": name}
	if err := m.doJSON(ctx, http.MethodPost, "/v1/organizations", payload, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetProjectAPIKeys returns the API keys of a project.
func (m *ManagementClient) GetProjectAPIKeys(ctx context.Context, projectID string) ([]APIKey, error) {
	var keys []APIKey
	if err := m.doJSON(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(projectID)+"/api-keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// doJSON performs a bearer-authenticated request and decodes the JSON
// response into out when non-nil.
func (m *ManagementClient) doJSON(ctx context.Context, method, path string, data, out interface{}) error {
	m.logger.Debug().Str("method", method).Str("path", path).Msg("management request")

	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := m.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		m.logger.Error().Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("management request failed")
		return fmt.Errorf("management request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	m.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("management response")

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
