// Package toggl is a minimal Toggl Track API v9 client covering the surface
// the sync needs: workspaces, projects, existing time entries, and entry
// creation.
package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client defines the Toggl operations the import pipeline depends on.
type Client interface {
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	ListProjects(ctx context.Context, workspaceID int64) ([]Project, error)
	ListTimeEntries(ctx context.Context, startDate, endDate string) ([]TimeEntry, error)
	CreateTimeEntry(ctx context.Context, workspaceID int64, entry CreateTimeEntryRequest) (CreatedTimeEntry, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIToken   string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	authHeader string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	token := strings.TrimSpace(cfg.APIToken)
	if token == "" {
		return nil, errors.New("API token is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	// Toggl accepts the API token as the username of a basic credential with
	// the literal password "api_token".
	credentials := base64.StdEncoding.EncodeToString([]byte(token + ":api_token"))

	return &HTTPClient{
		baseURL:    baseURL,
		authHeader: "Basic " + credentials,
		httpClient: doer,
	}, nil
}

type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	WorkspaceID int64  `json:"workspace_id"`
}

// TimeEntry is the read shape used for duplicate detection. Duration is in
// seconds; negative means a running timer in Toggl semantics.
type TimeEntry struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	Duration    int64     `json:"duration"`
	ProjectID   *int64    `json:"project_id"`
}

// StartDate returns the calendar-date component of the entry's start
// timestamp, formatted YYYY-MM-DD.
func (e TimeEntry) StartDate() string {
	return e.Start.Format("2006-01-02")
}

type CreateTimeEntryRequest struct {
	Description string   `json:"description"`
	Start       string   `json:"start"`
	Duration    int64    `json:"duration"`
	ProjectID   *int64   `json:"project_id"`
	WorkspaceID int64    `json:"workspace_id"`
	CreatedWith string   `json:"created_with"`
	Billable    bool     `json:"billable"`
	Tags        []string `json:"tags"`
}

type CreatedTimeEntry struct {
	ID int64 `json:"id"`
}

func (c *HTTPClient) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var out []Workspace
	if err := c.doJSON(ctx, http.MethodGet, "/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context, workspaceID int64) ([]Project, error) {
	var out []Project
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	// Toggl returns a JSON null for workspaces without projects.
	if out == nil {
		return []Project{}, nil
	}
	return out, nil
}

func (c *HTTPClient) ListTimeEntries(ctx context.Context, startDate, endDate string) ([]TimeEntry, error) {
	query := url.Values{}
	query.Set("start_date", startDate)
	query.Set("end_date", endDate)

	var out []TimeEntry
	if err := c.doJSON(ctx, http.MethodGet, "/me/time_entries?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTimeEntry(ctx context.Context, workspaceID int64, entry CreateTimeEntryRequest) (CreatedTimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%d/time_entries", workspaceID)
	var out CreatedTimeEntry
	if err := c.doJSON(ctx, http.MethodPost, path, entry, &out); err != nil {
		return CreatedTimeEntry{}, err
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"Toggl API error: %d %s",
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
