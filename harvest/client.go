// Package harvest reads time entries and project assignments from the
// Harvest v2 API. Listings are paginated; both operations walk every page and
// fail entirely if any page errors.
package harvest

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

	"github.com/google/uuid"

	"github.com/markdavies/harvest-toggl-sync/timeentry"
)

const (
	pageSize = 100

	// Harvest allows 100 requests per 15 seconds; a small gap between page
	// fetches keeps long listings under that ceiling.
	defaultPageDelay = 150 * time.Millisecond
)

// Client defines the Harvest read operations the sync depends on.
type Client interface {
	ListTimeEntries(ctx context.Context, from, to string) ([]timeentry.Entry, error)
	ListProjects(ctx context.Context) ([]Project, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL     string
	AccessToken string
	AccountID   string
	UserAgent   string
	PageDelay   *time.Duration
	HTTPClient  httpDoer
}

type HTTPClient struct {
	baseURL     string
	accessToken string
	accountID   string
	userAgent   string
	pageDelay   time.Duration
	httpClient  httpDoer
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

	token := strings.TrimSpace(cfg.AccessToken)
	accountID := strings.TrimSpace(cfg.AccountID)
	if token == "" || accountID == "" {
		return nil, errors.New("access token and account id are required")
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "Harvest-Toggl-Sync"
	}

	pageDelay := defaultPageDelay
	if cfg.PageDelay != nil {
		pageDelay = *cfg.PageDelay
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: token,
		accountID:   accountID,
		userAgent:   userAgent,
		pageDelay:   pageDelay,
		httpClient:  doer,
	}, nil
}

type Project struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
}

type nameRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type harvestTimeEntry struct {
	ID        int64   `json:"id"`
	SpentDate string  `json:"spent_date"`
	Hours     float64 `json:"hours"`
	Notes     *string `json:"notes"`
	Billable  bool    `json:"billable"`
	Client    nameRef `json:"client"`
	Project   nameRef `json:"project"`
	Task      nameRef `json:"task"`
}

type timeEntriesPage struct {
	TimeEntries []harvestTimeEntry `json:"time_entries"`
	TotalPages  int                `json:"total_pages"`
}

type projectAssignment struct {
	ID      int64   `json:"id"`
	Project nameRef `json:"project"`
	Client  nameRef `json:"client"`
}

type projectAssignmentsPage struct {
	ProjectAssignments []projectAssignment `json:"project_assignments"`
	TotalPages         int                 `json:"total_pages"`
}

// ListTimeEntries fetches every entry in the inclusive [from, to] date range
// and normalizes it into the shared table row shape. Each row gets a fresh
// UUID for UI tracking; the Harvest id is kept alongside.
func (c *HTTPClient) ListTimeEntries(ctx context.Context, from, to string) ([]timeentry.Entry, error) {
	entries := make([]timeentry.Entry, 0, pageSize)

	page := 1
	totalPages := 1
	for page <= totalPages {
		var resp timeEntriesPage
		params := url.Values{}
		params.Set("from", from)
		params.Set("to", to)
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(pageSize))
		if err := c.doJSON(ctx, "/time_entries", params, &resp); err != nil {
			return nil, err
		}
		totalPages = resp.TotalPages

		for _, item := range resp.TimeEntries {
			description := ""
			if item.Notes != nil {
				description = *item.Notes
			}
			entries = append(entries, timeentry.Entry{
				ID:          uuid.NewString(),
				HarvestID:   item.ID,
				Date:        item.SpentDate,
				Client:      item.Client.Name,
				Project:     item.Project.Name,
				Task:        item.Task.Name,
				Description: description,
				Hours:       item.Hours,
				Billable:    item.Billable,
			})
		}

		page++
		if page <= totalPages {
			if err := c.waitBetweenPages(ctx); err != nil {
				return nil, err
			}
		}
	}

	return entries, nil
}

// ListProjects fetches the signed-in user's project assignments.
func (c *HTTPClient) ListProjects(ctx context.Context) ([]Project, error) {
	projects := make([]Project, 0, pageSize)

	page := 1
	totalPages := 1
	for page <= totalPages {
		var resp projectAssignmentsPage
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(pageSize))
		if err := c.doJSON(ctx, "/users/me/project_assignments", params, &resp); err != nil {
			return nil, err
		}
		totalPages = resp.TotalPages

		for _, assignment := range resp.ProjectAssignments {
			projects = append(projects, Project{
				ID:         assignment.Project.ID,
				Name:       assignment.Project.Name,
				ClientName: assignment.Client.Name,
			})
		}

		page++
		if page <= totalPages {
			if err := c.waitBetweenPages(ctx); err != nil {
				return nil, err
			}
		}
	}

	return projects, nil
}

func (c *HTTPClient) waitBetweenPages(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.pageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *HTTPClient) doJSON(ctx context.Context, endpointPath string, params url.Values, out any) error {
	requestURL := c.baseURL + endpointPath
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request GET %s: %w", endpointPath, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Harvest-Account-Id", c.accountID)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request GET %s failed: %w", endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"Harvest API error: %d %s",
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response GET %s: %w", endpointPath, err)
	}
	return nil
}
