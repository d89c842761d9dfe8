package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeDoer struct {
	fn func(r *http.Request) (*http.Response, error)
}

func (d fakeDoer) Do(r *http.Request) (*http.Response, error) {
	return d.fn(r)
}

func jsonResponse(payload any) *http.Response {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(string(body))),
	}
}

func newTestClient(t *testing.T, fn func(r *http.Request) (*http.Response, error)) *HTTPClient {
	t.Helper()
	noDelay := time.Duration(0)
	client, err := NewClient(ClientConfig{
		BaseURL:     "https://api.harvestapp.com/v2",
		AccessToken: "harvest-token",
		AccountID:   "12345",
		PageDelay:   &noDelay,
		HTTPClient:  fakeDoer{fn: fn},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func strPtr(value string) *string { return &value }

func TestNewClient_RequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{BaseURL: "https://example.com", AccountID: "1"}); err == nil {
		t.Fatalf("expected error for missing access token")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "https://example.com", AccessToken: "x"}); err == nil {
		t.Fatalf("expected error for missing account id")
	}
}

func TestHTTPClient_ListTimeEntriesPaginates(t *testing.T) {
	t.Parallel()

	pages := map[string]timeEntriesPage{
		"1": {
			TotalPages: 2,
			TimeEntries: []harvestTimeEntry{{
				ID:        101,
				SpentDate: "2024-01-01",
				Hours:     1.5,
				Notes:     strPtr("Standup"),
				Billable:  true,
				Client:    nameRef{ID: 1, Name: "Acme"},
				Project:   nameRef{ID: 2, Name: "Alpha"},
				Task:      nameRef{ID: 3, Name: "Dev"},
			}},
		},
		"2": {
			TotalPages: 2,
			TimeEntries: []harvestTimeEntry{{
				ID:        102,
				SpentDate: "2024-01-02",
				Hours:     2,
				Notes:     nil,
				Client:    nameRef{ID: 1, Name: "Acme"},
				Project:   nameRef{ID: 2, Name: "Alpha"},
				Task:      nameRef{ID: 3, Name: "Dev"},
			}},
		},
	}

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v2/time_entries" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer harvest-token" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("Harvest-Account-Id"); got != "12345" {
			t.Fatalf("unexpected Harvest-Account-Id header: %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Fatalf("unexpected per_page: %q", got)
		}
		page, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			t.Fatalf("unexpected page request: %q", r.URL.Query().Get("page"))
		}
		return jsonResponse(page), nil
	})

	entries, err := client.ListTimeEntries(context.Background(), "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("list time entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries across pages, got %d", len(entries))
	}

	first := entries[0]
	if first.ID == "" {
		t.Fatalf("expected generated UUID id")
	}
	if first.HarvestID != 101 || first.Date != "2024-01-01" || first.Description != "Standup" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if !first.Billable || first.Hours != 1.5 || first.Client != "Acme" || first.Project != "Alpha" || first.Task != "Dev" {
		t.Fatalf("unexpected first entry fields: %+v", first)
	}

	// Null notes normalize to empty description.
	if entries[1].Description != "" {
		t.Fatalf("expected empty description for null notes, got %q", entries[1].Description)
	}
	if entries[1].ID == entries[0].ID {
		t.Fatalf("entry ids must be unique")
	}
}

func TestHTTPClient_ListTimeEntriesPageErrorAborts(t *testing.T) {
	t.Parallel()

	calls := 0
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonResponse(timeEntriesPage{TotalPages: 3}), nil
		}
		return nil, errors.New("connection reset")
	})

	_, err := client.ListTimeEntries(context.Background(), "2024-01-01", "2024-01-31")
	if err == nil {
		t.Fatalf("expected listing to fail when a page errors")
	}
	if calls != 2 {
		t.Fatalf("expected fetch to stop at the failing page, got %d calls", calls)
	}
}

func TestHTTPClient_ListProjects(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v2/users/me/project_assignments" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		return jsonResponse(projectAssignmentsPage{
			TotalPages: 1,
			ProjectAssignments: []projectAssignment{{
				ID:      900,
				Project: nameRef{ID: 2, Name: "Alpha"},
				Client:  nameRef{ID: 1, Name: "Acme"},
			}},
		}), nil
	})

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].ID != 2 || projects[0].Name != "Alpha" || projects[0].ClientName != "Acme" {
		t.Fatalf("unexpected project: %+v", projects[0])
	}
}

func TestHTTPClient_ErrorCarriesStatusAndBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader("invalid token")),
		}, nil
	})

	_, err := client.ListProjects(context.Background())
	if err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid token") {
		t.Fatalf("error must carry status and body text: %v", err)
	}
}
