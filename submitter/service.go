// Package submitter implements the import pipeline: duplicate detection
// against the existing Toggl window, per-entry project remapping, paced
// sequential submission, and ordered outcome aggregation.
package submitter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/markdavies/harvest-toggl-sync/timeentry"
	"github.com/markdavies/harvest-toggl-sync/toggl"
)

const (
	// startHour anchors every submitted entry at 09:00 local time. Harvest
	// entries carry no time of day, Toggl requires a timestamp.
	startHour = 9

	createdWith = "harvest-toggl-sync"

	// duplicateToleranceSeconds absorbs rounding drift between Harvest's
	// fractional hours and Toggl's integer seconds. Strictly less than.
	duplicateToleranceSeconds = 60
)

type Service struct {
	client toggl.Client
	pacer  Pacer
}

// NewService builds the import pipeline around a Toggl client. A nil pacer
// gets the default fixed delay.
func NewService(client toggl.Client, pacer Pacer) *Service {
	if pacer == nil {
		pacer = NewFixedDelayPacer(SubmitDelay)
	}
	return &Service{client: client, pacer: pacer}
}

// Import pushes the batch into the given workspace and returns one outcome
// per entry, in input order. Only the up-front fetch of existing entries can
// fail the whole call; every per-entry failure is captured as an outcome and
// the loop continues.
func (s *Service) Import(
	ctx context.Context,
	entries []timeentry.Entry,
	workspaceID int64,
	mapping timeentry.ProjectMapping,
) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(entries))
	if len(entries) == 0 {
		return outcomes, nil
	}

	from, to := batchSpan(entries)
	existing, err := s.client.ListTimeEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch existing toggl entries %s..%s: %w", from, to, err)
	}

	submittedAny := false
	for _, entry := range entries {
		if IsDuplicate(entry, existing) {
			outcomes = append(outcomes, Failed(entry, DuplicateReason))
			continue
		}

		// Pace only between real submission attempts; duplicate skips do not
		// count against the gap.
		if submittedAny {
			if err := s.pacer.Wait(ctx); err != nil {
				outcomes = append(outcomes, Failed(entry, err.Error()))
				continue
			}
		}
		submittedAny = true

		request, err := buildCreateRequest(entry, workspaceID, mapping)
		if err != nil {
			outcomes = append(outcomes, Failed(entry, err.Error()))
			continue
		}

		created, err := s.client.CreateTimeEntry(ctx, workspaceID, request)
		if err != nil {
			outcomes = append(outcomes, Failed(entry, err.Error()))
			continue
		}
		outcomes = append(outcomes, Succeeded(entry, created.ID))
	}

	return outcomes, nil
}

// IsDuplicate reports whether the entry already exists in the fetched window:
// exact calendar date, exact description, and duration within one minute.
func IsDuplicate(entry timeentry.Entry, existing []toggl.TimeEntry) bool {
	wantSeconds := entry.Hours * 3600
	for _, candidate := range existing {
		if candidate.StartDate() != entry.Date {
			continue
		}
		if candidate.Description != entry.Description {
			continue
		}
		if math.Abs(float64(candidate.Duration)-wantSeconds) < duplicateToleranceSeconds {
			return true
		}
	}
	return false
}

func buildCreateRequest(
	entry timeentry.Entry,
	workspaceID int64,
	mapping timeentry.ProjectMapping,
) (toggl.CreateTimeEntryRequest, error) {
	day, err := timeentry.ParseDate(entry.Date)
	if err != nil {
		return toggl.CreateTimeEntryRequest{}, err
	}

	var projectID *int64
	if mapped, ok := mapping[entry.Project]; ok && mapped != 0 {
		id := mapped
		projectID = &id
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, time.Local)

	return toggl.CreateTimeEntryRequest{
		Description: entry.Description,
		Start:       start.UTC().Format(time.RFC3339),
		Duration:    int64(math.Round(entry.Hours * 3600)),
		ProjectID:   projectID,
		WorkspaceID: workspaceID,
		CreatedWith: createdWith,
		Billable:    entry.Billable,
		Tags:        []string{entry.Task},
	}, nil
}

// batchSpan returns the inclusive min/max date across the batch. ISO dates
// order lexicographically, so plain string comparison is enough.
func batchSpan(entries []timeentry.Entry) (from, to string) {
	from = entries[0].Date
	to = entries[0].Date
	for _, entry := range entries[1:] {
		if entry.Date < from {
			from = entry.Date
		}
		if entry.Date > to {
			to = entry.Date
		}
	}
	return from, to
}
