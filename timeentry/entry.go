// Package timeentry holds the normalized time-entry record exchanged between
// the Harvest reader, the editable UI, and the Toggl submitter.
package timeentry

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format used everywhere (no time component).
const DateLayout = "2006-01-02"

// Entry is one row of the sync table. IDs are UUIDs minted when the row is
// fetched or added and are never sent to Toggl. IsNew/IsModified are UI
// provenance flags and must round-trip untouched.
type Entry struct {
	ID          string  `json:"id"`
	HarvestID   int64   `json:"harvestId,omitempty"`
	Date        string  `json:"date"`
	Client      string  `json:"client"`
	Project     string  `json:"project"`
	Task        string  `json:"task"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Billable    bool    `json:"billable"`
	IsNew       bool    `json:"isNew,omitempty"`
	IsModified  bool    `json:"isModified,omitempty"`
}

// ProjectMapping maps a Harvest project name to a Toggl project ID. Keys are
// not required to cover every entry; unmapped projects submit unassigned.
type ProjectMapping map[string]int64

// Validate checks the invariants required before an entry enters the import
// pipeline: a parseable calendar date and non-negative hours.
func (e Entry) Validate() error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if e.Hours < 0 {
		return fmt.Errorf("entry %s has negative hours (%v)", e.ID, e.Hours)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date in the local timezone.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return parsed, nil
}
