package submitter

import "github.com/markdavies/harvest-toggl-sync/timeentry"

// DuplicateReason is the fixed failure reason recorded for entries skipped by
// duplicate detection. It is a logical outcome, not an error condition.
const DuplicateReason = "Duplicate entry detected"

// Outcome is the per-entry import result, one per input entry in input order.
// Exactly one of TogglID (success) or Error (failure) is populated; build
// values through Succeeded and Failed to keep that exclusivity.
type Outcome struct {
	Entry   timeentry.Entry `json:"entry"`
	Success bool            `json:"success"`
	TogglID int64           `json:"togglId,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func Succeeded(entry timeentry.Entry, togglID int64) Outcome {
	return Outcome{Entry: entry, Success: true, TogglID: togglID}
}

func Failed(entry timeentry.Entry, reason string) Outcome {
	return Outcome{Entry: entry, Success: false, Error: reason}
}
