package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/markdavies/harvest-toggl-sync/timeentry"
)

// Writer renders fetched time entries into a downloadable format.
type Writer interface {
	Write(w io.Writer, entries []timeentry.Entry) error
	ContentType() string
	Extension() string
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "", "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func headers() []string {
	return []string{"Date", "Client", "Project", "Task", "Description", "Hours", "Billable"}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
