package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/markdavies/harvest-toggl-sync/timeentry"
)

type CSVWriter struct{}

func (w *CSVWriter) ContentType() string { return "text/csv" }
func (w *CSVWriter) Extension() string   { return "csv" }

func (w *CSVWriter) Write(out io.Writer, entries []timeentry.Entry) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(headers()); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			entry.Date,
			entry.Client,
			entry.Project,
			entry.Task,
			entry.Description,
			strconv.FormatFloat(entry.Hours, 'f', -1, 64),
			strconv.FormatBool(entry.Billable),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}
