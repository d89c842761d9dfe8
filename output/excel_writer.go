package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/markdavies/harvest-toggl-sync/timeentry"
)

type ExcelWriter struct{}

func (w *ExcelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *ExcelWriter) Extension() string { return "xlsx" }

func (w *ExcelWriter) Write(out io.Writer, entries []timeentry.Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range headers() {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, entry := range entries {
		row := i + 2
		values := []any{
			entry.Date,
			entry.Client,
			entry.Project,
			entry.Task,
			entry.Description,
			entry.Hours,
			entry.Billable,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.Write(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}
	return nil
}
