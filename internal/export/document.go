package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/CLDWare/csi-survey-backend/internal/results"
)

const (
	SheetName    = "Survey results"
	SummaryLabel = "SUMMARY"

	dateLayout = "2006-01-02 15:04:05"
)

var columns = []struct {
	title string
	width float64
}{
	{"User name", 20},
	{"Project", 25},
	{"Question", 50},
	{"Rating", 10},
	{"Comment", 30},
	{"Total score", 15},
	{"Completion date", 20},
}

// BuildWorkbook lays the results out on one sheet: a header row, then per
// result a bold summary row, one row per response and a blank separator row.
// The caller closes the returned file.
func BuildWorkbook(grouped []results.GroupedResult) (*excelize.File, error) {
	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			f.Close()
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F0F8FF"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary style: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.title
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, c.width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := writeRow(f, 1, header, headerStyle); err != nil {
		return nil, err
	}

	row := 2
	for _, g := range grouped {
		summary := []any{g.UserName, g.ProjectName, SummaryLabel, "", "", g.TotalScore, g.CompletedAt.UTC().Format(dateLayout)}
		if err := writeRow(f, row, summary, summaryStyle); err != nil {
			return nil, err
		}
		row++

		for _, r := range g.Responses {
			comment := ""
			if r.Comment != nil {
				comment = *r.Comment
			}
			if err := writeRow(f, row, []any{"", "", r.QuestionText, r.Rating, comment, "", ""}, 0); err != nil {
				return nil, err
			}
			row++
		}
		// separator
		row++
	}

	ok = true
	return f, nil
}

func writeRow(f *excelize.File, row int, values []any, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, first, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	if style == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, first, last, style); err != nil {
		return fmt.Errorf("style row %d: %w", row, err)
	}
	return nil
}

// DocumentName is unique per call so concurrent exports never share a file.
func DocumentName(now time.Time) string {
	return fmt.Sprintf("survey_results_%s_%s.xlsx", now.Format("2006-01-02"), uuid.NewString()[:8])
}

// WriteDocument saves the workbook of the results into dir and returns its path.
func WriteDocument(dir string, grouped []results.GroupedResult, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	f, err := BuildWorkbook(grouped)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, DocumentName(now))
	if err := f.SaveAs(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
