package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

const (
	summarySheet = "Summary"
	defaultSheet = "Sheet1"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var questionHeader = []any{"#", "Question", "Frequency", "Asked", "Similar variants"}

// Exporter writes a classification snapshot as a workbook: a summary sheet
// followed by one sheet per category in display order.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Write(w io.Writer, filename string, result *domain.ClassificationResult, summary domain.SummaryState) (err error) {
	if result == nil {
		return domain.WrapError(domain.ErrNotFound, "export xlsx", errors.New("no classification result"))
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("create wrap style: %w", err)
	}

	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummary(f, bold, wrap, filename, result, summary); err != nil {
		return err
	}

	for _, category := range domain.Categories {
		if err := writeCategory(f, bold, wrap, category, result.Questions(category)); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, bold, wrap int, filename string, result *domain.ClassificationResult, summary domain.SummaryState) error {
	rows := [][]any{
		{"Document", filename},
		{"Extracted questions", result.TotalCount},
	}
	for _, category := range domain.Categories {
		rows = append(rows, []any{category.Label(), len(result.Questions(category))})
	}
	rows = append(rows, []any{"Summary", summaryText(summary)})

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(1, len(rows))
	if err := f.SetCellStyle(summarySheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style summary sheet: %w", err)
	}
	summaryCell, _ := excelize.CoordinatesToCellName(2, len(rows))
	if err := f.SetCellStyle(summarySheet, summaryCell, summaryCell, wrap); err != nil {
		return fmt.Errorf("style summary text: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("size summary sheet: %w", err)
	}
	return f.SetColWidth(summarySheet, "B", "B", 100)
}

func writeCategory(f *excelize.File, bold, wrap int, category domain.Category, questions []domain.Question) error {
	sheet := category.Label()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := questionHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, q := range domain.SortByOrdinal(questions) {
		row := []any{i + 1, q.Text, q.Frequency, q.Annotation(), strings.Join(q.Variants, "\n")}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	if len(questions) > 0 {
		last, _ := excelize.CoordinatesToCellName(5, len(questions)+1)
		if err := f.SetCellStyle(sheet, "B2", last, wrap); err != nil {
			return fmt.Errorf("style %s rows: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 80); err != nil {
		return fmt.Errorf("size %s sheet: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "E", "E", 60)
}

func summaryText(summary domain.SummaryState) string {
	switch summary.Phase {
	case domain.SummaryLoading:
		return "Generating summary..."
	case domain.SummaryReady, domain.SummaryFailed:
		return summary.Text
	default:
		return ""
	}
}
