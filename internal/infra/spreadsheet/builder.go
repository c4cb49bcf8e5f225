// internal/infra/spreadsheet/builder.go
package spreadsheet

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
)

const summarySheet = "الملخص"

// CategoryHeader is the header row of every category sheet.
var CategoryHeader = []string{"التاريخ", "المشرف", "المدرسة", "الملاحظة"}

// categoryColumnWidths: date, supervisor, school, note
var categoryColumnWidths = []float64{15, 15, 30, 50}

// Builder renders a report.Summary into an .xlsx workbook: a summary sheet
// followed by one sheet per inspection category.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// FileName is deterministic per period and second of generation.
func FileName(p period.Period, generatedAt time.Time) string {
	return fmt.Sprintf("تقرير_%s_%s.xlsx", p, generatedAt.Format("20060102_150405"))
}

// Render builds the workbook. sum is only read.
func (b *Builder) Render(sum *report.Summary, generatedAt time.Time) (*report.Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	// The default sheet becomes the summary so it stays first.
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err := writeSummary(f, styles, sum); err != nil {
		return nil, err
	}

	for _, c := range report.Categories {
		if err := writeCategory(f, styles, c, sum.Reports); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &report.Artifact{
		FileName: FileName(sum.Period, generatedAt),
		Content:  buf.Bytes(),
	}, nil
}

type styleSet struct {
	header int
	body   int
}

func newStyles(f *excelize.File) (styleSet, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("failed to create header style: %w", err)
	}

	body, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "right",
			Vertical:   "top",
			WrapText:   true,
		},
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("failed to create body style: %w", err)
	}
	return styleSet{header: header, body: body}, nil
}

func writeSummary(f *excelize.File, styles styleSet, sum *report.Summary) error {
	rows := [][]interface{}{
		{"نوع التقرير", "الفترة"},
		{"تقرير " + sum.Period.Label(), sum.Range.String()},
		{"إجمالي التقارير", len(sum.Reports)},
		{},
		{"القسم", "عدد الملاحظات"},
	}
	for _, c := range report.Categories {
		rows = append(rows, []interface{}{c.Title(), sum.Counts.Get(c)})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	for _, headerRow := range []int{1, 5} {
		from, _ := excelize.CoordinatesToCellName(1, headerRow)
		to, _ := excelize.CoordinatesToCellName(2, headerRow)
		if err := f.SetCellStyle(summarySheet, from, to, styles.header); err != nil {
			return fmt.Errorf("failed to style summary header: %w", err)
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to set summary column width: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 26); err != nil {
		return fmt.Errorf("failed to set summary column width: %w", err)
	}
	return setRightToLeft(f, summarySheet)
}

func writeCategory(f *excelize.File, styles styleSet, c report.Category, reports []report.VisitReport) error {
	sheet := c.Title()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(CategoryHeader))
	for i, h := range CategoryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", styles.header); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}

	for i, r := range reports {
		row := []interface{}{
			r.VisitDate.Format(period.DateLayout),
			r.SupervisorName,
			r.SchoolName,
			report.DisplayNote(r.Note(c)),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}
	if len(reports) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(CategoryHeader), len(reports)+1)
		if err := f.SetCellStyle(sheet, "A2", last, styles.body); err != nil {
			return fmt.Errorf("failed to style rows of %s: %w", sheet, err)
		}
	}

	for i, width := range categoryColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width of %s: %w", sheet, err)
		}
	}
	return setRightToLeft(f, sheet)
}

func setRightToLeft(f *excelize.File, sheet string) error {
	rtl := true
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("failed to set sheet view of %s: %w", sheet, err)
	}
	return nil
}
