package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"habittracker/internal/shaping"
	"habittracker/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts pdf or xlsx, case-insensitively.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case ExportPDF:
		return ExportPDF, true
	case ExportXLSX:
		return ExportXLSX, true
	}
	return "", false
}

func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// ExportService renders shaped records as a document. Columns follow the
// key order of the first record.
type ExportService struct {
	RequestID string
	Now       func() time.Time
}

func (s ExportService) Export(format ExportFormat, title string, records []shaping.Record) ([]byte, string, error) {
	now := clock{Now: s.Now}.now()
	cols := columnsOf(records)
	filename := fmt.Sprintf("%s_%s.%s", safeFilenamePart(title), now.Format("20060102_150405"), format)

	var (
		out []byte
		err error
	)
	switch format {
	case ExportPDF:
		out, err = buildTablePDF(title, now, cols, records)
	case ExportXLSX:
		out, err = buildTableXLSX(cols, records)
	default:
		return nil, "", fmt.Errorf("format export %q tidak didukung", format)
	}
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "export", "generate_"+string(format), fmt.Sprintf("rows=%d cols=%d", len(records), len(cols)))
	return out, filename, nil
}

func columnsOf(records []shaping.Record) []string {
	if len(records) == 0 {
		return []string{}
	}
	return records[0].Keys()
}

func buildTablePDF(title string, now time.Time, cols []string, records []shaping.Record) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, strings.ToUpper(title))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Dibuat: "+utils.FormatDateTime(now)+" UTC")
	pdf.Ln(8)

	if len(cols) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 7, "Tidak ada data.")
	} else {
		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		w := (pageW - left - right) / float64(len(cols))
		maxChars := int(w / 2)

		pdf.SetFont("Helvetica", "B", 9)
		for _, c := range cols {
			pdf.CellFormat(w, 7, clip(c, maxChars), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, r := range records {
			for _, c := range cols {
				v, _ := r.Get(c)
				pdf.CellFormat(w, 6, clip(cellText(v), maxChars), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildTableXLSX(cols []string, records []shaping.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	header := make([]any, 0, len(cols))
	for _, c := range cols {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range records {
		row := make([]any, 0, len(cols))
		for _, c := range cols {
			v, _ := r.Get(c)
			row = append(row, cellText(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellText renders a shaped value for a document cell. nil becomes "-".
func cellText(v any) string {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "-"
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return "-"
	}
	switch val := rv.Interface().(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		return string(b)
	case reflect.String:
		return rv.String()
	}
	if s, err := cast.ToStringE(rv.Interface()); err == nil {
		return s
	}
	return fmt.Sprint(rv.Interface())
}

func clip(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func safeFilenamePart(s string) string {
	return utils.SafeFilenamePart(strings.ToLower(s))
}
