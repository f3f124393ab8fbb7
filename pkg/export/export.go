// Package export writes employee listings as JSON, YAML, CSV or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/phpdave11/gofpdf"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatPDF}

// dateLayout is used for hire dates in the tabular formats.
const dateLayout = "2006-01-02"

var csvHeader = []string{"id", "fullName", "hireDate", "position", "salary", "department"}

// ParseFormat resolves a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatCSV, FormatPDF:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want one of %v)", name, Formats)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot derive export format from %q", path)
	}
	return ParseFormat(ext)
}

// Write encodes employees to w in the given format. title is used by the
// PDF header only.
func Write(w io.Writer, format Format, title string, employees []model.Employee) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, employees)
	case FormatYAML:
		return WriteYAML(w, employees)
	case FormatCSV:
		return WriteCSV(w, employees)
	case FormatPDF:
		return WritePDF(w, title, employees)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes an indented JSON array.
func WriteJSON(w io.Writer, employees []model.Employee) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(employees)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteYAML writes a YAML sequence.
func WriteYAML(w io.Writer, employees []model.Employee) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nonNil(employees)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}
	return nil
}

// WriteCSV writes a header row followed by one row per employee.
func WriteCSV(w io.Writer, employees []model.Employee) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range employees {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// column widths in mm for an A4 landscape page.
var pdfColumns = []struct {
	title string
	width float64
}{
	{"Name", 60},
	{"Hire date", 28},
	{"Position", 60},
	{"Salary", 32},
	{"Department", 57},
}

// WritePDF renders a landscape A4 table.
func WritePDF(w io.Writer, title string, employees []model.Employee) error {
	if title == "" {
		title = "Employees"
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("%d records, generated %s", len(employees), time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 10)
	for _, e := range employees {
		cells := []string{
			e.FullName,
			formatDate(e.HireDate),
			e.Position,
			strconv.FormatFloat(e.Salary, 'f', 2, 64),
			e.Department,
		}
		for i, col := range pdfColumns {
			align := "L"
			if i == 3 {
				align = "R"
			}
			pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func row(e model.Employee) []string {
	return []string{
		e.ID,
		e.FullName,
		formatDate(e.HireDate),
		e.Position,
		strconv.FormatFloat(e.Salary, 'f', 2, 64),
		e.Department,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func nonNil(employees []model.Employee) []model.Employee {
	if employees == nil {
		return []model.Employee{}
	}
	return employees
}
