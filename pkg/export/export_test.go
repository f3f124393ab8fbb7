package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/employee-client/pkg/model"
)

var sample = []model.Employee{
	{
		ID:         "1",
		FullName:   "Ada Lovelace",
		HireDate:   time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
		Position:   "Engineer",
		Salary:     4200.5,
		Department: "R&D",
	},
	{
		ID:         "2",
		FullName:   "José, \"Pepe\" García",
		Position:   "Sales",
		Salary:     3000,
		Department: "Sales",
	},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{" csv ", FormatCSV, false},
		{"pdf", FormatPDF, false},
		{"xlsx", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("out/employees.csv"); err != nil || f != FormatCSV {
		t.Errorf("FormatFromPath(csv) = %q, %v", f, err)
	}
	if _, err := FormatFromPath("employees"); err == nil {
		t.Error("Expected error for a path without extension")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "id,fullName,hireDate,position,salary,department\n" +
		"1,Ada Lovelace,2020-01-15,Engineer,4200.50,R&D\n" +
		"2,\"José, \"\"Pepe\"\" García\",,Sales,3000.00,Sales\n"
	if buf.String() != want {
		t.Errorf("WriteCSV output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export should be [], got %q", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sample[:1]); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"- id: \"1\"", "fullName: Ada Lovelace", "department: R&D"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, "", sample); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWrite_Dispatch(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, f, "Employees", sample); err != nil {
				t.Fatalf("Write(%s) failed: %v", f, err)
			}
			if buf.Len() == 0 {
				t.Errorf("Write(%s) produced no output", f)
			}
		})
	}

	if err := Write(&bytes.Buffer{}, Format("xml"), "", sample); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
