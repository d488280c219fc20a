package payroll

import (
	"fmt"
	"os"
	"path/filepath"

	"go-payroll/internal/shared/dateutil"
	"go-payroll/internal/statutory"

	"github.com/jung-kurt/gofpdf"
)

// PayslipWriter renders approved entries to PDF files under a base
// directory, one sub-directory per company.
type PayslipWriter struct {
	dir string
}

func NewPayslipWriter(dir string) *PayslipWriter {
	return &PayslipWriter{dir: dir}
}

func (w *PayslipWriter) Path(entry PayrollEntry) string {
	return filepath.Join(w.dir, entry.CompanyID.String(), entry.ID.String()+".pdf")
}

func (w *PayslipWriter) Write(entry PayrollEntry, employeeName string) (string, error) {
	path := w.Path(entry)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create payslip dir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", dateutil.Format(entry.PeriodStart), dateutil.Format(entry.PeriodEnd)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Entry: %s", entry.ID))
	pdf.Ln(10)

	sections := []struct {
		title  string
		nature statutory.Nature
	}{
		{"Earnings", statutory.NatureEarning},
		{"Deductions", statutory.NatureDeduction},
		{"Employer contributions", statutory.NatureEmployerContribution},
	}
	for _, sec := range sections {
		lines := componentsOf(entry.Components, sec.nature)
		if len(lines) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, sec.title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, c := range lines {
			pdf.CellFormat(120, 7, c.Name, "B", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, c.CalculationValue.StringFixed(2), "B", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	totals := []struct {
		label string
		value string
	}{
		{"Gross earnings", entry.GrossEarnings.StringFixed(2)},
		{"Total deductions", entry.TotalDeductions.StringFixed(2)},
		{"Net pay", entry.NetPay.StringFixed(2)},
	}
	for _, t := range totals {
		pdf.CellFormat(120, 8, t.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, t.value, "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write payslip: %w", err)
	}
	return path, nil
}

func componentsOf(components []PayrollEntryComponent, nature statutory.Nature) []PayrollEntryComponent {
	var out []PayrollEntryComponent
	for _, c := range components {
		if statutory.Nature(c.Nature) == nature {
			out = append(out, c)
		}
	}
	return out
}
