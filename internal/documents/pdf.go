package documents

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/otka-dev/otka-backend/internal/commissions"
	"github.com/otka-dev/otka-backend/pkg/db/models"
)

// CompanyInfo is the issuer block stamped on every document.
type CompanyInfo struct {
	Name    string
	VatID   string
	RegCom  string
	Address string
	IBAN    string
	Bank    string
}

// PDFRenderer draws printable documents. Stateless; one instance serves the
// whole process.
type PDFRenderer struct {
	company CompanyInfo
}

// NewPDFRenderer builds a renderer stamped with the issuing company details.
func NewPDFRenderer(company CompanyInfo) *PDFRenderer {
	if company.Name == "" {
		company.Name = "OTKA"
	}
	return &PDFRenderer{company: company}
}

// ProformaPDF renders the proforma with its line table and totals block.
func (r *PDFRenderer) ProformaPDF(proforma *models.Proforma) ([]byte, error) {
	if proforma == nil {
		return nil, fmt.Errorf("proforma is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, r.company.Name)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 8)
	for _, line := range r.issuerLines() {
		pdf.Cell(0, 4, line)
		pdf.Ln(4)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Proforma %s", proforma.FullNumber()))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Data: %s", proforma.CreatedAt.Format("02.01.2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Client: %s (%s)", proforma.ClientName, proforma.ClientEmail))
	pdf.Ln(10)

	// Line table.
	colWidths := []float64{70, 30, 15, 25, 15, 25}
	headers := []string{"Produs", "SKU", "Cant", "Pret unitar", "TVA %", "Valoare"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range proforma.Items {
		pdf.CellFormat(colWidths[0], 6, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 6, item.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 6, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 6, item.TaxRate.StringFixed(0), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], 6, item.LineNet.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	labelW, valueW := 155.0, 25.0
	pdf.CellFormat(labelW, 6, "Subtotal (fara TVA):", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, proforma.SubtotalNet.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(labelW, 6, "TVA:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, proforma.TotalVAT.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "Total de plata (RON):", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 7, proforma.TotalGross.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, "Proforma nu este document fiscal. Factura se emite la incasare.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render proforma pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// issuerLines flattens the configured company details, skipping empty fields.
func (r *PDFRenderer) issuerLines() []string {
	lines := []string{}
	if r.company.VatID != "" {
		lines = append(lines, fmt.Sprintf("CUI: %s", r.company.VatID))
	}
	if r.company.RegCom != "" {
		lines = append(lines, fmt.Sprintf("Reg. Com.: %s", r.company.RegCom))
	}
	if r.company.Address != "" {
		lines = append(lines, r.company.Address)
	}
	if r.company.IBAN != "" {
		iban := fmt.Sprintf("IBAN: %s", r.company.IBAN)
		if r.company.Bank != "" {
			iban = fmt.Sprintf("%s (%s)", iban, r.company.Bank)
		}
		lines = append(lines, iban)
	}
	return lines
}

// PartnerCommissionPDF renders a partner's own breakdown: per-status totals
// followed by the monthly commission series.
func (r *PDFRenderer) PartnerCommissionPDF(report *commissions.PartnerReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Raport comisioane partener")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, report.PartnerEmail)
	pdf.Ln(12)

	statusWidths := []float64{80, 25, 40}
	statusHeaders := []string{"Status", "Comenzi", "Total net"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range statusHeaders {
		pdf.CellFormat(statusWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, st := range report.ByStatus {
		pdf.CellFormat(statusWidths[0], 6, string(st.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(statusWidths[1], 6, fmt.Sprintf("%d", st.Orders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(statusWidths[2], 6, st.Net.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(8)

	monthWidths := []float64{40, 25, 40, 35}
	monthHeaders := []string{"Luna", "Comenzi", "Total net", "Comision"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range monthHeaders {
		pdf.CellFormat(monthWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, mr := range report.ByMonth {
		pdf.CellFormat(monthWidths[0], 6, mr.Month, "1", 0, "L", false, 0, "")
		pdf.CellFormat(monthWidths[1], 6, fmt.Sprintf("%d", mr.Orders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(monthWidths[2], 6, mr.TotalNet.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(monthWidths[3], 6, mr.Commission.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(report.ByMonth) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 8, "Nicio comanda finalizata.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render partner commission pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// CommissionPDF renders the monthly per-partner commission report.
func (r *PDFRenderer) CommissionPDF(month string, rows []commissions.PartnerSummary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Raport comisioane %s", month))
	pdf.Ln(12)

	colWidths := []float64{80, 25, 40, 35}
	headers := []string{"Partener", "Comenzi", "Total net", "Comision"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		pdf.CellFormat(colWidths[0], 6, row.PartnerEmail, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 6, fmt.Sprintf("%d", row.Orders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 6, row.TotalNet.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 6, row.Commission.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 8, "Nicio comanda finalizata in luna selectata.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render commission pdf: %w", err)
	}
	return buf.Bytes(), nil
}
