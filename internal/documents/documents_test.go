package documents

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/otka-dev/otka-backend/internal/commissions"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
)

func TestProformaPDFProducesDocument(t *testing.T) {
	renderer := NewPDFRenderer(CompanyInfo{
		Name:    "OTKA SRL",
		VatID:   "RO12345678",
		RegCom:  "J40/1234/2020",
		Address: "Str. Fabricii 10, Bucuresti",
		IBAN:    "RO49AAAA1B31007593840000",
		Bank:    "Banca Exemplu",
	})
	proforma := &models.Proforma{
		Series:      "PRF",
		Number:      42,
		ClientName:  "Mobila Plus SRL",
		ClientEmail: "contact@mobilaplus.ro",
		SubtotalNet: decimal.RequireFromString("100.00"),
		TotalVAT:    decimal.RequireFromString("19.00"),
		TotalGross:  decimal.RequireFromString("119.00"),
		Status:      enums.ProformaStatusDraft,
		CreatedAt:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.ProformaItem{
			{
				Name:      "Blat stejar",
				SKU:       "H1180",
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("50.00"),
				TaxRate:   decimal.NewFromInt(19),
				LineNet:   decimal.RequireFromString("100.00"),
				LineVAT:   decimal.RequireFromString("19.00"),
			},
		},
	}

	payload, err := renderer.ProformaPDF(proforma)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")), "expected pdf magic bytes")
}

func TestProformaPDFRequiresProforma(t *testing.T) {
	_, err := NewPDFRenderer(CompanyInfo{}).ProformaPDF(nil)
	require.Error(t, err)
}

func TestCommissionPDFProducesDocument(t *testing.T) {
	rows := []commissions.PartnerSummary{
		{
			PartnerEmail: "partener@exemplu.ro",
			Orders:       3,
			TotalNet:     decimal.RequireFromString("1250.50"),
			Commission:   decimal.RequireFromString("62.53"),
		},
	}
	payload, err := NewPDFRenderer(CompanyInfo{Name: "OTKA SRL"}).CommissionPDF("2026-08", rows)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")), "expected pdf magic bytes")
}

func TestPartnerCommissionPDFProducesDocument(t *testing.T) {
	report := &commissions.PartnerReport{
		PartnerEmail: "partener@exemplu.ro",
		ByStatus: []commissions.StatusTotal{
			{Status: enums.ManualOrderStatusCompleted, Orders: 2, Net: decimal.RequireFromString("800.00")},
		},
		ByMonth: []commissions.MonthlyRow{
			{Month: "2026-08", Orders: 2, TotalNet: decimal.RequireFromString("800.00"), Commission: decimal.RequireFromString("40.00")},
		},
	}
	payload, err := NewPDFRenderer(CompanyInfo{Name: "OTKA SRL"}).PartnerCommissionPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")), "expected pdf magic bytes")

	_, err = NewPDFRenderer(CompanyInfo{}).PartnerCommissionPDF(nil)
	require.Error(t, err)
}

func TestPartnerOrdersXLSXWritesItemRows(t *testing.T) {
	finish := "H1180 ST37"
	price := decimal.RequireFromString("99.90")
	submitted := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	orders := []models.PartnerOrder{
		{
			ID:           uuid.New(),
			PartnerEmail: "partener@exemplu.ro",
			Status:       enums.PartnerOrderStatusSubmitted,
			SubmittedAt:  &submitted,
			Items: []models.PartnerOrderItem{
				{RowNumber: 1, ManufacturerName: "Egger", ProductCode: "H1180", Quantity: 4, FinishCode: &finish, PartnerPrice: &price},
				{RowNumber: 2, ManufacturerName: "Kronospan", ProductCode: "K003", Quantity: 1},
			},
		},
	}

	payload, err := PartnerOrdersXLSX(orders)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ordersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus 2 item rows")
	assert.Equal(t, "Egger", rows[1][5])
	assert.Equal(t, "H1180", rows[1][6])
	assert.Equal(t, "Kronospan", rows[2][5])
}

func TestCommissionCSVFormatsTotals(t *testing.T) {
	rows := []commissions.PartnerSummary{
		{
			PartnerEmail: "partener@exemplu.ro",
			Orders:       2,
			TotalNet:     decimal.RequireFromString("1250.50"),
			Commission:   decimal.RequireFromString("62.525"),
		},
	}
	payload, err := CommissionCSV(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	assert.Equal(t, "partner_email,orders,total_net,commission", lines[0])
	assert.Equal(t, "partener@exemplu.ro,2,1250.50,62.53", lines[1])
}
