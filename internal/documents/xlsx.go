package documents

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/otka-dev/otka-backend/pkg/db/models"
)

const ordersSheet = "Comenzi"

// PartnerOrdersXLSX exports partner orders, one row per item, grouped by
// order. The workbook is what the back office forwards to manufacturers.
func PartnerOrdersXLSX(orders []models.PartnerOrder) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), ordersSheet)

	headers := []string{
		"Comanda", "Partener", "Status", "Trimisa la",
		"Rand", "Producator", "Cod produs", "Cantitate", "Finisaj", "Pret partener",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(ordersSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(ordersSheet, "A1", "J1", headerStyle)
	}

	rowIdx := 2
	for _, order := range orders {
		submitted := ""
		if order.SubmittedAt != nil {
			submitted = order.SubmittedAt.Format("02.01.2006 15:04")
		}
		for _, item := range order.Items {
			finish := ""
			if item.FinishCode != nil {
				finish = *item.FinishCode
			}
			price := ""
			if item.PartnerPrice != nil {
				price = item.PartnerPrice.StringFixed(2)
			}
			values := []any{
				order.ID.String(), order.PartnerEmail, string(order.Status), submitted,
				item.RowNumber, item.ManufacturerName, item.ProductCode, item.Quantity, finish, price,
			}
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
				if err != nil {
					return nil, fmt.Errorf("data cell: %w", err)
				}
				if err := f.SetCellValue(ordersSheet, cell, value); err != nil {
					return nil, fmt.Errorf("write row: %w", err)
				}
			}
			rowIdx++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
