package documents

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/otka-dev/otka-backend/internal/commissions"
)

// CommissionCSV exports the monthly commission aggregate for spreadsheets.
func CommissionCSV(rows []commissions.PartnerSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"partner_email", "orders", "total_net", "commission"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.PartnerEmail,
			strconv.Itoa(row.Orders),
			row.TotalNet.StringFixed(2),
			row.Commission.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
