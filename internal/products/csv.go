package products

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

var csvHeader = []string{"sku", "name", "description", "price", "stock_qty", "finish_code", "active"}

// ImportResult summarizes a CSV import run.
type ImportResult struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError points at a rejected CSV row.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportCSV upserts products keyed by SKU. Bad rows are collected, good rows
// still land.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty csv file")
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["sku"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv must contain a sku column")
	}

	result := &ImportResult{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: row, Message: "malformed row"})
			continue
		}

		input, err := rowToInput(cols, record)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
			continue
		}

		existing, err := s.repo.FindBySKU(ctx, input.SKU)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product by sku")
		}
		if existing == nil {
			if _, err := s.Create(ctx, input); err != nil {
				result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
				continue
			}
			result.Created++
			continue
		}
		// keep relations; CSV only carries the flat fields
		input.CategoryID = existing.CategoryID
		input.BrandID = existing.BrandID
		if _, err := s.Update(ctx, existing.ID, input); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
			continue
		}
		result.Updated++
	}
	return result, nil
}

// ExportCSV writes the full catalog in the import format.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.List(ctx, ListQuery{})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, product := range rows {
		finish := ""
		if product.FinishCode != nil {
			finish = *product.FinishCode
		}
		record := []string{
			product.SKU,
			product.Name,
			product.Description,
			product.Price.StringFixed(2),
			strconv.Itoa(product.StockQty),
			finish,
			strconv.FormatBool(product.Active),
		}
		if err := writer.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return buf.Bytes(), nil
}

func rowToInput(cols map[string]int, record []string) (UpsertInput, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	input := UpsertInput{
		SKU:         get("sku"),
		Name:        get("name"),
		Description: get("description"),
	}
	if input.SKU == "" {
		return input, fmt.Errorf("sku is required")
	}
	if input.Name == "" {
		return input, fmt.Errorf("name is required")
	}

	price, err := decimal.NewFromString(get("price"))
	if err != nil {
		return input, fmt.Errorf("invalid price %q", get("price"))
	}
	input.Price = price

	if qty := get("stock_qty"); qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return input, fmt.Errorf("invalid stock_qty %q", qty)
		}
		input.StockQty = n
	}
	if finish := get("finish_code"); finish != "" {
		input.FinishCode = &finish
	}
	if active := get("active"); active != "" {
		b, err := strconv.ParseBool(active)
		if err != nil {
			return input, fmt.Errorf("invalid active flag %q", active)
		}
		input.Active = &b
	}
	return input, nil
}
