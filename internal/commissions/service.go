package commissions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

// DefaultRate is the platform commission applied to completed net totals.
var DefaultRate = decimal.RequireFromString("0.05")

// PartnerSummary is the monthly aggregate for one partner.
type PartnerSummary struct {
	PartnerEmail string          `json:"partnerEmail"`
	Orders       int             `json:"orders"`
	TotalNet     decimal.Decimal `json:"totalNet"`
	Commission   decimal.Decimal `json:"commission"`
}

// MonthlyRow is one month of a partner's own breakdown.
type MonthlyRow struct {
	Month      string          `json:"month"`
	Orders     int             `json:"orders"`
	TotalNet   decimal.Decimal `json:"totalNet"`
	Commission decimal.Decimal `json:"commission"`
}

// StatusTotal sums orders per status for the partner view.
type StatusTotal struct {
	Status enums.ManualOrderStatus `json:"status"`
	Orders int                     `json:"orders"`
	Net    decimal.Decimal         `json:"net"`
}

// PartnerReport is the partner-facing commission view.
type PartnerReport struct {
	PartnerEmail string        `json:"partnerEmail"`
	ByStatus     []StatusTotal `json:"byStatus"`
	ByMonth      []MonthlyRow  `json:"byMonth"`
}

type ordersSource interface {
	ListInWindow(ctx context.Context, from, to time.Time) ([]models.ManualOrder, error)
	ListByPartner(ctx context.Context, partnerEmail string) ([]models.ManualOrder, error)
}

// ServiceParams groups dependencies for the commission service.
type ServiceParams struct {
	Orders ordersSource
	Rate   decimal.Decimal
}

// Service folds manual orders into commission aggregates. It never mutates
// order rows.
type Service struct {
	orders ordersSource
	rate   decimal.Decimal
}

// NewService builds a commission service; a zero rate falls back to DefaultRate.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders source required")
	}
	rate := params.Rate
	if rate.IsZero() {
		rate = DefaultRate
	}
	return &Service{orders: params.Orders, rate: rate}, nil
}

// Aggregate groups completed manual orders created in the given month
// (half-open [start, next-month-start)) by partner and applies the rate.
func (s *Service) Aggregate(ctx context.Context, month string) ([]PartnerSummary, error) {
	from, to, err := MonthWindow(month)
	if err != nil {
		return nil, err
	}

	rows, err := s.orders.ListInWindow(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manual orders")
	}

	byPartner := map[string]*PartnerSummary{}
	for _, row := range rows {
		if row.Status != enums.ManualOrderStatusCompleted {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row.PartnerEmail))
		if key == "" {
			continue
		}
		summary, ok := byPartner[key]
		if !ok {
			summary = &PartnerSummary{PartnerEmail: key, TotalNet: decimal.Zero, Commission: decimal.Zero}
			byPartner[key] = summary
		}
		summary.Orders++
		summary.TotalNet = summary.TotalNet.Add(row.TotalNet)
	}

	out := make([]PartnerSummary, 0, len(byPartner))
	for _, summary := range byPartner {
		summary.Commission = summary.TotalNet.Mul(s.rate)
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartnerEmail < out[j].PartnerEmail })
	return out, nil
}

// PartnerBreakdown builds the caller's own view: totals per status plus a
// by-month series of completed net and commission.
func (s *Service) PartnerBreakdown(ctx context.Context, partnerEmail string) (*PartnerReport, error) {
	email := strings.ToLower(strings.TrimSpace(partnerEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner identity missing")
	}

	rows, err := s.orders.ListByPartner(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner orders")
	}

	statusTotals := map[enums.ManualOrderStatus]*StatusTotal{}
	monthTotals := map[string]*MonthlyRow{}
	for _, row := range rows {
		st, ok := statusTotals[row.Status]
		if !ok {
			st = &StatusTotal{Status: row.Status, Net: decimal.Zero}
			statusTotals[row.Status] = st
		}
		st.Orders++
		st.Net = st.Net.Add(row.TotalNet)

		if row.Status != enums.ManualOrderStatusCompleted {
			continue
		}
		month := row.CreatedAt.UTC().Format("2006-01")
		mr, ok := monthTotals[month]
		if !ok {
			mr = &MonthlyRow{Month: month, TotalNet: decimal.Zero, Commission: decimal.Zero}
			monthTotals[month] = mr
		}
		mr.Orders++
		mr.TotalNet = mr.TotalNet.Add(row.TotalNet)
	}

	report := &PartnerReport{PartnerEmail: email}
	for _, st := range statusTotals {
		report.ByStatus = append(report.ByStatus, *st)
	}
	sort.Slice(report.ByStatus, func(i, j int) bool { return report.ByStatus[i].Status < report.ByStatus[j].Status })
	for _, mr := range monthTotals {
		mr.Commission = mr.TotalNet.Mul(s.rate)
		report.ByMonth = append(report.ByMonth, *mr)
	}
	sort.Slice(report.ByMonth, func(i, j int) bool { return report.ByMonth[i].Month > report.ByMonth[j].Month })
	return report, nil
}

// MonthWindow parses "YYYY-MM" into the half-open UTC window covering it.
func MonthWindow(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "month must be formatted YYYY-MM")
	}
	start = start.UTC()
	return start, start.AddDate(0, 1, 0), nil
}
