package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/api/middleware"
	"github.com/otka-dev/otka-backend/internal/commissions"
	"github.com/otka-dev/otka-backend/internal/documents"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

type stubOrdersSource struct {
	window  []models.ManualOrder
	partner []models.ManualOrder
}

func (s *stubOrdersSource) ListInWindow(ctx context.Context, from, to time.Time) ([]models.ManualOrder, error) {
	return s.window, nil
}

func (s *stubOrdersSource) ListByPartner(ctx context.Context, partnerEmail string) ([]models.ManualOrder, error) {
	return s.partner, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func commissionService(t *testing.T, source *stubOrdersSource) *commissions.Service {
	t.Helper()
	svc, err := commissions.NewService(commissions.ServiceParams{
		Orders: source,
		Rate:   decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestAdminCommissionReportAggregatesCompletedOrders(t *testing.T) {
	source := &stubOrdersSource{
		window: []models.ManualOrder{
			{PartnerEmail: "alfa@example.ro", TotalNet: decimal.RequireFromString("1000.00"), Status: enums.ManualOrderStatusCompleted},
			{PartnerEmail: "alfa@example.ro", TotalNet: decimal.RequireFromString("500.00"), Status: enums.ManualOrderStatusCompleted},
			{PartnerEmail: "beta@example.ro", TotalNet: decimal.RequireFromString("900.00"), Status: enums.ManualOrderStatusPending},
		},
	}
	handler := AdminCommissionReport(commissionService(t, source), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/commissions?month=2026-03", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Month    string `json:"month"`
			Partners []struct {
				PartnerEmail string          `json:"partnerEmail"`
				Orders       int             `json:"orders"`
				TotalNet     decimal.Decimal `json:"totalNet"`
				Commission   decimal.Decimal `json:"commission"`
			} `json:"partners"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Month != "2026-03" {
		t.Fatalf("unexpected month: %s", envelope.Data.Month)
	}
	if len(envelope.Data.Partners) != 1 {
		t.Fatalf("pending orders must be excluded, got %d partners", len(envelope.Data.Partners))
	}
	row := envelope.Data.Partners[0]
	if row.PartnerEmail != "alfa@example.ro" || row.Orders != 2 {
		t.Fatalf("unexpected aggregate: %+v", row)
	}
	if !row.TotalNet.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("unexpected net: %s", row.TotalNet)
	}
	if !row.Commission.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("unexpected commission: %s", row.Commission)
	}
}

func TestAdminCommissionReportRequiresMonth(t *testing.T) {
	handler := AdminCommissionReport(commissionService(t, &stubOrdersSource{}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/commissions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestAdminCommissionReportRejectsBadMonth(t *testing.T) {
	handler := AdminCommissionReport(commissionService(t, &stubOrdersSource{}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/commissions?month=March", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestAdminCommissionExportCSV(t *testing.T) {
	source := &stubOrdersSource{
		window: []models.ManualOrder{
			{PartnerEmail: "alfa@example.ro", TotalNet: decimal.RequireFromString("200.00"), Status: enums.ManualOrderStatusCompleted},
		},
	}
	handler := AdminCommissionExportCSV(commissionService(t, source), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/commissions/export/csv?month=2026-03", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "comisioane-2026-03.csv") {
		t.Fatalf("unexpected disposition: %s", cd)
	}
	if !strings.Contains(rec.Body.String(), "alfa@example.ro") {
		t.Fatalf("csv missing partner row: %q", rec.Body.String())
	}
}

func TestPartnerCommissionBreakdownRequiresActor(t *testing.T) {
	handler := PartnerCommissionBreakdown(commissionService(t, &stubOrdersSource{}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/commissions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestPartnerCommissionExportPDF(t *testing.T) {
	source := &stubOrdersSource{
		partner: []models.ManualOrder{
			{
				PartnerEmail: "alfa@example.ro",
				TotalNet:     decimal.RequireFromString("400.00"),
				Status:       enums.ManualOrderStatusCompleted,
				CreatedAt:    time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	handler := PartnerCommissionExportPDF(commissionService(t, source), documents.NewPDFRenderer(documents.CompanyInfo{Name: "OTKA"}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/commissions/export/pdf", nil)
	req = req.WithContext(middleware.WithActor(req.Context(), "alfa@example.ro", "partner"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a pdf document")
	}
}

func TestPartnerCommissionBreakdownReturnsOwnView(t *testing.T) {
	source := &stubOrdersSource{
		partner: []models.ManualOrder{
			{
				PartnerEmail: "alfa@example.ro",
				TotalNet:     decimal.RequireFromString("400.00"),
				Status:       enums.ManualOrderStatusCompleted,
				CreatedAt:    time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	handler := PartnerCommissionBreakdown(commissionService(t, source), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/commissions", nil)
	req = req.WithContext(middleware.WithActor(req.Context(), "alfa@example.ro", "partner"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "alfa@example.ro") {
		t.Fatalf("missing partner email: %q", rec.Body.String())
	}
}
