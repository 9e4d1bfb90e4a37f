package controllers

import (
	"fmt"
	"net/http"

	"github.com/otka-dev/otka-backend/api/middleware"
	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/api/validators"
	"github.com/otka-dev/otka-backend/internal/commissions"
	"github.com/otka-dev/otka-backend/internal/documents"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// AdminCommissionReport aggregates commissions per partner for a month.
func AdminCommissionReport(svc *commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		month, err := validators.ParseQueryMonth(r, "month")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Aggregate(r.Context(), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"month":    month,
			"partners": rows,
		})
	}
}

// AdminCommissionExportCSV streams a monthly commission report as CSV.
func AdminCommissionExportCSV(svc *commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		month, err := validators.ParseQueryMonth(r, "month")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Aggregate(r.Context(), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body, err := documents.CommissionCSV(rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv"))
			return
		}

		responses.WriteFile(w, "text/csv", fmt.Sprintf("comisioane-%s.csv", month), body)
	}
}

// AdminCommissionExportPDF streams a monthly commission report as PDF.
func AdminCommissionExportPDF(svc *commissions.Service, renderer *documents.PDFRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || renderer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		month, err := validators.ParseQueryMonth(r, "month")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Aggregate(r.Context(), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body, err := renderer.CommissionPDF(month, rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf"))
			return
		}

		responses.WriteFile(w, "application/pdf", fmt.Sprintf("comisioane-%s.pdf", month), body)
	}
}

// PartnerCommissionBreakdown returns the acting partner's own commission view.
func PartnerCommissionBreakdown(svc *commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		report, err := svc.PartnerBreakdown(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// PartnerCommissionExportPDF streams the acting partner's breakdown as PDF.
func PartnerCommissionExportPDF(svc *commissions.Service, renderer *documents.PDFRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || renderer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		report, err := svc.PartnerBreakdown(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body, err := renderer.PartnerCommissionPDF(report)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf"))
			return
		}

		responses.WriteFile(w, "application/pdf", "comisioane-partener.pdf", body)
	}
}
