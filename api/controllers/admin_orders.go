package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/otka-dev/otka-backend/api/middleware"
	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/api/validators"
	"github.com/otka-dev/otka-backend/internal/documents"
	"github.com/otka-dev/otka-backend/internal/partnerorders"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func parseOrderStatusFilter(r *http.Request) (*enums.PartnerOrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParsePartnerOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
	}
	return &status, nil
}

// AdminOrderList returns all partner orders, optionally filtered by status.
func AdminOrderList(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		status, err := parseOrderStatusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, cursor, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, next, err := svc.AdminList(r.Context(), status, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newListEnvelope(orders, next))
	}
}

// AdminOrderGet returns any partner order by id.
func AdminOrderGet(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type adminOrderUpdateRequest struct {
	Status       *string `json:"status,omitempty"`
	AdminNotes   *string `json:"adminNotes,omitempty"`
	AgreementURL *string `json:"agreementUrl,omitempty"`
	ProformaURL  *string `json:"proformaUrl,omitempty"`
}

// AdminOrderUpdate advances an order through the status machine and edits
// admin-side annotations.
func AdminOrderUpdate(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminOrderUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := partnerorders.AdminUpdateInput{
			OrderID:      id,
			ActorEmail:   middleware.EmailFromContext(r.Context()),
			AdminNotes:   payload.AdminNotes,
			AgreementURL: payload.AgreementURL,
			ProformaURL:  payload.ProformaURL,
		}
		if payload.Status != nil {
			status, parseErr := enums.ParsePartnerOrderStatus(*payload.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		order, err := svc.AdminUpdate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminOrderExportXLSX streams the filtered order book as a spreadsheet.
func AdminOrderExportXLSX(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		status, err := parseOrderStatusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.AdminListAll(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body, err := documents.PartnerOrdersXLSX(orders)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render spreadsheet"))
			return
		}

		filename := fmt.Sprintf("comenzi-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
		responses.WriteFile(w, xlsxContentType, filename, body)
	}
}
