package controllers

import (
	"net/http"
	"strings"

	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/api/validators"
	"github.com/otka-dev/otka-backend/internal/manualorders"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// ManualOrderCreate records a commission-bearing sale.
func ManualOrderCreate(svc *manualorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manual order service unavailable"))
			return
		}

		var payload manualorders.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ManualOrderList returns manual orders, optionally filtered by status.
func ManualOrderList(svc *manualorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manual order service unavailable"))
			return
		}

		var status *enums.ManualOrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseManualOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		limit, cursor, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.List(r.Context(), status, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newListEnvelope(rows, next))
	}
}
