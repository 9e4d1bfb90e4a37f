package controllers

import (
	"net/http"

	"github.com/otka-dev/otka-backend/api/middleware"
	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/api/validators"
	"github.com/otka-dev/otka-backend/internal/partnerorders"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

type partnerOrderRequest struct {
	PartnerNotes *string                   `json:"partnerNotes,omitempty"`
	Items        []partnerorders.ItemInput `json:"items" validate:"required,min=1,dive"`
}

// PartnerOrderCreate opens a draft order for the acting partner.
func PartnerOrderCreate(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		var payload partnerOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateDraft(r.Context(), partnerorders.CreateOrderInput{
			PartnerEmail: email,
			PartnerNotes: payload.PartnerNotes,
			Items:        payload.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// PartnerOrderList returns the acting partner's orders, newest first.
func PartnerOrderList(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		limit, cursor, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, next, err := svc.ListForPartner(r.Context(), email, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newListEnvelope(orders, next))
	}
}

// PartnerOrderGet returns one of the acting partner's orders.
func PartnerOrderGet(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForPartner(r.Context(), id, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// PartnerOrderReplaceItems swaps the item set of a draft order.
func PartnerOrderReplaceItems(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload partnerOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ReplaceItems(r.Context(), partnerorders.ReplaceItemsInput{
			OrderID:      id,
			PartnerEmail: email,
			PartnerNotes: payload.PartnerNotes,
			Items:        payload.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// PartnerOrderSubmit moves a draft into review.
func PartnerOrderSubmit(svc *partnerorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email := middleware.EmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner context missing"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), partnerorders.SubmitInput{
			OrderID:      id,
			PartnerEmail: email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
