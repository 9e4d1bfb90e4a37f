package controllers

import (
	"net/http"
	"strings"

	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/api/validators"
	"github.com/otka-dev/otka-backend/internal/partners"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

type partnerRegisterRequest struct {
	CompanyName  string  `json:"company_name" validate:"required"`
	VATID        string  `json:"vat_id" validate:"required"`
	ContactName  string  `json:"contact_name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone,omitempty"`
	BusinessType *string `json:"business_type,omitempty"`
	Address      *string `json:"address,omitempty"`
	AnnualVolume *string `json:"annual_volume,omitempty"`
	Motivation   *string `json:"motivation,omitempty"`
}

// PartnerRegister accepts a public partnership application.
func PartnerRegister(svc *partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		var payload partnerRegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Register(r.Context(), partners.RegisterInput{
			CompanyName:  payload.CompanyName,
			VATID:        payload.VATID,
			ContactName:  payload.ContactName,
			Email:        payload.Email,
			Phone:        payload.Phone,
			BusinessType: payload.BusinessType,
			Address:      payload.Address,
			AnnualVolume: payload.AnnualVolume,
			Motivation:   payload.Motivation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// AdminPartnerRequestList returns partnership applications for review.
func AdminPartnerRequestList(svc *partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner service unavailable"))
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))
		rows, err := svc.ListRequests(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
