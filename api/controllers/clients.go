package controllers

import (
	"net/http"
	"strings"

	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/api/validators"
	"github.com/otka-dev/otka-backend/internal/clients"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// ClientCreate registers a billing client.
func ClientCreate(svc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		var payload clients.UpsertInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

// ClientUpdate edits a billing client.
func ClientUpdate(svc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clients.UpsertInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

// ClientGet returns one billing client.
func ClientGet(svc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

// ClientList returns billing clients, optionally filtered by a search term.
func ClientList(svc *clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}

		search := strings.TrimSpace(r.URL.Query().Get("search"))
		rows, err := svc.List(r.Context(), search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
