package controllers

import (
	"net/http"

	"github.com/nanopro-wms/backend/api/responses"
	"github.com/nanopro-wms/backend/api/validators"
	"github.com/nanopro-wms/backend/internal/addresses"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
)

// AddressUpsert records or replaces the warehouse slot of a product code.
func AddressUpsert(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "addresses service unavailable"))
			return
		}

		var body addresses.UpsertInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address, err := svc.Upsert(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, address)
	}
}

// AddressList returns every mapped slot.
func AddressList(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "addresses service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AddressDelete removes a slot mapping.
func AddressDelete(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "addresses service unavailable"))
			return
		}

		id, err := parseRecordID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addressLookupRequest struct {
	Codigos []string `json:"codigos" validate:"required,min=1"`
}

// AddressLookup resolves slots for a set of product codes in one call.
func AddressLookup(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "addresses service unavailable"))
			return
		}

		var body addressLookupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slots, err := svc.Lookup(r.Context(), body.Codigos)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, slots)
	}
}
