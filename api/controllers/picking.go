package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/api/middleware"
	"github.com/nanopro-wms/backend/api/responses"
	"github.com/nanopro-wms/backend/api/validators"
	"github.com/nanopro-wms/backend/internal/addresses"
	"github.com/nanopro-wms/backend/internal/picking"
	"github.com/nanopro-wms/backend/pkg/db/models"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
)

type pickBatchPayload struct {
	*models.PickBatch
	Progresso int               `json:"progresso"`
	Enderecos map[string]string `json:"enderecos,omitempty"`
}

// PickingCreate consolidates the selected orders into a new pick batch.
func PickingCreate(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		var body picking.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

// PickingList returns every open pick batch with its computed progress.
func PickingList(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		batches, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]picking.BatchView, 0, len(batches))
		for i := range batches {
			progresso, err := svc.Progress(r.Context(), &batches[i])
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			views = append(views, picking.BatchView{
				ID:        batches[i].ID.String(),
				Documento: batches[i].Documento,
				Nome:      batches[i].Nome,
				Armazem:   batches[i].Armazem,
				Status:    string(batches[i].Status),
				Urgencia:  string(batches[i].Urgencia),
				Progresso: progresso,
			})
		}
		responses.WriteSuccess(w, views)
	}
}

// PickingDetail returns one batch with progress and the warehouse slot of
// each item code.
func PickingDetail(svc picking.Service, addr addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		id, err := parseBatchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Find(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		progresso, err := svc.Progress(r.Context(), batch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := pickBatchPayload{PickBatch: batch, Progresso: progresso}
		if addr != nil {
			codigos := make([]string, 0, len(batch.Itens))
			for _, item := range batch.Itens {
				codigos = append(codigos, item.Codigo)
			}
			enderecos, err := addr.Lookup(r.Context(), codigos)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			payload.Enderecos = enderecos
		}
		responses.WriteSuccess(w, payload)
	}
}

// PickingClaim puts the batch under the caller's exclusive control.
func PickingClaim(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		id, err := parseBatchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		worker := middleware.WorkerFromContext(r.Context())
		if worker == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		batch, err := svc.Claim(r.Context(), id, worker)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// PickingRelease hands a claimed batch back to the pool.
func PickingRelease(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		id, err := parseBatchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		worker := middleware.WorkerFromContext(r.Context())
		if worker == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		if err := svc.Release(r.Context(), id, worker); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "released"})
	}
}

// PickingUpdateItem mutates one line item of a claimed batch.
func PickingUpdateItem(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		id, err := parseBatchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		codigo := strings.TrimSpace(chi.URLParam(r, "codigo"))
		if codigo == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Código do item obrigatório"))
			return
		}
		worker := middleware.WorkerFromContext(r.Context())
		if worker == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body picking.ItemUpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.UpdateItem(r.Context(), id, codigo, body, worker)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// PickingSend closes the pick stage and moves the batch to verification.
func PickingSend(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "picking service unavailable"))
			return
		}

		id, err := parseBatchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		worker := middleware.WorkerFromContext(r.Context())
		if worker == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body picking.SendInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verif, err := svc.SendToVerification(r.Context(), id, body, worker)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verif)
	}
}

func parseBatchID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
