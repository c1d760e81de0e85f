package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nanopro-wms/backend/api/middleware"
	"github.com/nanopro-wms/backend/api/responses"
	"github.com/nanopro-wms/backend/api/validators"
	"github.com/nanopro-wms/backend/internal/verification"
	"github.com/nanopro-wms/backend/pkg/db/models"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
)

type verificationBatchView struct {
	ID          string `json:"id"`
	Documento   string `json:"documento"`
	Nome        string `json:"nome"`
	Armazem     string `json:"armazem"`
	Status      string `json:"status"`
	Urgencia    string `json:"urgencia"`
	Responsavel string `json:"responsavel"`
	Progresso   int    `json:"progresso"`
}

type verificationBatchPayload struct {
	*models.VerificationBatch
	Progresso int `json:"progresso"`
}

// VerificationList returns every batch awaiting conference with its progress.
func VerificationList(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		batches, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]verificationBatchView, 0, len(batches))
		for i := range batches {
			progresso, err := svc.Progress(r.Context(), &batches[i])
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			views = append(views, verificationBatchView{
				ID:          batches[i].ID.String(),
				Documento:   batches[i].Documento,
				Nome:        batches[i].Nome,
				Armazem:     batches[i].Armazem,
				Status:      string(batches[i].Status),
				Urgencia:    string(batches[i].Urgencia),
				Responsavel: batches[i].Responsavel,
				Progresso:   progresso,
			})
		}
		responses.WriteSuccess(w, views)
	}
}

// VerificationDetail returns one conference batch with computed progress.
func VerificationDetail(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
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
		responses.WriteSuccess(w, verificationBatchPayload{VerificationBatch: batch, Progresso: progresso})
	}
}

// VerificationClaim puts the batch under the caller's exclusive control.
func VerificationClaim(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
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

// VerificationRelease hands a claimed batch back to the pool.
func VerificationRelease(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
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

// VerificationUpdateItem records conference flags on one line item.
func VerificationUpdateItem(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
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

		var body verification.ItemUpdateInput
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

// VerificationFinalize closes the conference and writes the history snapshot.
func VerificationFinalize(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
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

		var body verification.FinalizeInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Finalize(r.Context(), id, body, worker)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// VerificationRevert sends a batch back to the pick stage.
func VerificationRevert(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
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

		var body verification.RevertInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Revert(r.Context(), id, body, worker)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}
