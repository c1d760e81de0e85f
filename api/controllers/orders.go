package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nanopro-wms/backend/api/responses"
	"github.com/nanopro-wms/backend/api/validators"
	"github.com/nanopro-wms/backend/internal/imports"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
)

// 20 MB covers the largest spreadsheets the planning team exports.
const maxImportBytes = 20 << 20

// OrdersImport ingests an Excel spreadsheet of production orders.
func OrdersImport(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "imports service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Arquivo Excel inválido"))
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Arquivo obrigatório"))
			return
		}
		defer file.Close()

		summary, err := svc.Import(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

// OrdersList returns the staged orders grouped per production order.
func OrdersList(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "imports service unavailable"))
			return
		}

		groups, err := svc.ListGrouped(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

type setUrgencyRequest struct {
	Urgencia string `json:"urgencia" validate:"required"`
}

// OrdersSetUrgency changes the priority of one staged order.
func OrdersSetUrgency(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "imports service unavailable"))
			return
		}

		op := strings.TrimSpace(chi.URLParam(r, "op"))
		if op == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Ordem obrigatória"))
			return
		}

		var body setUrgencyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		urgencia, err := enums.ParseUrgency(strings.TrimSpace(body.Urgencia))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Urgência inválida"))
			return
		}

		if err := svc.SetUrgency(r.Context(), op, urgencia); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"op": op, "urgencia": string(urgencia)})
	}
}

// OrdersDelete removes a staged order before it enters a pick batch.
func OrdersDelete(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "imports service unavailable"))
			return
		}

		op := strings.TrimSpace(chi.URLParam(r, "op"))
		if op == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Ordem obrigatória"))
			return
		}

		if err := svc.Delete(r.Context(), op); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
