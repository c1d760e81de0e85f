package middleware

import (
	"net/http"

	"github.com/nanopro-wms/backend/api/responses"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
)

// RequireAdmin guards routes reserved for administrators.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRole(string(enums.UserRoleAdmin), logg)
}

func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
