package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nanopro-wms/backend/api/controllers"
	"github.com/nanopro-wms/backend/api/middleware"
	"github.com/nanopro-wms/backend/internal/addresses"
	internalauth "github.com/nanopro-wms/backend/internal/auth"
	"github.com/nanopro-wms/backend/internal/blacklist"
	"github.com/nanopro-wms/backend/internal/history"
	"github.com/nanopro-wms/backend/internal/imports"
	"github.com/nanopro-wms/backend/internal/picking"
	"github.com/nanopro-wms/backend/internal/realtime"
	"github.com/nanopro-wms/backend/internal/transfers"
	"github.com/nanopro-wms/backend/internal/users"
	"github.com/nanopro-wms/backend/internal/verification"
	"github.com/nanopro-wms/backend/pkg/auth/session"
	"github.com/nanopro-wms/backend/pkg/config"
	"github.com/nanopro-wms/backend/pkg/logger"
	"github.com/nanopro-wms/backend/pkg/metrics"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth         internalauth.Service
	Users        users.Service
	Imports      imports.Service
	Picking      picking.Service
	Verification verification.Service
	History      history.Service
	Blacklist    blacklist.Service
	Addresses    addresses.Service
	Transfers    transfers.Service
	Hub          *realtime.Hub
}

type pinger interface {
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP, redisP pinger,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	if httpMetrics == nil {
		httpMetrics = metrics.NewHTTPMetrics(nil)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		httpMetrics.Middleware,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Get("/ws", controllers.RealtimeWS(svcs.Hub, logg))

		r.Route("/ordens", func(r chi.Router) {
			r.Post("/importar", controllers.OrdersImport(svcs.Imports, logg))
			r.Get("/", controllers.OrdersList(svcs.Imports, logg))
			r.Patch("/{op}/urgencia", controllers.OrdersSetUrgency(svcs.Imports, logg))
			r.Delete("/{op}", controllers.OrdersDelete(svcs.Imports, logg))
		})

		r.Route("/separacao", func(r chi.Router) {
			r.Post("/", controllers.PickingCreate(svcs.Picking, logg))
			r.Get("/", controllers.PickingList(svcs.Picking, logg))
			r.Get("/{id}", controllers.PickingDetail(svcs.Picking, svcs.Addresses, logg))
			r.Post("/{id}/assumir", controllers.PickingClaim(svcs.Picking, logg))
			r.Post("/{id}/liberar", controllers.PickingRelease(svcs.Picking, logg))
			r.Patch("/{id}/itens/{codigo}", controllers.PickingUpdateItem(svcs.Picking, logg))
			r.Post("/{id}/enviar", controllers.PickingSend(svcs.Picking, logg))
		})

		r.Route("/conferencia", func(r chi.Router) {
			r.Get("/", controllers.VerificationList(svcs.Verification, logg))
			r.Get("/{id}", controllers.VerificationDetail(svcs.Verification, logg))
			r.Post("/{id}/assumir", controllers.VerificationClaim(svcs.Verification, logg))
			r.Post("/{id}/liberar", controllers.VerificationRelease(svcs.Verification, logg))
			r.Patch("/{id}/itens/{codigo}", controllers.VerificationUpdateItem(svcs.Verification, logg))
			r.Post("/{id}/finalizar", controllers.VerificationFinalize(svcs.Verification, logg))
			r.Post("/{id}/reverter", controllers.VerificationRevert(svcs.Verification, logg))
		})

		r.Route("/historico", func(r chi.Router) {
			r.Get("/", controllers.HistoryList(svcs.History, logg))
			r.Get("/{id}", controllers.HistoryDetail(svcs.History, logg))
			r.With(middleware.RequireAdmin(logg)).Delete("/{id}", controllers.HistoryDelete(svcs.History, logg))
		})

		r.Route("/blacklist", func(r chi.Router) {
			r.Post("/", controllers.BlacklistCreate(svcs.Blacklist, logg))
			r.Get("/", controllers.BlacklistList(svcs.Blacklist, logg))
			r.Patch("/{id}", controllers.BlacklistUpdate(svcs.Blacklist, logg))
			r.Delete("/{id}", controllers.BlacklistDelete(svcs.Blacklist, logg))
		})

		r.Route("/enderecos", func(r chi.Router) {
			r.Post("/", controllers.AddressUpsert(svcs.Addresses, logg))
			r.Get("/", controllers.AddressList(svcs.Addresses, logg))
			r.Post("/lookup", controllers.AddressLookup(svcs.Addresses, logg))
			r.Delete("/{id}", controllers.AddressDelete(svcs.Addresses, logg))
		})

		r.Route("/transferencias", func(r chi.Router) {
			r.Post("/", controllers.TransferCreate(svcs.Transfers, logg))
			r.Get("/", controllers.TransferList(svcs.Transfers, logg))
			r.Patch("/{id}/status", controllers.TransferUpdateStatus(svcs.Transfers, logg))
		})

		r.Route("/usuarios", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/", controllers.UserCreate(svcs.Users, logg))
			r.Get("/", controllers.UserList(svcs.Users, logg))
			r.Patch("/{id}", controllers.UserUpdate(svcs.Users, logg))
			r.Delete("/{id}", controllers.UserDelete(svcs.Users, logg))
		})
	})

	return r
}
