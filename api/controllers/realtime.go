package controllers

import (
	"net/http"

	"github.com/nanopro-wms/backend/internal/realtime"
	"github.com/nanopro-wms/backend/pkg/logger"
)

// RealtimeWS upgrades the connection and subscribes it to change events.
func RealtimeWS(hub *realtime.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		realtime.ServeWS(hub, logg, w, r)
	}
}
