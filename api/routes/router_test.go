package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/nanopro-wms/backend/pkg/auth"
	"github.com/nanopro-wms/backend/pkg/auth/session"
	"github.com/nanopro-wms/backend/pkg/config"
	"github.com/nanopro-wms/backend/pkg/enums"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{ ok bool }

func (s stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "nanopro", ExpirationMinutes: 10},
	}
}

func TestRouterHealthIsPublic(t *testing.T) {
	handler := NewRouter(testConfig(), nil, stubPinger{}, stubPinger{}, stubSessions{ok: true}, nil, Services{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	handler := NewRouter(testConfig(), nil, stubPinger{}, stubPinger{}, stubSessions{ok: true}, nil, Services{})

	for _, path := range []string{"/api/v1/separacao", "/api/v1/conferencia", "/api/v1/historico"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s got %d", path, rec.Code)
		}
	}
}

func TestRouterAdminRoutesRejectOperators(t *testing.T) {
	cfg := testConfig()
	handler := NewRouter(cfg, nil, stubPinger{}, stubPinger{}, stubSessions{ok: true}, nil, Services{})

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Nome:   "Maria",
		Role:   enums.UserRoleOperador,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usuarios", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
