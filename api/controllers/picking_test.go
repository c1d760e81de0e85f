package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nanopro-wms/backend/api/middleware"
	"github.com/nanopro-wms/backend/internal/picking"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	"github.com/nanopro-wms/backend/pkg/types"
)

type stubPickingService struct {
	batch *models.PickBatch

	claimedID     uuid.UUID
	claimedWorker string
	updatedCodigo string
	updatedInput  picking.ItemUpdateInput
}

func (s *stubPickingService) Create(ctx context.Context, input picking.CreateInput) (*models.PickBatch, error) {
	return s.batch, nil
}

func (s *stubPickingService) List(ctx context.Context) ([]models.PickBatch, error) {
	return []models.PickBatch{*s.batch}, nil
}

func (s *stubPickingService) Find(ctx context.Context, id uuid.UUID) (*models.PickBatch, error) {
	return s.batch, nil
}

func (s *stubPickingService) Progress(ctx context.Context, batch *models.PickBatch) (int, error) {
	return 50, nil
}

func (s *stubPickingService) Claim(ctx context.Context, id uuid.UUID, worker string) (*models.PickBatch, error) {
	s.claimedID = id
	s.claimedWorker = worker
	return s.batch, nil
}

func (s *stubPickingService) Release(ctx context.Context, id uuid.UUID, worker string) error {
	return nil
}

func (s *stubPickingService) UpdateItem(ctx context.Context, id uuid.UUID, codigo string, input picking.ItemUpdateInput, worker string) (*models.PickBatch, error) {
	s.updatedCodigo = codigo
	s.updatedInput = input
	return s.batch, nil
}

func (s *stubPickingService) SendToVerification(ctx context.Context, id uuid.UUID, input picking.SendInput, worker string) (*models.VerificationBatch, error) {
	return &models.VerificationBatch{}, nil
}

func pickingTestBatch() *models.PickBatch {
	return &models.PickBatch{
		ID:       uuid.New(),
		Nome:     "OP 100 - 105",
		Armazem:  "CD-01",
		Status:   enums.BatchStatusPendente,
		Urgencia: enums.UrgencyAlta,
		Itens: types.LineItems{
			{Codigo: "PROD-A", Descricao: "Parafuso", Quantidade: 10},
		},
	}
}

func serveWithWorker(t *testing.T, router chi.Router, req *http.Request, worker string) *httptest.ResponseRecorder {
	t.Helper()
	if worker != "" {
		req = req.WithContext(middleware.WithWorker(req.Context(), worker))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPickingClaimRequiresWorkerContext(t *testing.T) {
	svc := &stubPickingService{batch: pickingTestBatch()}
	router := chi.NewRouter()
	router.Post("/separacao/{id}/assumir", PickingClaim(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/separacao/"+svc.batch.ID.String()+"/assumir", nil)
	rec := serveWithWorker(t, router, req, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestPickingClaimForwardsWorker(t *testing.T) {
	svc := &stubPickingService{batch: pickingTestBatch()}
	router := chi.NewRouter()
	router.Post("/separacao/{id}/assumir", PickingClaim(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/separacao/"+svc.batch.ID.String()+"/assumir", nil)
	rec := serveWithWorker(t, router, req, "Maria")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.claimedWorker != "Maria" {
		t.Fatalf("expected worker Maria got %q", svc.claimedWorker)
	}
	if svc.claimedID != svc.batch.ID {
		t.Fatalf("expected id %s got %s", svc.batch.ID, svc.claimedID)
	}
}

func TestPickingClaimRejectsMalformedID(t *testing.T) {
	svc := &stubPickingService{batch: pickingTestBatch()}
	router := chi.NewRouter()
	router.Post("/separacao/{id}/assumir", PickingClaim(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/separacao/not-a-uuid/assumir", nil)
	rec := serveWithWorker(t, router, req, "Maria")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPickingUpdateItemForwardsPayload(t *testing.T) {
	svc := &stubPickingService{batch: pickingTestBatch()}
	router := chi.NewRouter()
	router.Patch("/separacao/{id}/itens/{codigo}", PickingUpdateItem(svc, nil))

	body, _ := json.Marshal(map[string]any{
		"separado": true,
		"composicao": []map[string]any{
			{"op": "100", "qtd_separada": 4.0, "concluido": true},
		},
	})
	req := httptest.NewRequest(http.MethodPatch, "/separacao/"+svc.batch.ID.String()+"/itens/PROD-A", bytes.NewReader(body))
	rec := serveWithWorker(t, router, req, "Maria")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updatedCodigo != "PROD-A" {
		t.Fatalf("expected codigo PROD-A got %q", svc.updatedCodigo)
	}
	if svc.updatedInput.Separado == nil || !*svc.updatedInput.Separado {
		t.Fatalf("expected separado=true to reach the service")
	}
	if len(svc.updatedInput.Composicao) != 1 || svc.updatedInput.Composicao[0].OP != "100" {
		t.Fatalf("expected composition entry for OP 100, got %+v", svc.updatedInput.Composicao)
	}
}

func TestPickingListAttachesProgress(t *testing.T) {
	svc := &stubPickingService{batch: pickingTestBatch()}
	router := chi.NewRouter()
	router.Get("/separacao", PickingList(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/separacao", nil)
	rec := serveWithWorker(t, router, req, "Maria")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data []picking.BatchView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one batch got %d", len(envelope.Data))
	}
	if envelope.Data[0].Progresso != 50 {
		t.Fatalf("expected progresso 50 got %d", envelope.Data[0].Progresso)
	}
}
