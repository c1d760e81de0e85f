package verification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/internal/progress"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/types"
)

type stubVerifRepo struct {
	batches map[uuid.UUID]*models.VerificationBatch
	deleted []uuid.UUID
}

func newStubVerifRepo(batches ...*models.VerificationBatch) *stubVerifRepo {
	repo := &stubVerifRepo{batches: make(map[uuid.UUID]*models.VerificationBatch)}
	for _, batch := range batches {
		if batch.ID == uuid.Nil {
			batch.ID = uuid.New()
		}
		repo.batches[batch.ID] = batch
	}
	return repo
}

func (s *stubVerifRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubVerifRepo) CreateTx(tx *gorm.DB, batch *models.VerificationBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	s.batches[batch.ID] = batch
	return nil
}

func (s *stubVerifRepo) List(ctx context.Context) ([]models.VerificationBatch, error) {
	out := make([]models.VerificationBatch, 0, len(s.batches))
	for _, batch := range s.batches {
		out = append(out, *batch)
	}
	return out, nil
}

func (s *stubVerifRepo) Find(ctx context.Context, id uuid.UUID) (*models.VerificationBatch, error) {
	batch, ok := s.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return batch, nil
}

func (s *stubVerifRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.batches, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubVerifRepo) UpdateItems(ctx context.Context, id uuid.UUID, itens types.LineItems) error {
	batch, ok := s.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	batch.Itens = itens
	return nil
}

func (s *stubVerifRepo) TryClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error) {
	batch, ok := s.batches[id]
	if !ok {
		return false, nil
	}
	if batch.UsuarioAtual != nil && *batch.UsuarioAtual != "" && *batch.UsuarioAtual != worker {
		return false, nil
	}
	batch.UsuarioAtual = &worker
	batch.Status = enums.BatchStatusEmAndamento
	return true, nil
}

func (s *stubVerifRepo) ReleaseClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error) {
	batch, ok := s.batches[id]
	if !ok {
		return false, nil
	}
	if batch.UsuarioAtual == nil || *batch.UsuarioAtual != worker {
		return false, nil
	}
	batch.UsuarioAtual = nil
	batch.Status = enums.BatchStatusPendente
	return true, nil
}

func (s *stubVerifRepo) ActiveOrderIDs(ctx context.Context) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, batch := range s.batches {
		for _, op := range batch.Ordens {
			ids[op] = true
		}
	}
	return ids, nil
}

type emittedEvent struct {
	table     enums.StoreTable
	eventType enums.ChangeEventType
}

type stubPublisher struct {
	events []emittedEvent
}

func (s *stubPublisher) Emit(ctx context.Context, tx *gorm.DB, table enums.StoreTable, eventType enums.ChangeEventType, newRow, oldRow any) error {
	s.events = append(s.events, emittedEvent{table: table, eventType: eventType})
	return nil
}

type stubDenylist struct {
	denied progress.Denylist
}

func (s *stubDenylist) Denylist(ctx context.Context) (progress.Denylist, error) {
	if s.denied == nil {
		return progress.Denylist{}, nil
	}
	return s.denied, nil
}

type stubHistoryWriter struct {
	record *models.HistoryRecord
}

func (s *stubHistoryWriter) UpsertTx(tx *gorm.DB, record *models.HistoryRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.record = record
	return nil
}

type stubPickWriter struct {
	created *models.PickBatch
}

func (s *stubPickWriter) CreateTx(tx *gorm.DB, batch *models.PickBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	s.created = batch
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type verifFixture struct {
	repo      *stubVerifRepo
	publisher *stubPublisher
	denylist  *stubDenylist
	history   *stubHistoryWriter
	picks     *stubPickWriter
	svc       Service
}

func newVerifFixture(batches ...*models.VerificationBatch) *verifFixture {
	f := &verifFixture{
		repo:      newStubVerifRepo(batches...),
		publisher: &stubPublisher{},
		denylist:  &stubDenylist{},
		history:   &stubHistoryWriter{},
		picks:     &stubPickWriter{},
	}
	f.svc = NewService(ServiceParams{
		Repo:      f.repo,
		Tx:        stubTxRunner{},
		Publisher: f.publisher,
		Denylist:  f.denylist,
		History:   f.history,
		Picks:     f.picks,
	})
	return f
}

func strptr(s string) *string { return &s }

func floatptr(f float64) *float64 { return &f }

func confirmedItem(codigo string, requested, verified float64) types.LineItem {
	return types.LineItem{
		Codigo:             codigo,
		Quantidade:         requested,
		QtdSeparada:        verified,
		Separado:           true,
		Transferido:        true,
		OK:                 true,
		OriginalSolicitado: floatptr(requested),
		Composicao: []types.CompositionEntry{{
			OP:          "100",
			Quantidade:  requested,
			QtdSeparada: verified,
			Concluido:   true,
			OKConf:      true,
			TRConf:      true,
		}},
	}
}

func heldBatch(worker string, itens types.LineItems) *models.VerificationBatch {
	return &models.VerificationBatch{
		ID:           uuid.New(),
		Documento:    "DOC-9",
		Nome:         "OP 100 - 101",
		Armazem:      "CD-01",
		Ordens:       []string{"100", "101"},
		Itens:        itens,
		Status:       enums.BatchStatusEmAndamento,
		Urgencia:     enums.UrgencyMedia,
		Responsavel:  "Joana",
		UsuarioAtual: strptr(worker),
	}
}

func TestClaimHeldByOther(t *testing.T) {
	batch := heldBatch("Maria", nil)
	f := newVerifFixture(batch)

	_, err := f.svc.Claim(context.Background(), batch.ID, "Pedro")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT got %v", err)
	}
	if typed.Message() != "Bloqueio: Em uso por Maria" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestUpdateItemRecordsConfirmations(t *testing.T) {
	batch := heldBatch("Pedro", types.LineItems{{
		Codigo:     "PROD-A",
		Quantidade: 10,
		Composicao: []types.CompositionEntry{{OP: "100", Quantidade: 10, QtdSeparada: 10}},
	}})
	f := newVerifFixture(batch)

	ok := true
	updated, err := f.svc.UpdateItem(context.Background(), batch.ID, "PROD-A", ItemUpdateInput{
		Composicao: []CompositionUpdateInput{{OP: "100", OKConf: &ok, TRConf: &ok}},
	}, "Pedro")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	entry := updated.Itens.Find("PROD-A").Composicao[0]
	if !entry.OKConf || !entry.TRConf {
		t.Fatalf("expected confirmations recorded got %+v", entry)
	}
}

func TestUpdateItemRequiresClaim(t *testing.T) {
	batch := heldBatch("Maria", types.LineItems{{Codigo: "PROD-A"}})
	f := newVerifFixture(batch)

	ok := true
	_, err := f.svc.UpdateItem(context.Background(), batch.ID, "PROD-A", ItemUpdateInput{OK: &ok}, "Pedro")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT got %v", err)
	}
}

func TestFinalizeBlocksUnconfirmedItems(t *testing.T) {
	item := confirmedItem("PROD-A", 10, 10)
	item.Composicao[0].TRConf = false
	batch := heldBatch("Pedro", types.LineItems{item})
	f := newVerifFixture(batch)

	_, err := f.svc.Finalize(context.Background(), batch.ID, FinalizeInput{ConferidoPor: "Pedro"}, "Pedro")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT got %v", err)
	}
}

func TestFinalizeBlocksShortageWithoutReason(t *testing.T) {
	item := confirmedItem("PROD-A", 10, 8)
	item.Composicao[0].FaltaConf = true
	batch := heldBatch("Pedro", types.LineItems{item})
	f := newVerifFixture(batch)

	_, err := f.svc.Finalize(context.Background(), batch.ID, FinalizeInput{ConferidoPor: "Pedro"}, "Pedro")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT got %v", err)
	}

	item.Composicao[0].MotivoDivergencia = "Caixa avariada"
	batch.Itens = types.LineItems{item}
	if _, err := f.svc.Finalize(context.Background(), batch.ID, FinalizeInput{ConferidoPor: "Pedro"}, "Pedro"); err != nil {
		t.Fatalf("expected success once the reason is recorded got %v", err)
	}
}

func TestFinalizeWritesHistorySnapshot(t *testing.T) {
	batch := heldBatch("Pedro", types.LineItems{confirmedItem("PROD-A", 15, 12)})
	f := newVerifFixture(batch)

	record, err := f.svc.Finalize(context.Background(), batch.ID, FinalizeInput{ConferidoPor: "Pedro"}, "Pedro")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if f.history.record == nil {
		t.Fatal("expected history upsert")
	}
	if record.Documento != "DOC-9" || record.SeparadoPor != "Joana" || record.ConferidoPor != "Pedro" {
		t.Fatalf("unexpected snapshot header %+v", record)
	}
	// The snapshot keeps what actually shipped, not what was requested.
	item := record.Itens.Find("PROD-A")
	if item.Quantidade != 12 || item.QtdSeparada != 12 {
		t.Fatalf("expected quantities collapsed to 12 got %v/%v", item.Quantidade, item.QtdSeparada)
	}
	if len(f.repo.deleted) != 1 {
		t.Fatal("expected verification batch deleted")
	}
	if len(f.publisher.events) != 2 {
		t.Fatalf("expected historico INSERT + conferencia DELETE got %+v", f.publisher.events)
	}
}

func TestFinalizeSkipsDeniedItems(t *testing.T) {
	unconfirmed := types.LineItem{Codigo: "PROD-B", Quantidade: 5}
	batch := heldBatch("Pedro", types.LineItems{confirmedItem("PROD-A", 10, 10), unconfirmed})
	f := newVerifFixture(batch)
	f.denylist.denied = progress.Denylist{"PROD-B": true}

	record, err := f.svc.Finalize(context.Background(), batch.ID, FinalizeInput{ConferidoPor: "Pedro"}, "Pedro")
	if err != nil {
		t.Fatalf("expected denied item to be skipped got %v", err)
	}
	// Denied items ride along untouched for audit.
	if got := record.Itens.Find("PROD-B").Quantidade; got != 5 {
		t.Fatalf("expected denied item untouched got %v", got)
	}
}

func TestRevertRequiresConfirmation(t *testing.T) {
	batch := heldBatch("Pedro", nil)
	f := newVerifFixture(batch)

	_, err := f.svc.Revert(context.Background(), batch.ID, RevertInput{}, "Pedro")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION got %v", err)
	}
}

func TestRevertRestoresPickBatch(t *testing.T) {
	item := confirmedItem("PROD-A", 15, 12)
	batch := heldBatch("Pedro", types.LineItems{item})
	f := newVerifFixture(batch)

	restored, err := f.svc.Revert(context.Background(), batch.ID, RevertInput{Confirmado: true}, "Pedro")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if f.picks.created == nil {
		t.Fatal("expected pick batch created")
	}
	if restored.Status != enums.BatchStatusPendente || restored.UsuarioAtual != nil {
		t.Fatalf("expected unclaimed pending batch got %+v", restored)
	}
	got := restored.Itens.Find("PROD-A")
	if got.OK || got.Transferido {
		t.Fatalf("expected item flags reopened got %+v", got)
	}
	if got.Quantidade != 15 {
		t.Fatalf("expected requested quantity restored got %v", got.Quantidade)
	}
	entry := got.Composicao[0]
	if entry.Concluido || entry.OKConf || entry.TRConf {
		t.Fatalf("expected entry confirmations cleared got %+v", entry)
	}
	if len(f.repo.deleted) != 1 {
		t.Fatal("expected verification batch deleted")
	}
}

func TestRevertDoesNotMutateStoredItems(t *testing.T) {
	item := confirmedItem("PROD-A", 15, 12)
	batch := heldBatch("Pedro", types.LineItems{item})
	f := newVerifFixture(batch)

	if _, err := f.svc.Revert(context.Background(), batch.ID, RevertInput{Confirmado: true}, "Pedro"); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !batch.Itens[0].OK {
		t.Fatal("expected source batch items untouched")
	}
}
