package picking

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/internal/consolidation"
	"github.com/nanopro-wms/backend/internal/progress"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
	"github.com/nanopro-wms/backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changePublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, table enums.StoreTable, eventType enums.ChangeEventType, newRow, oldRow any) error
}

// OrderSource supplies the imported raw lines and per-order urgencies.
type OrderSource interface {
	RawLinesFor(ctx context.Context, ops []string) ([]consolidation.RawLine, map[string]enums.Urgency, error)
}

// DenylistSource reports the do-not-pick product codes.
type DenylistSource interface {
	Denylist(ctx context.Context) (progress.Denylist, error)
}

// OrderIndexReader exposes the order ids live at one workflow stage.
type OrderIndexReader interface {
	ActiveOrderIDs(ctx context.Context) (map[string]bool, error)
}

// VerificationWriter inserts the verification batch produced by the
// send-to-verification transition.
type VerificationWriter interface {
	CreateTx(tx *gorm.DB, batch *models.VerificationBatch) error
}

// TransferMarker flips downstream transfer-tracking records to the
// verification stage. Best-effort: failures never roll the transition back.
type TransferMarker interface {
	MarkConferencia(ctx context.Context, ops []string, documento string) error
}

// Service drives the pick-stage workflow: consolidation, the advisory claim,
// item edits and the hand-off to verification.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PickBatch, error)
	List(ctx context.Context) ([]models.PickBatch, error)
	Find(ctx context.Context, id uuid.UUID) (*models.PickBatch, error)
	Progress(ctx context.Context, batch *models.PickBatch) (int, error)
	Claim(ctx context.Context, id uuid.UUID, worker string) (*models.PickBatch, error)
	Release(ctx context.Context, id uuid.UUID, worker string) error
	UpdateItem(ctx context.Context, id uuid.UUID, codigo string, input ItemUpdateInput, worker string) (*models.PickBatch, error)
	SendToVerification(ctx context.Context, id uuid.UUID, input SendInput, worker string) (*models.VerificationBatch, error)
}

// ServiceParams wires the collaborators of the picking service.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Publisher    changePublisher
	Orders       OrderSource
	Denylist     DenylistSource
	Verification VerificationWriter
	VerifIndex   OrderIndexReader
	HistoryIndex OrderIndexReader
	Transfers    TransferMarker
	Logger       *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher changePublisher
	orders    OrderSource
	denylist  DenylistSource
	verif     VerificationWriter
	verifIdx  OrderIndexReader
	histIdx   OrderIndexReader
	transfers TransferMarker
	logg      *logger.Logger
}

// NewService builds the picking service.
func NewService(params ServiceParams) Service {
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		publisher: params.Publisher,
		orders:    params.Orders,
		denylist:  params.Denylist,
		verif:     params.Verification,
		verifIdx:  params.VerifIndex,
		histIdx:   params.HistoryIndex,
		transfers: params.Transfers,
		logg:      params.Logger,
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PickBatch, error) {
	rawLines, urgencies, err := s.orders.RawLinesFor(ctx, input.SelectedOps)
	if err != nil {
		return nil, pkgerrors.Store(err, "ler ordens importadas")
	}

	index, err := s.stageIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := consolidation.CheckDuplicates(input.SelectedOps, index); err != nil {
		return nil, err
	}

	label := consolidation.RangeLabel
	if input.UseLotLabel {
		label = consolidation.LotLabel
	}
	draft, err := consolidation.Consolidate(input.SelectedOps, rawLines, consolidation.Options{
		Armazem:     input.Armazem,
		Documento:   input.Documento,
		Responsavel: input.Responsavel,
		Label:       label,
		Urgencies:   urgencies,
	})
	if err != nil {
		return nil, err
	}

	batch := &models.PickBatch{
		Documento:   draft.Documento,
		Nome:        draft.Nome,
		Armazem:     draft.Armazem,
		Ordens:      draft.Ordens,
		Itens:       draft.Itens,
		Status:      draft.Status,
		Urgencia:    draft.Urgencia,
		Responsavel: draft.Responsavel,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, batch); err != nil {
			return err
		}
		return s.publisher.Emit(ctx, tx, enums.TableSeparacao, enums.ChangeInsert, batch, nil)
	})
	if err != nil {
		return nil, pkgerrors.Store(err, "criar separação")
	}
	return batch, nil
}

func (s *service) List(ctx context.Context) ([]models.PickBatch, error) {
	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar separações")
	}
	return batches, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*models.PickBatch, error) {
	batch, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, "buscar separação")
	}
	return batch, nil
}

func (s *service) Progress(ctx context.Context, batch *models.PickBatch) (int, error) {
	denied, err := s.denylist.Denylist(ctx)
	if err != nil {
		return 0, pkgerrors.Store(err, "ler blacklist")
	}
	return progress.Compute(batch.Itens, denied), nil
}

func (s *service) Claim(ctx context.Context, id uuid.UUID, worker string) (*models.PickBatch, error) {
	if strings.TrimSpace(worker) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nome do separador obrigatório")
	}

	var claimed *models.PickBatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		taken, err := repo.TryClaim(ctx, id, worker)
		if err != nil {
			return err
		}
		batch, err := repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if !taken {
			holder := ""
			if batch.UsuarioAtual != nil {
				holder = *batch.UsuarioAtual
			}
			return pkgerrors.LockedByOther(holder)
		}
		claimed = batch
		return s.publisher.Emit(ctx, tx, enums.TableSeparacao, enums.ChangeUpdate, batch, nil)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "iniciar separação")
	}
	return claimed, nil
}

func (s *service) Release(ctx context.Context, id uuid.UUID, worker string) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		released, err := repo.ReleaseClaim(ctx, id, worker)
		if err != nil {
			return err
		}
		if !released {
			return gorm.ErrRecordNotFound
		}
		batch, err := repo.Find(ctx, id)
		if err != nil {
			return err
		}
		return s.publisher.Emit(ctx, tx, enums.TableSeparacao, enums.ChangeUpdate, batch, nil)
	})
	if err != nil {
		return notFoundOrStore(err, "salvar separação pendente")
	}
	return nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, codigo string, input ItemUpdateInput, worker string) (*models.PickBatch, error) {
	var updated *models.PickBatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batch, err := repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := requireClaim(batch.UsuarioAtual, worker); err != nil {
			return err
		}

		item := batch.Itens.Find(codigo)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Item não encontrado no lote")
		}
		applyItemUpdate(item, input)

		if err := repo.UpdateItems(ctx, id, batch.Itens); err != nil {
			return err
		}
		updated = batch
		return s.publisher.Emit(ctx, tx, enums.TableSeparacao, enums.ChangeUpdate, batch, nil)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "atualizar item")
	}
	return updated, nil
}

func (s *service) SendToVerification(ctx context.Context, id uuid.UUID, input SendInput, worker string) (*models.VerificationBatch, error) {
	if strings.TrimSpace(input.Documento) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Documento de transferência obrigatório")
	}
	if strings.TrimSpace(input.Responsavel) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Responsável pela separação obrigatório")
	}

	denied, err := s.denylist.Denylist(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "ler blacklist")
	}

	var created *models.VerificationBatch
	var ordens []string
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batch, err := repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := requireClaim(batch.UsuarioAtual, worker); err != nil {
			return err
		}

		var pending []string
		for _, item := range batch.Itens {
			if denied[item.Codigo] || item.Falta {
				continue
			}
			if !item.Separado || !item.Transferido {
				pending = append(pending, item.Codigo)
			}
		}
		if len(pending) > 0 {
			return pkgerrors.IncompletePick(pending)
		}

		itens := batch.Itens
		for i := range itens {
			if itens[i].OriginalSolicitado == nil {
				original := itens[i].Quantidade
				itens[i].OriginalSolicitado = &original
			}
		}

		verification := &models.VerificationBatch{
			Documento:   input.Documento,
			Nome:        batch.Nome,
			Armazem:     batch.Armazem,
			Ordens:      batch.Ordens,
			Itens:       itens,
			Status:      enums.BatchStatusPendente,
			Urgencia:    batch.Urgencia,
			Responsavel: input.Responsavel,
		}
		if err := s.verif.CreateTx(tx, verification); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.publisher.Emit(ctx, tx, enums.TableConferencia, enums.ChangeInsert, verification, nil); err != nil {
			return err
		}
		if err := s.publisher.Emit(ctx, tx, enums.TableSeparacao, enums.ChangeDelete, nil, batch); err != nil {
			return err
		}
		created = verification
		ordens = batch.Ordens
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "enviar para conferência")
	}

	// Downstream transfer-tracking markers are best-effort: the batch has
	// already moved, so a failure here is surfaced in logs only.
	if s.transfers != nil {
		if err := s.transfers.MarkConferencia(ctx, ordens, input.Documento); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "documento", input.Documento), "failed to mark transfer records")
		}
	}
	return created, nil
}

func (s *service) stageIndex(ctx context.Context) (consolidation.StageIndex, error) {
	pick, err := s.repo.ActiveOrderIDs(ctx)
	if err != nil {
		return consolidation.StageIndex{}, pkgerrors.Store(err, "indexar separações")
	}
	verif, err := s.verifIdx.ActiveOrderIDs(ctx)
	if err != nil {
		return consolidation.StageIndex{}, pkgerrors.Store(err, "indexar conferências")
	}
	hist, err := s.histIdx.ActiveOrderIDs(ctx)
	if err != nil {
		return consolidation.StageIndex{}, pkgerrors.Store(err, "indexar histórico")
	}
	return consolidation.StageIndex{
		Separacao:   pick,
		Conferencia: verif,
		Historico:   hist,
	}, nil
}

func requireClaim(holder *string, worker string) error {
	current := ""
	if holder != nil {
		current = *holder
	}
	if current == "" || current != worker {
		return pkgerrors.LockedByOther(current)
	}
	return nil
}

func applyItemUpdate(item *types.LineItem, input ItemUpdateInput) {
	if input.Separado != nil {
		item.Separado = *input.Separado
	}
	if input.Transferido != nil {
		item.Transferido = *input.Transferido
	}
	if input.Falta != nil {
		item.Falta = *input.Falta
	}
	if input.OK != nil {
		item.OK = *input.OK
	}
	if input.Obs != nil {
		item.Obs = *input.Obs
	}
	for _, entry := range input.Composicao {
		for i := range item.Composicao {
			if item.Composicao[i].OP != entry.OP {
				continue
			}
			if entry.QtdSeparada != nil {
				item.Composicao[i].QtdSeparada = *entry.QtdSeparada
			}
			if entry.Concluido != nil {
				item.Composicao[i].Concluido = *entry.Concluido
			}
			if entry.Obs != nil {
				item.Composicao[i].Obs = *entry.Obs
			}
		}
	}
	item.QtdSeparada = item.SumSeparada()
}

func notFoundOrStore(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Lote não encontrado")
	}
	return pkgerrors.Store(err, op)
}
