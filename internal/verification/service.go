package verification

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// DenylistSource reports the do-not-pick product codes.
type DenylistSource interface {
	Denylist(ctx context.Context) (progress.Denylist, error)
}

// HistoryWriter upserts the history snapshot produced by finalize.
type HistoryWriter interface {
	UpsertTx(tx *gorm.DB, record *models.HistoryRecord) error
}

// PickWriter inserts the pick batch produced by the revert transition.
type PickWriter interface {
	CreateTx(tx *gorm.DB, batch *models.PickBatch) error
}

// Service drives the verification stage: the advisory claim, per-order
// confirmations, finalize into history and revert back to picking.
type Service interface {
	List(ctx context.Context) ([]models.VerificationBatch, error)
	Find(ctx context.Context, id uuid.UUID) (*models.VerificationBatch, error)
	Progress(ctx context.Context, batch *models.VerificationBatch) (int, error)
	Claim(ctx context.Context, id uuid.UUID, worker string) (*models.VerificationBatch, error)
	Release(ctx context.Context, id uuid.UUID, worker string) error
	UpdateItem(ctx context.Context, id uuid.UUID, codigo string, input ItemUpdateInput, worker string) (*models.VerificationBatch, error)
	Finalize(ctx context.Context, id uuid.UUID, input FinalizeInput, worker string) (*models.HistoryRecord, error)
	Revert(ctx context.Context, id uuid.UUID, input RevertInput, worker string) (*models.PickBatch, error)
}

// ServiceParams wires the collaborators of the verification service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Publisher changePublisher
	Denylist  DenylistSource
	History   HistoryWriter
	Picks     PickWriter
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher changePublisher
	denylist  DenylistSource
	history   HistoryWriter
	picks     PickWriter
	logg      *logger.Logger
}

// NewService builds the verification service.
func NewService(params ServiceParams) Service {
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		publisher: params.Publisher,
		denylist:  params.Denylist,
		history:   params.History,
		picks:     params.Picks,
		logg:      params.Logger,
	}
}

func (s *service) List(ctx context.Context) ([]models.VerificationBatch, error) {
	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar conferências")
	}
	return batches, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*models.VerificationBatch, error) {
	batch, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, "buscar conferência")
	}
	return batch, nil
}

func (s *service) Progress(ctx context.Context, batch *models.VerificationBatch) (int, error) {
	denied, err := s.denylist.Denylist(ctx)
	if err != nil {
		return 0, pkgerrors.Store(err, "ler blacklist")
	}
	return progress.ComputeVerification(batch.Itens, denied), nil
}

func (s *service) Claim(ctx context.Context, id uuid.UUID, worker string) (*models.VerificationBatch, error) {
	if strings.TrimSpace(worker) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nome do conferente obrigatório")
	}

	var claimed *models.VerificationBatch
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
		return s.publisher.Emit(ctx, tx, enums.TableConferencia, enums.ChangeUpdate, batch, nil)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "iniciar conferência")
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
		return s.publisher.Emit(ctx, tx, enums.TableConferencia, enums.ChangeUpdate, batch, nil)
	})
	if err != nil {
		return notFoundOrStore(err, "salvar conferência pendente")
	}
	return nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, codigo string, input ItemUpdateInput, worker string) (*models.VerificationBatch, error) {
	var updated *models.VerificationBatch
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
		return s.publisher.Emit(ctx, tx, enums.TableConferencia, enums.ChangeUpdate, batch, nil)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "atualizar item")
	}
	return updated, nil
}

func (s *service) Finalize(ctx context.Context, id uuid.UUID, input FinalizeInput, worker string) (*models.HistoryRecord, error) {
	if strings.TrimSpace(input.ConferidoPor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Responsável pela conferência obrigatório")
	}

	denied, err := s.denylist.Denylist(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "ler blacklist")
	}

	var record *models.HistoryRecord
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
			if !progress.VerificationItemDone(item) {
				pending = append(pending, item.Codigo)
			}
		}
		if len(pending) > 0 {
			return pkgerrors.IncompleteVerification(pending)
		}

		// The history snapshot records what actually shipped: the
		// requested quantity collapses onto the verified amount.
		itens := make(types.LineItems, len(batch.Itens))
		copy(itens, batch.Itens)
		for i := range itens {
			if denied[itens[i].Codigo] {
				continue
			}
			final := itens[i].SumSeparada()
			itens[i].Quantidade = final
			itens[i].QtdSeparada = final
		}

		record = &models.HistoryRecord{
			Documento:    batch.Documento,
			Nome:         batch.Nome,
			Armazem:      batch.Armazem,
			Ordens:       batch.Ordens,
			Itens:        itens,
			SeparadoPor:  batch.Responsavel,
			ConferidoPor: input.ConferidoPor,
		}
		if err := s.history.UpsertTx(tx, record); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.publisher.Emit(ctx, tx, enums.TableHistorico, enums.ChangeInsert, record, nil); err != nil {
			return err
		}
		return s.publisher.Emit(ctx, tx, enums.TableConferencia, enums.ChangeDelete, nil, batch)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "finalizar conferência")
	}
	return record, nil
}

func (s *service) Revert(ctx context.Context, id uuid.UUID, input RevertInput, worker string) (*models.PickBatch, error) {
	if !input.Confirmado {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Confirmação obrigatória para reverter a conferência")
	}

	var restored *models.PickBatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batch, err := repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := requireClaim(batch.UsuarioAtual, worker); err != nil {
			return err
		}

		itens := resetForPicking(batch.Itens)
		restored = &models.PickBatch{
			Documento:   batch.Documento,
			Nome:        batch.Nome,
			Armazem:     batch.Armazem,
			Ordens:      batch.Ordens,
			Itens:       itens,
			Status:      enums.BatchStatusPendente,
			Urgencia:    batch.Urgencia,
			Responsavel: batch.Responsavel,
		}
		if err := s.picks.CreateTx(tx, restored); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.publisher.Emit(ctx, tx, enums.TableSeparacao, enums.ChangeInsert, restored, nil); err != nil {
			return err
		}
		return s.publisher.Emit(ctx, tx, enums.TableConferencia, enums.ChangeDelete, nil, batch)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, notFoundOrStore(err, "reverter conferência")
	}
	return restored, nil
}

// resetForPicking clears the verification confirmations and reopens the
// transfer flags so the batch re-enters separacao as editable work. The
// requested quantity is restored from the pre-verification snapshot.
func resetForPicking(itens types.LineItems) types.LineItems {
	out := make(types.LineItems, len(itens))
	copy(out, itens)
	for i := range out {
		out[i].OK = false
		out[i].Transferido = false
		if out[i].OriginalSolicitado != nil {
			out[i].Quantidade = *out[i].OriginalSolicitado
		}
		entries := make([]types.CompositionEntry, len(out[i].Composicao))
		copy(entries, out[i].Composicao)
		for j := range entries {
			entries[j].Concluido = false
			entries[j].OKConf = false
			entries[j].TRConf = false
			entries[j].FaltaConf = false
			entries[j].MotivoDivergencia = ""
		}
		out[i].Composicao = entries
	}
	return out
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
	if input.OK != nil {
		item.OK = *input.OK
	}
	if input.Falta != nil {
		item.Falta = *input.Falta
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
			if entry.OKConf != nil {
				item.Composicao[i].OKConf = *entry.OKConf
			}
			if entry.TRConf != nil {
				item.Composicao[i].TRConf = *entry.TRConf
			}
			if entry.FaltaConf != nil {
				item.Composicao[i].FaltaConf = *entry.FaltaConf
			}
			if entry.MotivoDivergencia != nil {
				item.Composicao[i].MotivoDivergencia = *entry.MotivoDivergencia
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
