package history

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changePublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, table enums.StoreTable, eventType enums.ChangeEventType, newRow, oldRow any) error
}

// TransferPruner removes the transfer-tracking rows tied to a deleted
// snapshot's production orders.
type TransferPruner interface {
	DeleteByOpsTx(tx *gorm.DB, ops []string) error
}

// Service exposes the finalized-batch archive.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters Filters) (*RecordList, error)
	Find(ctx context.Context, id uuid.UUID) (*models.HistoryRecord, error)
	// Delete removes a snapshot and its transfer-tracking rows. Admin only,
	// enforced at the route layer.
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher changePublisher
	transfers TransferPruner
}

// NewService builds the history service.
func NewService(repo Repository, tx txRunner, publisher changePublisher, transfers TransferPruner) Service {
	return &service{repo: repo, tx: tx, publisher: publisher, transfers: transfers}
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*RecordList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar histórico")
	}
	return list, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*models.HistoryRecord, error) {
	record, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Registro não encontrado")
		}
		return nil, pkgerrors.Store(err, "buscar histórico")
	}
	return record, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		if s.transfers != nil {
			if err := s.transfers.DeleteByOpsTx(tx, record.Ordens); err != nil {
				return err
			}
		}
		return s.publisher.Emit(ctx, tx, enums.TableHistorico, enums.ChangeDelete, nil, record)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Registro não encontrado")
		}
		return pkgerrors.Store(err, "excluir histórico")
	}
	return nil
}
