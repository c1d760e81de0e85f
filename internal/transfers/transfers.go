package transfers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

// CreateInput registers a pending inter-branch transfer for one order.
type CreateInput struct {
	OP             string `json:"op" validate:"required"`
	Documento      string `json:"documento"`
	ArmazemOrigem  string `json:"armazem_origem"`
	ArmazemDestino string `json:"armazem_destino"`
}

// Repository defines persistence operations for the transferencias table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.TransferRecord) error
	List(ctx context.Context, status enums.TransferStatus) ([]models.TransferRecord, error)
	Find(ctx context.Context, id uuid.UUID) (*models.TransferRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus) error
	// MarkConferencia flips every pending record of the given orders to the
	// conferencia status and stamps the transfer document.
	MarkConferencia(ctx context.Context, ops []string, documento string) error
	DeleteByOpsTx(tx *gorm.DB, ops []string) error
}

// Service tracks inter-branch transfers downstream of the pick workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.TransferRecord, error)
	List(ctx context.Context, status enums.TransferStatus) ([]models.TransferRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus) (*models.TransferRecord, error)
	MarkConferencia(ctx context.Context, ops []string, documento string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transfer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.TransferRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) List(ctx context.Context, status enums.TransferStatus) ([]models.TransferRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.TransferRecord{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var records []models.TransferRecord
	err := query.Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.TransferRecord, error) {
	var record models.TransferRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.TransferRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) MarkConferencia(ctx context.Context, ops []string, documento string) error {
	if len(ops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.TransferRecord{}).
		Where("op IN ? AND status = ?", ops, enums.TransferStatusPendente).
		Updates(map[string]any{
			"status":    enums.TransferStatusConferencia,
			"documento": documento,
		}).Error
}

func (r *repository) DeleteByOpsTx(tx *gorm.DB, ops []string) error {
	if len(ops) == 0 {
		return nil
	}
	return tx.
		Where("op IN ?", ops).
		Delete(&models.TransferRecord{}).Error
}

type service struct {
	repo Repository
}

// NewService builds the transfer service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.TransferRecord, error) {
	if strings.TrimSpace(input.OP) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Ordem de produção obrigatória")
	}

	record := &models.TransferRecord{
		OP:             strings.TrimSpace(input.OP),
		Documento:      input.Documento,
		ArmazemOrigem:  input.ArmazemOrigem,
		ArmazemDestino: input.ArmazemDestino,
		Status:         enums.TransferStatusPendente,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Store(err, "criar transferência")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, status enums.TransferStatus) ([]models.TransferRecord, error) {
	if status != "" && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Status de transferência inválido")
	}
	records, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar transferências")
	}
	return records, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus) (*models.TransferRecord, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Status de transferência inválido")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Store(err, "atualizar transferência")
	}
	record, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Transferência não encontrada")
		}
		return nil, pkgerrors.Store(err, "buscar transferência")
	}
	return record, nil
}

func (s *service) MarkConferencia(ctx context.Context, ops []string, documento string) error {
	if err := s.repo.MarkConferencia(ctx, ops, documento); err != nil {
		return pkgerrors.Store(err, "marcar transferências")
	}
	return nil
}
