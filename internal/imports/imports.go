package imports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/internal/consolidation"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changePublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, table enums.StoreTable, eventType enums.ChangeEventType, newRow, oldRow any) error
}

// ImportSummary reports what an upload staged.
type ImportSummary struct {
	Ordens int `json:"ordens"`
	Linhas int `json:"linhas"`
}

// OrderGroup is the per-order rollup shown on the order selection screen.
type OrderGroup struct {
	OP              string        `json:"op"`
	Urgencia        enums.Urgency `json:"urgencia"`
	Linhas          int           `json:"linhas"`
	TotalQuantidade float64       `json:"total_quantidade"`
	ImportedAt      time.Time     `json:"imported_at"`
}

// Repository defines persistence operations for the ordens staging table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// ReplaceByOps drops any staged lines for the given orders and inserts
	// the fresh ones, so re-importing a spreadsheet is idempotent.
	ReplaceByOps(ctx context.Context, ops []string, lines []models.ImportedOrderLine) error
	ListLines(ctx context.Context, ops []string) ([]models.ImportedOrderLine, error)
	ListGrouped(ctx context.Context) ([]OrderGroup, error)
	SetUrgency(ctx context.Context, op string, urgencia enums.Urgency) (int64, error)
	DeleteByOp(ctx context.Context, op string) (int64, error)
}

// Service stages spreadsheet orders and feeds raw lines to consolidation.
type Service interface {
	Import(ctx context.Context, r io.Reader) (*ImportSummary, error)
	ListGrouped(ctx context.Context) ([]OrderGroup, error)
	SetUrgency(ctx context.Context, op string, urgencia enums.Urgency) error
	Delete(ctx context.Context, op string) error
	RawLinesFor(ctx context.Context, ops []string) ([]consolidation.RawLine, map[string]enums.Urgency, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an imports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ReplaceByOps(ctx context.Context, ops []string, lines []models.ImportedOrderLine) error {
	if len(ops) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("op IN ?", ops).
		Delete(&models.ImportedOrderLine{}).Error
	if err != nil {
		return err
	}
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) ListLines(ctx context.Context, ops []string) ([]models.ImportedOrderLine, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportedOrderLine{})
	if len(ops) > 0 {
		query = query.Where("op IN ?", ops)
	}
	var lines []models.ImportedOrderLine
	err := query.Order("op ASC, codigo ASC").Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) ListGrouped(ctx context.Context) ([]OrderGroup, error) {
	lines, err := r.ListLines(ctx, nil)
	if err != nil {
		return nil, err
	}

	var groups []OrderGroup
	index := make(map[string]int)
	for _, line := range lines {
		i, seen := index[line.OP]
		if !seen {
			index[line.OP] = len(groups)
			groups = append(groups, OrderGroup{
				OP:         line.OP,
				Urgencia:   line.Urgencia,
				ImportedAt: line.ImportedAt,
			})
			i = index[line.OP]
		}
		groups[i].Linhas++
		groups[i].TotalQuantidade += line.Quantidade
	}
	return groups, nil
}

func (r *repository) SetUrgency(ctx context.Context, op string, urgencia enums.Urgency) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ImportedOrderLine{}).
		Where("op = ?", op).
		Update("urgencia", urgencia)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteByOp(ctx context.Context, op string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("op = ?", op).
		Delete(&models.ImportedOrderLine{})
	return res.RowsAffected, res.Error
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher changePublisher
}

// NewService builds the imports service.
func NewService(repo Repository, tx txRunner, publisher changePublisher) Service {
	return &service{repo: repo, tx: tx, publisher: publisher}
}

func (s *service) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	rawLines, err := ParseSpreadsheet(r)
	if err != nil {
		return nil, err
	}

	lines := make([]models.ImportedOrderLine, 0, len(rawLines))
	ops := make([]string, 0)
	seen := make(map[string]bool)
	for _, raw := range rawLines {
		lines = append(lines, models.ImportedOrderLine{
			OP:         raw.OP,
			Codigo:     raw.Codigo,
			Descricao:  raw.Descricao,
			Unidade:    raw.Unidade,
			Quantidade: raw.Quantidade,
			Urgencia:   enums.UrgencyBaixa,
		})
		if !seen[raw.OP] {
			seen[raw.OP] = true
			ops = append(ops, raw.OP)
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ReplaceByOps(ctx, ops, lines); err != nil {
			return err
		}
		return s.publisher.Emit(ctx, tx, enums.TableOrdens, enums.ChangeInsert, ops, nil)
	})
	if err != nil {
		return nil, pkgerrors.Store(err, "importar ordens")
	}
	return &ImportSummary{Ordens: len(ops), Linhas: len(lines)}, nil
}

func (s *service) ListGrouped(ctx context.Context) ([]OrderGroup, error) {
	groups, err := s.repo.ListGrouped(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar ordens")
	}
	return groups, nil
}

func (s *service) SetUrgency(ctx context.Context, op string, urgencia enums.Urgency) error {
	if !urgencia.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Urgência inválida")
	}
	affected, err := s.repo.SetUrgency(ctx, op, urgencia)
	if err != nil {
		return pkgerrors.Store(err, "atualizar urgência")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Ordem não encontrada")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, op string) error {
	affected, err := s.repo.DeleteByOp(ctx, op)
	if err != nil {
		return pkgerrors.Store(err, "excluir ordem")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Ordem não encontrada")
	}
	return nil
}

func (s *service) RawLinesFor(ctx context.Context, ops []string) ([]consolidation.RawLine, map[string]enums.Urgency, error) {
	lines, err := s.repo.ListLines(ctx, ops)
	if err != nil {
		return nil, nil, err
	}
	rawLines := make([]consolidation.RawLine, 0, len(lines))
	urgencies := make(map[string]enums.Urgency)
	for _, line := range lines {
		rawLines = append(rawLines, consolidation.RawLine{
			OP:         line.OP,
			Codigo:     line.Codigo,
			Descricao:  line.Descricao,
			Unidade:    line.Unidade,
			Quantidade: line.Quantidade,
		})
		if current, ok := urgencies[line.OP]; !ok || line.Urgencia.Rank() > current.Rank() {
			urgencies[line.OP] = line.Urgencia
		}
	}
	return rawLines, urgencies, nil
}
