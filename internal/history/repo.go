package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a history repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) UpsertTx(tx *gorm.DB, record *models.HistoryRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "documento"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nome", "armazem", "ordens", "itens",
			"separado_por", "conferido_por", "data_finalizacao",
		}),
	}).Create(record).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*RecordList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.HistoryRecord{})
	if filters.Busca != "" {
		pattern := fmt.Sprintf("%%%s%%", strings.ToLower(filters.Busca))
		query = query.Where(
			"(LOWER(documento) LIKE ? OR LOWER(nome) LIKE ? OR LOWER(armazem) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if filters.Armazem != "" {
		query = query.Where("armazem = ?", filters.Armazem)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(data_finalizacao < ?) OR (data_finalizacao = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.HistoryRecord
	err = query.
		Order("data_finalizacao DESC, id DESC").
		Limit(limit + 1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	list := &RecordList{}
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.DataFinalizacao,
			ID:        last.ID,
		})
	}
	list.Records = records
	return list, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.HistoryRecord, error) {
	var record models.HistoryRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.HistoryRecord{}).Error
}

func (r *repository) ActiveOrderIDs(ctx context.Context) (map[string]bool, error) {
	var records []models.HistoryRecord
	err := r.db.WithContext(ctx).
		Select("ordens").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, record := range records {
		for _, op := range record.Ordens {
			ids[op] = true
		}
	}
	return ids, nil
}
