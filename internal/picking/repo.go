package picking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	"github.com/nanopro-wms/backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a picking repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, batch *models.PickBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) CreateTx(tx *gorm.DB, batch *models.PickBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	return tx.Create(batch).Error
}

func (r *repository) List(ctx context.Context) ([]models.PickBatch, error) {
	var batches []models.PickBatch
	err := r.db.WithContext(ctx).
		Order("data_criacao ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.PickBatch, error) {
	var batch models.PickBatch
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PickBatch{}).Error
}

func (r *repository) UpdateItems(ctx context.Context, id uuid.UUID, itens types.LineItems) error {
	return r.db.WithContext(ctx).
		Model(&models.PickBatch{}).
		Where("id = ?", id).
		Update("itens", itens).Error
}

func (r *repository) TryClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PickBatch{}).
		Where("id = ? AND (usuario_atual IS NULL OR usuario_atual = '' OR usuario_atual = ?)", id, worker).
		Updates(map[string]any{
			"usuario_atual": worker,
			"status":        enums.BatchStatusEmAndamento,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ReleaseClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PickBatch{}).
		Where("id = ? AND usuario_atual = ?", id, worker).
		Updates(map[string]any{
			"usuario_atual": nil,
			"status":        enums.BatchStatusPendente,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ActiveOrderIDs(ctx context.Context) (map[string]bool, error) {
	var batches []models.PickBatch
	err := r.db.WithContext(ctx).
		Select("ordens").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, batch := range batches {
		for _, op := range batch.Ordens {
			ids[op] = true
		}
	}
	return ids, nil
}
