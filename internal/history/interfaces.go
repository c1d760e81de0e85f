package history

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/pagination"
)

// Filters narrows the history listing.
type Filters struct {
	// Busca matches documento, nome or armazem (case-insensitive substring).
	Busca string
	// Armazem restricts to one warehouse when set.
	Armazem string
}

// RecordList is one page of history records plus the cursor for the next.
type RecordList struct {
	Records    []models.HistoryRecord
	NextCursor string
}

// Repository defines persistence operations for the historico table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// UpsertTx replaces any existing snapshot carrying the same documento.
	// Used by the verification finalize transition.
	UpsertTx(tx *gorm.DB, record *models.HistoryRecord) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*RecordList, error)
	Find(ctx context.Context, id uuid.UUID) (*models.HistoryRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ActiveOrderIDs(ctx context.Context) (map[string]bool, error)
}
