package picking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/types"
)

// Repository defines persistence operations for the separacao table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, batch *models.PickBatch) error
	// CreateTx inserts inside the caller's transaction. Used by the
	// verification revert transition to push a batch back into separacao.
	CreateTx(tx *gorm.DB, batch *models.PickBatch) error
	List(ctx context.Context) ([]models.PickBatch, error)
	Find(ctx context.Context, id uuid.UUID) (*models.PickBatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateItems(ctx context.Context, id uuid.UUID, itens types.LineItems) error
	// TryClaim performs a conditional update on usuario_atual: it succeeds
	// only when the claim field is empty or already holds the worker. The
	// boolean reports whether the claim was taken.
	TryClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error)
	// ActiveOrderIDs returns every order id referenced by a live pick batch.
	ActiveOrderIDs(ctx context.Context) (map[string]bool, error)
}
