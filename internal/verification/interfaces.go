package verification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/types"
)

// Repository defines persistence operations for the conferencia table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// CreateTx inserts inside the caller's transaction. The picking
	// service uses it for the send-to-verification hop.
	CreateTx(tx *gorm.DB, batch *models.VerificationBatch) error
	List(ctx context.Context) ([]models.VerificationBatch, error)
	Find(ctx context.Context, id uuid.UUID) (*models.VerificationBatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateItems(ctx context.Context, id uuid.UUID, itens types.LineItems) error
	TryClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, worker string) (bool, error)
	ActiveOrderIDs(ctx context.Context) (map[string]bool, error)
}
