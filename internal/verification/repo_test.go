package verification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	"github.com/nanopro-wms/backend/pkg/types"
)

func setupVerificationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS conferencia (
  id TEXT PRIMARY KEY,
  documento TEXT NOT NULL,
  nome TEXT NOT NULL,
  armazem TEXT NOT NULL,
  ordens TEXT,
  itens TEXT,
  status TEXT NOT NULL DEFAULT 'pendente',
  urgencia TEXT NOT NULL DEFAULT 'baixa',
  responsavel TEXT NOT NULL,
  usuario_atual TEXT,
  data_criacao DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM conferencia").Error)
	return db
}

func seedVerificationBatch(t *testing.T, db *gorm.DB, ordens []string) *models.VerificationBatch {
	t.Helper()

	batch := &models.VerificationBatch{
		ID:          uuid.New(),
		Documento:   "DOC-1",
		Nome:        "OP 100 - 101",
		Armazem:     "CD-01",
		Ordens:      ordens,
		Itens:       types.LineItems{{Codigo: "PROD-A", Quantidade: 15}},
		Status:      enums.BatchStatusPendente,
		Urgencia:    enums.UrgencyAlta,
		Responsavel: "Joana",
	}
	require.NoError(t, db.Create(batch).Error)
	return batch
}

func TestVerificationRepoCreateTxAndFind(t *testing.T) {
	db := setupVerificationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	batch := &models.VerificationBatch{
		ID:          uuid.New(),
		Documento:   "DOC-7",
		Nome:        "Lote-P001-G2",
		Armazem:     "CD-02",
		Ordens:      []string{"700", "701"},
		Itens:       types.LineItems{{Codigo: "PROD-Z", Quantidade: 4}},
		Status:      enums.BatchStatusPendente,
		Urgencia:    enums.UrgencyBaixa,
		Responsavel: "Joana",
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.CreateTx(tx, batch)
	}))

	found, err := repo.Find(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "DOC-7", found.Documento)
	assert.Equal(t, []string{"700", "701"}, []string(found.Ordens))
	require.Len(t, found.Itens, 1)
	assert.Equal(t, "PROD-Z", found.Itens[0].Codigo)
}

func TestVerificationRepoClaimRoundTrip(t *testing.T) {
	db := setupVerificationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	batch := seedVerificationBatch(t, db, []string{"800"})

	taken, err := repo.TryClaim(ctx, batch.ID, "Pedro")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.TryClaim(ctx, batch.ID, "Maria")
	require.NoError(t, err)
	assert.False(t, taken)

	released, err := repo.ReleaseClaim(ctx, batch.ID, "Pedro")
	require.NoError(t, err)
	assert.True(t, released)

	found, err := repo.Find(ctx, batch.ID)
	require.NoError(t, err)
	assert.Nil(t, found.UsuarioAtual)
	assert.Equal(t, enums.BatchStatusPendente, found.Status)
}

func TestVerificationRepoActiveOrderIDs(t *testing.T) {
	db := setupVerificationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedVerificationBatch(t, db, []string{"900", "901"})

	ids, err := repo.ActiveOrderIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"900": true, "901": true}, ids)
}
