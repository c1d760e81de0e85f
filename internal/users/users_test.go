package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/config"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/security"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS usuarios (
  id TEXT PRIMARY KEY,
  nome TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'operador',
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM usuarios").Error)
	return db
}

func testPasswordCfg() config.PasswordConfig {
	// light argon params keep the suite fast
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUsersService(t *testing.T) Service {
	t.Helper()
	return NewService(NewRepository(setupUsersTestDB(t)), testPasswordCfg())
}

func TestCreateNormalizesAndHashes(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, testPasswordCfg())
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{
		Nome:     "  Maria Silva  ",
		Email:    "Maria@NanoPro.com.br",
		Password: "segredo123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", view.Nome)
	assert.Equal(t, "maria@nanopro.com.br", view.Email)
	assert.Equal(t, enums.UserRoleOperador, view.Role)
	assert.True(t, view.Active)

	stored, err := repo.FindByEmail(ctx, "maria@nanopro.com.br")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", stored.PasswordHash)

	ok, err := security.VerifyPassword("segredo123", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := newUsersService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Nome:     "Maria",
		Email:    "maria@nanopro.com.br",
		Password: "curta",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := newUsersService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Nome: "Maria", Email: "maria@nanopro.com.br", Password: "segredo123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Nome: "Outra", Email: "maria@nanopro.com.br", Password: "segredo123"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "Email já cadastrado", typed.Message())
}

func TestUpdateRoleAndDeactivate(t *testing.T) {
	svc := newUsersService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{Nome: "Maria", Email: "maria@nanopro.com.br", Password: "segredo123"})
	require.NoError(t, err)

	admin := enums.UserRoleAdmin
	inactive := false
	updated, err := svc.Update(ctx, view.ID, UpdateInput{Role: &admin, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, updated.Role)
	assert.False(t, updated.Active)
}

func TestUpdateMissingUser(t *testing.T) {
	svc := newUsersService(t)

	nome := "Qualquer"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Nome: &nome})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteRemovesAccount(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, testPasswordCfg())
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{Nome: "Maria", Email: "maria@nanopro.com.br", Password: "segredo123"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, view.ID))

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
