package blacklist

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/internal/progress"
	dbpkg "github.com/nanopro-wms/backend/pkg/db"
	"github.com/nanopro-wms/backend/pkg/db/models"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

// CreateInput registers a product code as do-not-pick.
type CreateInput struct {
	Codigo     string `json:"codigo" validate:"required"`
	Descricao  string `json:"descricao"`
	NaoSeparar *bool  `json:"nao_separar"`
	Motivo     string `json:"motivo"`
}

// UpdateInput mutates an existing entry. Nil pointers leave fields untouched.
type UpdateInput struct {
	Descricao  *string `json:"descricao"`
	NaoSeparar *bool   `json:"nao_separar"`
	Motivo     *string `json:"motivo"`
}

// Repository defines persistence operations for the blacklist table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.BlacklistEntry) error
	List(ctx context.Context) ([]models.BlacklistEntry, error)
	Find(ctx context.Context, id uuid.UUID) (*models.BlacklistEntry, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ActiveCodes returns the codes currently flagged nao_separar.
	ActiveCodes(ctx context.Context) ([]string, error)
}

// Service manages the do-not-pick registry and serves the denylist the
// progress and workflow layers consume.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.BlacklistEntry, error)
	List(ctx context.Context) ([]models.BlacklistEntry, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.BlacklistEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Denylist(ctx context.Context) (progress.Denylist, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a blacklist repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.BlacklistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context) ([]models.BlacklistEntry, error) {
	var entries []models.BlacklistEntry
	err := r.db.WithContext(ctx).
		Order("codigo ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.BlacklistEntry, error) {
	var entry models.BlacklistEntry
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.BlacklistEntry{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.BlacklistEntry{}).Error
}

func (r *repository) ActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&models.BlacklistEntry{}).
		Where("nao_separar = ?", true).
		Pluck("codigo", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

type service struct {
	repo Repository
}

// NewService builds the blacklist service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.BlacklistEntry, error) {
	codigo := strings.TrimSpace(input.Codigo)
	if codigo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Código do produto obrigatório")
	}

	entry := &models.BlacklistEntry{
		Codigo:     codigo,
		Descricao:  input.Descricao,
		NaoSeparar: true,
		Motivo:     input.Motivo,
	}
	if input.NaoSeparar != nil {
		entry.NaoSeparar = *input.NaoSeparar
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Código já bloqueado")
		}
		return nil, pkgerrors.Store(err, "criar bloqueio")
	}
	return entry, nil
}

func (s *service) List(ctx context.Context) ([]models.BlacklistEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar bloqueios")
	}
	return entries, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.BlacklistEntry, error) {
	updates := make(map[string]any)
	if input.Descricao != nil {
		updates["descricao"] = *input.Descricao
	}
	if input.NaoSeparar != nil {
		updates["nao_separar"] = *input.NaoSeparar
	}
	if input.Motivo != nil {
		updates["motivo"] = *input.Motivo
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Store(err, "atualizar bloqueio")
		}
	}

	entry, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Bloqueio não encontrado")
		}
		return nil, pkgerrors.Store(err, "buscar bloqueio")
	}
	return entry, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Store(err, "excluir bloqueio")
	}
	return nil
}

func (s *service) Denylist(ctx context.Context) (progress.Denylist, error) {
	codes, err := s.repo.ActiveCodes(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "ler blacklist")
	}
	denied := make(progress.Denylist, len(codes))
	for _, code := range codes {
		denied[code] = true
	}
	return denied, nil
}
