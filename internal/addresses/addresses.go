package addresses

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/nanopro-wms/backend/pkg/db"
	"github.com/nanopro-wms/backend/pkg/db/models"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
)

// UpsertInput registers or replaces the warehouse location of a product.
type UpsertInput struct {
	Codigo   string `json:"codigo" validate:"required"`
	Endereco string `json:"endereco" validate:"required"`
	Armazem  string `json:"armazem"`
}

// Repository defines persistence operations for the enderecos table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, address *models.Address) error
	List(ctx context.Context) ([]models.Address, error)
	FindByCodigo(ctx context.Context, codigo string) (*models.Address, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Lookup resolves locations for a set of product codes in one query.
	Lookup(ctx context.Context, codigos []string) (map[string]string, error)
}

// Service manages the product-location registry shown on pick lists.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*models.Address, error)
	List(ctx context.Context) ([]models.Address, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Lookup(ctx context.Context, codigos []string) (map[string]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, address *models.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) List(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Order("codigo ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *repository) FindByCodigo(ctx context.Context, codigo string) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("codigo = ?", codigo).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Address{}).Error
}

func (r *repository) Lookup(ctx context.Context, codigos []string) (map[string]string, error) {
	if len(codigos) == 0 {
		return map[string]string{}, nil
	}
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("codigo IN ?", codigos).
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	located := make(map[string]string, len(addresses))
	for _, address := range addresses {
		located[address.Codigo] = address.Endereco
	}
	return located, nil
}

type service struct {
	repo Repository
}

// NewService builds the address service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Upsert keeps one location per product: a second registration for the same
// code overwrites the stored endereco instead of erroring.
func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.Address, error) {
	codigo := strings.TrimSpace(input.Codigo)
	if codigo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Código do produto obrigatório")
	}
	if strings.TrimSpace(input.Endereco) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Endereço obrigatório")
	}

	existing, err := s.repo.FindByCodigo(ctx, codigo)
	switch {
	case err == nil:
		updates := map[string]any{"endereco": input.Endereco, "armazem": input.Armazem}
		if err := s.repo.Update(ctx, existing.ID, updates); err != nil {
			return nil, pkgerrors.Store(err, "atualizar endereço")
		}
		existing.Endereco = input.Endereco
		existing.Armazem = input.Armazem
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		address := &models.Address{Codigo: codigo, Endereco: input.Endereco, Armazem: input.Armazem}
		if err := s.repo.Create(ctx, address); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "Código já endereçado")
			}
			return nil, pkgerrors.Store(err, "criar endereço")
		}
		return address, nil
	default:
		return nil, pkgerrors.Store(err, "buscar endereço")
	}
}

func (s *service) List(ctx context.Context) ([]models.Address, error) {
	addresses, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar endereços")
	}
	return addresses, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Store(err, "excluir endereço")
	}
	return nil
}

func (s *service) Lookup(ctx context.Context, codigos []string) (map[string]string, error) {
	located, err := s.repo.Lookup(ctx, codigos)
	if err != nil {
		return nil, pkgerrors.Store(err, "consultar endereços")
	}
	return located, nil
}
