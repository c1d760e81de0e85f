package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nanopro-wms/backend/pkg/config"
	dbpkg "github.com/nanopro-wms/backend/pkg/db"
	"github.com/nanopro-wms/backend/pkg/db/models"
	"github.com/nanopro-wms/backend/pkg/enums"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/security"
)

// View is the wire shape of a user; it never carries the password hash.
type View struct {
	ID        uuid.UUID      `json:"id"`
	Nome      string         `json:"nome"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromModel converts a stored user into its wire shape.
func FromModel(user *models.User) View {
	return View{
		ID:        user.ID,
		Nome:      user.Nome,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// CreateInput registers a warehouse account.
type CreateInput struct {
	Nome     string         `json:"nome" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8"`
	Role     enums.UserRole `json:"role"`
}

// UpdateInput mutates an account. Nil pointers leave fields untouched.
type UpdateInput struct {
	Nome     *string         `json:"nome"`
	Role     *enums.UserRole `json:"role"`
	Active   *bool           `json:"active"`
	Password *string         `json:"password"`
}

// Repository defines persistence operations for the usuarios table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages warehouse accounts.
type Service interface {
	Create(ctx context.Context, input CreateInput) (View, error)
	List(ctx context.Context) ([]View, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (View, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a user repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("nome ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.User{}).Error
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService builds the user service.
func NewService(repo Repository, passwordCfg config.PasswordConfig) Service {
	return &service{repo: repo, passwordCfg: passwordCfg}
}

func (s *service) Create(ctx context.Context, input CreateInput) (View, error) {
	nome := strings.TrimSpace(input.Nome)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if nome == "" || email == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "Nome e email obrigatórios")
	}
	if len(input.Password) < 8 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "Senha deve ter ao menos 8 caracteres")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleOperador
	}
	if !role.IsValid() {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "Perfil de usuário inválido")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Nome:         nome,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return View{}, pkgerrors.New(pkgerrors.CodeConflict, "Email já cadastrado")
		}
		return View{}, pkgerrors.Store(err, "criar usuário")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context) ([]View, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "listar usuários")
	}
	views := make([]View, 0, len(stored))
	for i := range stored {
		views = append(views, FromModel(&stored[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (View, error) {
	updates := make(map[string]any)
	if input.Nome != nil {
		updates["nome"] = strings.TrimSpace(*input.Nome)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return View{}, pkgerrors.New(pkgerrors.CodeValidation, "Perfil de usuário inválido")
		}
		updates["role"] = *input.Role
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return View{}, pkgerrors.New(pkgerrors.CodeValidation, "Senha deve ter ao menos 8 caracteres")
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return View{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return View{}, pkgerrors.Store(err, "atualizar usuário")
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "Usuário não encontrado")
		}
		return View{}, pkgerrors.Store(err, "buscar usuário")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Store(err, "excluir usuário")
	}
	return nil
}
