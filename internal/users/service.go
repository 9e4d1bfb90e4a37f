package users

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

// UpdateInput changes a user's role or active flag, keyed by email.
type UpdateInput struct {
	Email  string          `json:"email" validate:"required,email"`
	Role   *enums.UserRole `json:"role,omitempty"`
	Active *bool           `json:"active,omitempty"`
}

// Repository handles user persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a user repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, user *models.User) error {
	var existing models.User
	err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", user.Email).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(user).Error
	}
	if err != nil {
		return err
	}
	existing.Role = user.Role
	existing.FullName = user.FullName
	existing.Active = user.Active
	*user = existing
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", strings.TrimSpace(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	if err := r.db.WithContext(ctx).Order("email ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ServiceParams groups dependencies for the user service.
type ServiceParams struct {
	Repo Repository
}

// Service mirrors the hosted auth provider's accounts and manages roles.
type Service struct {
	repo Repository
}

// NewService builds a user service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &Service{repo: params.Repo}, nil
}

// List returns every known account.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return rows, nil
}

// Update changes role and active flags for the addressed account.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*models.User, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown role %q", *input.Role))
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

// Lookup loads an account by email for the auth middleware.
func (s *Service) Lookup(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
