package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

// BrandInput carries the editable brand fields.
type BrandInput struct {
	Name    string  `json:"name" validate:"required"`
	Slug    string  `json:"slug" validate:"required"`
	LogoURL *string `json:"logoUrl,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// CategoryInput carries the editable category fields.
type CategoryInput struct {
	Name     string     `json:"name" validate:"required"`
	Slug     string     `json:"slug" validate:"required"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
	Active   *bool      `json:"active,omitempty"`
}

// TaxRateInput carries the editable tax rate fields.
type TaxRateInput struct {
	Name      string          `json:"name" validate:"required"`
	Percent   decimal.Decimal `json:"percent" validate:"required"`
	IsDefault *bool           `json:"isDefault,omitempty"`
	Active    *bool           `json:"active,omitempty"`
}

// TaxRateBulkItem addresses one rate in a bulk update.
type TaxRateBulkItem struct {
	ID    uuid.UUID    `json:"id" validate:"required"`
	Input TaxRateInput `json:"input" validate:"required"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo Repository
	Tx   txRunner
}

// Service manages brands, categories, and tax rates.
type Service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Service{repo: params.Repo, tx: params.Tx}, nil
}

// CreateBrand inserts a brand; duplicate slugs map to CONFLICT.
func (s *Service) CreateBrand(ctx context.Context, input BrandInput) (*models.Brand, error) {
	brand := &models.Brand{
		Name:    strings.TrimSpace(input.Name),
		Slug:    normalizeSlug(input.Slug),
		LogoURL: input.LogoURL,
		Active:  true,
	}
	if input.Active != nil {
		brand.Active = *input.Active
	}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_brands_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a brand with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create brand")
	}
	return brand, nil
}

// UpdateBrand overwrites the editable brand fields.
func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, input BrandInput) (*models.Brand, error) {
	brand, err := s.repo.FindBrand(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}
	brand.Name = strings.TrimSpace(input.Name)
	brand.Slug = normalizeSlug(input.Slug)
	brand.LogoURL = input.LogoURL
	if input.Active != nil {
		brand.Active = *input.Active
	}
	if err := s.repo.UpdateBrand(ctx, brand); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_brands_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a brand with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update brand")
	}
	return brand, nil
}

// DeleteBrand removes a brand.
func (s *Service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete brand")
	}
	return nil
}

// ListBrands returns brands, optionally active-only for the storefront.
func (s *Service) ListBrands(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	rows, err := s.repo.ListBrands(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	return rows, nil
}

// CreateCategory inserts a category; duplicate slugs map to CONFLICT.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	category := &models.Category{
		Name:     strings.TrimSpace(input.Name),
		Slug:     normalizeSlug(input.Slug),
		ParentID: input.ParentID,
		Active:   true,
	}
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

// UpdateCategory overwrites the editable category fields.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	category.Name = strings.TrimSpace(input.Name)
	category.Slug = normalizeSlug(input.Slug)
	category.ParentID = input.ParentID
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// ListCategories returns categories, optionally active-only.
func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

// CreateTaxRate inserts a rate; setting the default clears the previous one
// in the same transaction.
func (s *Service) CreateTaxRate(ctx context.Context, input TaxRateInput) (*models.TaxRate, error) {
	if input.Percent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent cannot be negative")
	}
	rate := &models.TaxRate{
		Name:    strings.TrimSpace(input.Name),
		Percent: input.Percent,
		Active:  true,
	}
	if input.Active != nil {
		rate.Active = *input.Active
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault != nil && *input.IsDefault {
			if err := repo.ClearDefaultTaxRate(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default tax rate")
			}
			rate.IsDefault = true
		}
		if err := repo.CreateTaxRate(ctx, rate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tax rate")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// UpdateTaxRate overwrites the editable rate fields.
func (s *Service) UpdateTaxRate(ctx context.Context, id uuid.UUID, input TaxRateInput) (*models.TaxRate, error) {
	if input.Percent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent cannot be negative")
	}
	var updated *models.TaxRate
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rate, err := repo.FindTaxRate(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "tax rate not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tax rate")
		}
		rate.Name = strings.TrimSpace(input.Name)
		rate.Percent = input.Percent
		if input.Active != nil {
			rate.Active = *input.Active
		}
		if input.IsDefault != nil && *input.IsDefault && !rate.IsDefault {
			if err := repo.ClearDefaultTaxRate(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default tax rate")
			}
			rate.IsDefault = true
		}
		if err := repo.UpdateTaxRate(ctx, rate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tax rate")
		}
		updated = rate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// BulkUpdateTaxRates applies several updates atomically.
func (s *Service) BulkUpdateTaxRates(ctx context.Context, items []TaxRateBulkItem) ([]models.TaxRate, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one tax rate is required")
	}
	var out []models.TaxRate
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, item := range items {
			rate, err := repo.FindTaxRate(ctx, item.ID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound,
						fmt.Sprintf("tax rate %s not found", item.ID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tax rate")
			}
			rate.Name = strings.TrimSpace(item.Input.Name)
			rate.Percent = item.Input.Percent
			if item.Input.Active != nil {
				rate.Active = *item.Input.Active
			}
			if err := repo.UpdateTaxRate(ctx, rate); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tax rate")
			}
			out = append(out, *rate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTaxRate removes a rate.
func (s *Service) DeleteTaxRate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTaxRate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tax rate")
	}
	return nil
}

// ListTaxRates returns rates, default first.
func (s *Service) ListTaxRates(ctx context.Context, activeOnly bool) ([]models.TaxRate, error) {
	rows, err := s.repo.ListTaxRates(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tax rates")
	}
	return rows, nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
