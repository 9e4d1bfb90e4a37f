package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// UpsertInput carries the editable product fields.
type UpsertInput struct {
	Name        string          `json:"name" validate:"required"`
	SKU         string          `json:"sku" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	StockQty    int             `json:"stockQty"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	BrandID     *uuid.UUID      `json:"brandId,omitempty"`
	FinishCode  *string         `json:"finishCode,omitempty"`
	WidthMM     *int            `json:"widthMm,omitempty"`
	HeightMM    *int            `json:"heightMm,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo     Repository
	Embedder embedder
	Logger   *logger.Logger
}

// Service manages the product catalog. When an embedder is configured, every
// create/update refreshes the product's search vector best-effort.
type Service struct {
	repo     Repository
	embedder embedder
	logg     *logger.Logger
}

// NewService builds a product service. Embedder and Logger may be nil.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &Service{repo: params.Repo, embedder: params.Embedder, logg: params.Logger}, nil
}

// Create inserts a product; duplicate SKUs map to CONFLICT.
func (s *Service) Create(ctx context.Context, input UpsertInput) (*models.Product, error) {
	product := &models.Product{Active: true}
	applyInput(product, input)
	if product.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.refreshEmbedding(ctx, product)
	return product, nil
}

// Update overwrites the editable fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(product, input)
	if product.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if err := s.repo.Update(ctx, product); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	s.refreshEmbedding(ctx, product)
	return product, nil
}

// Delete removes the product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// Get loads one product.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// List returns products matching the query.
func (s *Service) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// refreshEmbedding updates the search vector. Failures never block catalog
// writes; the keyword fallback covers unembedded rows.
func (s *Service) refreshEmbedding(ctx context.Context, product *models.Product) {
	if s.embedder == nil {
		return
	}
	text := product.Name
	if product.Description != "" {
		text += "\n" + product.Description
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "product embedding failed, search vector left stale", err)
		}
		return
	}
	if err := s.repo.UpdateEmbedding(ctx, product.ID, vector); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "product embedding update failed, search vector left stale", err)
		}
	}
}

func applyInput(product *models.Product, input UpsertInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.SKU = strings.TrimSpace(input.SKU)
	product.Description = input.Description
	product.Price = input.Price
	product.StockQty = input.StockQty
	product.CategoryID = input.CategoryID
	product.BrandID = input.BrandID
	product.FinishCode = input.FinishCode
	product.WidthMM = input.WidthMM
	product.HeightMM = input.HeightMM
	if input.Active != nil {
		product.Active = *input.Active
	}
}

func vectorLiteral(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
