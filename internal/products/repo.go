package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
)

// ListQuery filters product listings.
type ListQuery struct {
	Search     string
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	ActiveOnly bool
}

// Repository handles product persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, query ListQuery) ([]models.Product, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", strings.TrimSpace(sku)).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if s := strings.TrimSpace(query.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(sku) LIKE ?", like, like)
	}
	if query.CategoryID != nil {
		q = q.Where("category_id = ?", *query.CategoryID)
	}
	if query.BrandID != nil {
		q = q.Where("brand_id = ?", *query.BrandID)
	}
	if query.ActiveOnly {
		q = q.Where("active")
	}
	var rows []models.Product
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateEmbedding writes the pgvector column through raw SQL; the column is
// not mapped on the model.
func (r *repository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE products SET embedding = ?::vector, updated_at = now() WHERE id = ?",
		vectorLiteral(embedding), id,
	).Error
}
