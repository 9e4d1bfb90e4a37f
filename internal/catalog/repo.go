package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
)

// Repository handles brand, category, and tax rate persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBrand(ctx context.Context, brand *models.Brand) error
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id uuid.UUID) error
	FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	ListBrands(ctx context.Context, activeOnly bool) ([]models.Brand, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)

	CreateTaxRate(ctx context.Context, rate *models.TaxRate) error
	UpdateTaxRate(ctx context.Context, rate *models.TaxRate) error
	DeleteTaxRate(ctx context.Context, id uuid.UUID) error
	FindTaxRate(ctx context.Context, id uuid.UUID) (*models.TaxRate, error)
	ListTaxRates(ctx context.Context, activeOnly bool) ([]models.TaxRate, error)
	ClearDefaultTaxRate(ctx context.Context) error
	FindDefaultTaxRate(ctx context.Context) (*models.TaxRate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *repository) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

func (r *repository) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Brand{}, "id = ?", id).Error
}

func (r *repository) FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *repository) ListBrands(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	q := r.db.WithContext(ctx).Model(&models.Brand{})
	if activeOnly {
		q = q.Where("active")
	}
	var rows []models.Brand
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		q = q.Where("active")
	}
	var rows []models.Category
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateTaxRate(ctx context.Context, rate *models.TaxRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repository) UpdateTaxRate(ctx context.Context, rate *models.TaxRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *repository) DeleteTaxRate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TaxRate{}, "id = ?", id).Error
}

func (r *repository) FindTaxRate(ctx context.Context, id uuid.UUID) (*models.TaxRate, error) {
	var rate models.TaxRate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) ListTaxRates(ctx context.Context, activeOnly bool) ([]models.TaxRate, error) {
	q := r.db.WithContext(ctx).Model(&models.TaxRate{})
	if activeOnly {
		q = q.Where("active")
	}
	var rows []models.TaxRate
	if err := q.Order("is_default DESC, percent ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ClearDefaultTaxRate(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.TaxRate{}).
		Where("is_default").
		Update("is_default", false).Error
}

func (r *repository) FindDefaultTaxRate(ctx context.Context) (*models.TaxRate, error) {
	var rate models.TaxRate
	if err := r.db.WithContext(ctx).
		Where("is_default").
		Order("updated_at DESC").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}
