package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
)

// Repository handles client persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	List(ctx context.Context, search string) ([]models.Client, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a client repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", strings.TrimSpace(email)).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) List(ctx context.Context, search string) ([]models.Client, error) {
	q := r.db.WithContext(ctx).Model(&models.Client{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(email) LIKE ? OR lower(coalesce(company, '')) LIKE ?", like, like, like)
	}
	var rows []models.Client
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
