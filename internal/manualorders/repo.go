package manualorders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// ListQuery filters manual order listings.
type ListQuery struct {
	PartnerEmail string
	Status       *enums.ManualOrderStatus
	Limit        int
	Cursor       *pagination.Cursor
}

// Repository handles manual order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.ManualOrder) error
	List(ctx context.Context, query ListQuery) ([]models.ManualOrder, *pagination.Cursor, error)
	ListInWindow(ctx context.Context, from, to time.Time) ([]models.ManualOrder, error)
	ListByPartner(ctx context.Context, partnerEmail string) ([]models.ManualOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a manual order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.ManualOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.ManualOrder, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	q := r.db.WithContext(ctx).Model(&models.ManualOrder{})
	if query.PartnerEmail != "" {
		q = q.Where("partner_email = ?", query.PartnerEmail)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.ManualOrder
	if err := q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > limit {
		next := rows[limit]
		rows = rows[:limit]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// ListInWindow returns every order with created_at in [from, to).
func (r *repository) ListInWindow(ctx context.Context, from, to time.Time) ([]models.ManualOrder, error) {
	var rows []models.ManualOrder
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByPartner(ctx context.Context, partnerEmail string) ([]models.ManualOrder, error) {
	var rows []models.ManualOrder
	if err := r.db.WithContext(ctx).
		Where("partner_email = ?", partnerEmail).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
