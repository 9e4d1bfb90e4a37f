package partnerorders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// ErrNotDraft is returned when an item mutation targets an order that has
// already left draft.
var ErrNotDraft = errors.New("order is not a draft")

// Repository handles partner order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.PartnerOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PartnerOrder, error)
	List(ctx context.Context, query ListQuery) ([]models.PartnerOrder, *pagination.Cursor, error)
	ListAllByStatus(ctx context.Context, status *enums.PartnerOrderStatus) ([]models.PartnerOrder, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.PartnerOrderItem) error
	ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.PartnerOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a partner order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.PartnerOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PartnerOrder, error) {
	var order models.PartnerOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number ASC")
		}).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.PartnerOrder, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	q := r.db.WithContext(ctx).Model(&models.PartnerOrder{})
	if query.PartnerEmail != "" {
		q = q.Where("partner_email = ?", query.PartnerEmail)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var orders []models.PartnerOrder
	if err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number ASC")
		}).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > limit {
		next := orders[limit]
		orders = orders[:limit]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

func (r *repository) ListAllByStatus(ctx context.Context, status *enums.PartnerOrderStatus) ([]models.PartnerOrder, error) {
	q := r.db.WithContext(ctx).Model(&models.PartnerOrder{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.PartnerOrder
	if err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number ASC")
		}).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PartnerOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceItems deletes the current item set and inserts the new one. The
// order row is locked and checked first so a non-draft order can never end up
// with old and new rows mixed; callers wrap the whole call in WithTx.
func (r *repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.PartnerOrderItem) error {
	var order models.PartnerOrder
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "status").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return err
	}
	if order.Status != enums.PartnerOrderStatusDraft {
		return ErrNotDraft
	}

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.PartnerOrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.PartnerOrder, error) {
	if limit <= 0 {
		limit = 250
	}
	var orders []models.PartnerOrder
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.PartnerOrderStatusDraft, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
