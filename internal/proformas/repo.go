package proformas

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// Repository handles proforma persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextNumber(ctx context.Context, series string) (int64, error)
	Create(ctx context.Context, proforma *models.Proforma) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Proforma, error)
	List(ctx context.Context, query ListQuery) ([]models.Proforma, *pagination.Cursor, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceItems(ctx context.Context, proformaID uuid.UUID, items []models.ProformaItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a proforma repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextNumber allocates the next sequential number for the series. Callers
// must run it inside a transaction; the row lock serializes concurrent
// issuers and the unique index backstops the empty-series race.
func (r *repository) NextNumber(ctx context.Context, series string) (int64, error) {
	var current int64
	if err := nextNumberQuery(r.db.WithContext(ctx), series).Scan(&current).Error; err != nil {
		return 0, err
	}
	return current + 1, nil
}

// Postgres refuses FOR UPDATE together with aggregates, so the query locks
// the highest-numbered row itself; an empty series scans as zero.
func nextNumberQuery(db *gorm.DB, series string) *gorm.DB {
	return db.Model(&models.Proforma{}).
		Select("number").
		Where("series = ?", series).
		Order("number DESC").
		Limit(1).
		Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repository) Create(ctx context.Context, proforma *models.Proforma) error {
	return r.db.WithContext(ctx).Create(proforma).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Proforma, error) {
	var proforma models.Proforma
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&proforma).Error; err != nil {
		return nil, err
	}
	return &proforma, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Proforma, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	q := r.db.WithContext(ctx).Model(&models.Proforma{})
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Proforma
	if err := q.Preload("Items").
		Order("created_at DESC, id DESC").
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

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Proforma{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceItems swaps the full line set. Callers run it inside a transaction
// together with the totals update.
func (r *repository) ReplaceItems(ctx context.Context, proformaID uuid.UUID, items []models.ProformaItem) error {
	if err := r.db.WithContext(ctx).
		Where("proforma_id = ?", proformaID).
		Delete(&models.ProformaItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ProformaID = proformaID
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Items").
		Delete(&models.Proforma{ID: id}).Error
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	type row struct {
		Status enums.ProformaStatus
		Count  int
		Gross  string
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Proforma{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_gross), 0)::text AS gross").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, rr := range rows {
		stats.Total += rr.Count
		switch rr.Status {
		case enums.ProformaStatusDraft:
			stats.Draft = rr.Count
		case enums.ProformaStatusSent:
			stats.Sent = rr.Count
		case enums.ProformaStatusConfirmed:
			stats.Confirmed = rr.Count
		case enums.ProformaStatusCancelled:
			stats.Cancelled = rr.Count
		}
		gross, err := parseDecimal(rr.Gross)
		if err != nil {
			return nil, err
		}
		stats.GrossTotal = stats.GrossTotal.Add(gross)
	}
	return stats, nil
}
