package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/internal/partnerorders"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/outbox"
)

const (
	defaultDraftTTL  = 90 * 24 * time.Hour
	staleDraftBatch  = 250
	staleDraftSystem = "system"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type staleDraftReader interface {
	WithTx(tx *gorm.DB) partnerorders.Repository
	ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.PartnerOrder, error)
}

// StaleDraftJobParams configure the draft cleanup scheduler.
type StaleDraftJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Orders staleDraftReader
	Outbox outboxEmitter
	TTL    time.Duration
}

// NewStaleDraftJob builds the cron job that cancels draft orders left
// untouched beyond the TTL.
func NewStaleDraftJob(params StaleDraftJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &staleDraftJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

type staleDraftJob struct {
	logg   *logger.Logger
	db     txRunner
	orders staleDraftReader
	outbox outboxEmitter
	ttl    time.Duration
	now    func() time.Time
}

func (j *staleDraftJob) Name() string { return "stale-draft-cleanup" }

// Run cancels stale drafts one transaction each, so a single broken row
// cannot roll back the whole batch. Errors accumulate and surface together.
func (j *staleDraftJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	drafts, err := j.orders.ListStaleDrafts(ctx, cutoff, staleDraftBatch)
	if err != nil {
		return fmt.Errorf("query stale drafts: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, draft := range drafts {
		if err := j.cancelDraft(ctx, draft); err != nil {
			errs = append(errs, fmt.Errorf("cancel draft %s: %w", draft.ID, err))
			continue
		}
		cancelled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"found":     len(drafts),
		"cancelled": cancelled,
		"failed":    len(errs),
	})
	j.logg.Info(logCtx, "stale draft cleanup complete")
	return multierr.Combine(errs...)
}

func (j *staleDraftJob) cancelDraft(ctx context.Context, draft models.PartnerOrder) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, draft.ID)
		if err != nil {
			return err
		}
		// Re-check under the transaction; the partner may have submitted
		// between the listing and now.
		if current.Status != enums.PartnerOrderStatusDraft {
			return nil
		}
		if err := repo.UpdateFields(ctx, draft.ID, map[string]any{
			"status": enums.PartnerOrderStatusCancelled,
		}); err != nil {
			return err
		}
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregatePartnerOrder,
			AggregateID:   draft.ID,
			Actor:         &outbox.ActorRef{Email: staleDraftSystem},
			OccurredAt:    j.now().UTC(),
			Data: partnerorders.OrderCancelledEvent{
				OrderID:      draft.ID,
				PartnerEmail: current.PartnerEmail,
				FromStatus:   enums.PartnerOrderStatusDraft,
			},
		})
	})
}
