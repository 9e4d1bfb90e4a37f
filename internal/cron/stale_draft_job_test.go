package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/internal/partnerorders"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

type stubTx struct{}

func (s *stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubOrderRepo struct {
	stale     []models.PartnerOrder
	byID      map[uuid.UUID]*models.PartnerOrder
	updated   map[uuid.UUID]map[string]any
	updateErr map[uuid.UUID]error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		byID:      map[uuid.UUID]*models.PartnerOrder{},
		updated:   map[uuid.UUID]map[string]any{},
		updateErr: map[uuid.UUID]error{},
	}
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) partnerorders.Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.PartnerOrder) error { return nil }

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.PartnerOrder, error) {
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrderRepo) List(ctx context.Context, query partnerorders.ListQuery) ([]models.PartnerOrder, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrderRepo) ListAllByStatus(ctx context.Context, status *enums.PartnerOrderStatus) ([]models.PartnerOrder, error) {
	return nil, nil
}

func (s *stubOrderRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if err := s.updateErr[id]; err != nil {
		return err
	}
	s.updated[id] = updates
	return nil
}

func (s *stubOrderRepo) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.PartnerOrderItem) error {
	return nil
}

func (s *stubOrderRepo) ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.PartnerOrder, error) {
	return s.stale, nil
}

func cronTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func draftOrder(repo *stubOrderRepo, status enums.PartnerOrderStatus) models.PartnerOrder {
	order := models.PartnerOrder{
		ID:           uuid.New(),
		PartnerEmail: "partener@exemplu.ro",
		Status:       status,
	}
	repo.byID[order.ID] = &order
	return order
}

func TestStaleDraftJobCancelsAndEmits(t *testing.T) {
	repo := newStubOrderRepo()
	order := draftOrder(repo, enums.PartnerOrderStatusDraft)
	repo.stale = []models.PartnerOrder{order}
	sink := &stubOutbox{}

	job, err := NewStaleDraftJob(StaleDraftJobParams{
		Logger: cronTestLogger(),
		DB:     &stubTx{},
		Orders: repo,
		Outbox: sink,
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewStaleDraftJob returned error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	updates, ok := repo.updated[order.ID]
	if !ok || updates["status"] != enums.PartnerOrderStatusCancelled {
		t.Fatalf("expected cancellation update, got %v", updates)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventOrderCancelled {
		t.Fatalf("expected one cancelled event, got %+v", sink.events)
	}
	payload, ok := sink.events[0].Data.(partnerorders.OrderCancelledEvent)
	if !ok || payload.FromStatus != enums.PartnerOrderStatusDraft {
		t.Fatalf("unexpected event payload: %+v", sink.events[0].Data)
	}
}

func TestStaleDraftJobSkipsSubmittedOrders(t *testing.T) {
	repo := newStubOrderRepo()
	order := draftOrder(repo, enums.PartnerOrderStatusSubmitted)
	// Listed as stale but submitted before the transaction re-check.
	repo.stale = []models.PartnerOrder{order}
	sink := &stubOutbox{}

	job, _ := NewStaleDraftJob(StaleDraftJobParams{
		Logger: cronTestLogger(),
		DB:     &stubTx{},
		Orders: repo,
		Outbox: sink,
	})
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(repo.updated) != 0 || len(sink.events) != 0 {
		t.Fatal("submitted order must not be touched")
	}
}

func TestStaleDraftJobContinuesPastFailures(t *testing.T) {
	repo := newStubOrderRepo()
	broken := draftOrder(repo, enums.PartnerOrderStatusDraft)
	healthy := draftOrder(repo, enums.PartnerOrderStatusDraft)
	repo.stale = []models.PartnerOrder{broken, healthy}
	repo.updateErr[broken.ID] = errors.New("deadlock detected")
	sink := &stubOutbox{}

	job, _ := NewStaleDraftJob(StaleDraftJobParams{
		Logger: cronTestLogger(),
		DB:     &stubTx{},
		Orders: repo,
		Outbox: sink,
	})
	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected accumulated error")
	}
	if _, ok := repo.updated[healthy.ID]; !ok {
		t.Fatal("healthy draft should still be cancelled")
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected one event for the healthy draft, got %d", len(sink.events))
	}
}

type stubRetentionRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (s *stubRetentionRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestOutboxRetentionJobUsesRetentionWindow(t *testing.T) {
	repo := &stubRetentionRepo{deleted: 7}
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     cronTestLogger(),
		Repository: repo,
		Retention:  48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob returned error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	age := time.Since(repo.cutoff)
	if age < 47*time.Hour || age > 49*time.Hour {
		t.Fatalf("cutoff not ~48h in the past: %v", repo.cutoff)
	}
}

func TestOutboxRetentionJobPropagatesErrors(t *testing.T) {
	repo := &stubRetentionRepo{err: errors.New("connection refused")}
	job, _ := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     cronTestLogger(),
		Repository: repo,
	})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
