package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/outbox"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.EventOrderSubmitted,
				AggregateType: enums.AggregatePartnerOrder,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelopePayload(t, "event-one"),
			},
			{
				ID:            uuid.New(),
				EventType:     enums.EventOrderSubmitted,
				AggregateType: enums.AggregatePartnerOrder,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelopePayload(t, "event-two"),
			},
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestServicePublishAttributesCarryEnvelopeEventID(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventProformaIssued,
		AggregateType: enums.AggregateProforma,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelopePayload(t, "envelope-id"),
		CreatedAt:     time.Now(),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	service := newTestService(t, repo, pub, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.messages))
	}
	attrs := pub.messages[0].Attributes
	if attrs["event_id"] != "envelope-id" {
		t.Fatalf("unexpected event_id attribute: %q", attrs["event_id"])
	}
	if attrs["event_type"] != string(enums.EventProformaIssued) {
		t.Fatalf("unexpected event_type attribute: %q", attrs["event_type"])
	}
	if attrs["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute: %q", attrs["aggregate_id"])
	}
}

func TestServicePublishFallsBackToRowIDOnMalformedPayload(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregatePartnerOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`not-json`),
		CreatedAt:     time.Now(),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	service := newTestService(t, repo, pub, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.messages))
	}
	if got := pub.messages[0].Attributes["event_id"]; got != event.ID.String() {
		t.Fatalf("expected row id fallback, got %q", got)
	}
}

func TestServiceProcessBatchReportsIdleWhenEmpty(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("expected idle batch")
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	base := 500 * time.Millisecond
	current := base
	current = nextBackoff(current, base, maxBackoff)
	if current != time.Second {
		t.Fatalf("expected 1s, got %s", current)
	}
	for i := 0; i < 10; i++ {
		current = nextBackoff(current, base, maxBackoff)
	}
	if current != maxBackoff {
		t.Fatalf("expected backoff capped at %s, got %s", maxBackoff, current)
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, outboxCfgOverride *config.OutboxConfig) *Service {
	outboxCfg := config.OutboxConfig{
		BatchSize:    2,
		PollInterval: 100 * time.Millisecond,
		MaxAttempts:  5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	cfg := &config.Config{
		Outbox: outboxCfg,
	}
	logg := logger.New(logger.Options{
		ServiceName: "outbox-publisher-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		PubSub:     &fakePubSubClient{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func mustEnvelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePubSubClient struct{}

func (f *fakePubSubClient) Ping(context.Context) error {
	return nil
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return nil
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "", f.err
}
