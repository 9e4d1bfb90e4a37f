package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/outbox"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type pubSubClient interface {
	Ping(context.Context) error
}

type outboxRepository interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	PubSub     pubSubClient
	Repository outboxRepository
	Publisher  publisher
}

// Service drains the outbox table into the order events topic. Events are
// published oldest first; a failed publish bumps the attempt counter and the
// row is retried until it exhausts its attempts.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	pubsub       pubSubClient
	publisher    publisher
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	poll := params.Config.Outbox.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		repo:         params.Repository,
		pubsub:       params.PubSub,
		publisher:    params.Publisher,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: poll,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.pubsub.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping failed: %w", err)
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		fields := s.eventFields(event)
		if err := s.publish(ctx, event); err != nil {
			ctxWithFields := s.logg.WithFields(ctx, fields)
			ctxWithFields = s.logg.WithField(ctxWithFields, "error", err.Error())
			s.logg.Warn(ctxWithFields, "outbox publish failed")
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return true, fmt.Errorf("mark failure %s: %w", event.ID, markErr)
			}
			continue
		}

		if markErr := s.repo.MarkPublished(event.ID); markErr != nil {
			return true, fmt.Errorf("mark published %s: %w", event.ID, markErr)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
	}
	return true, nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent) error {
	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       envelopeEventID(event),
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := s.publisher.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		return err
	}
	return nil
}

// envelopeEventID extracts the envelope's event id for consumer-side dedupe.
// Falls back to the outbox row id on malformed payloads.
func envelopeEventID(event models.OutboxEvent) string {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil || envelope.EventID == "" {
		return event.ID.String()
	}
	return envelope.EventID
}

func (s *Service) eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
