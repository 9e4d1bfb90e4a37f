package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/mailer"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/redis"
)

const (
	orderNotificationConsumer = "order-notifications"
	dedupeTTL                 = 24 * time.Hour
)

// Consumer watches order events and mails the partner about status changes.
// Delivery is best-effort: a failed send is logged and the message acked so a
// broken mailbox cannot wedge the subscription.
type Consumer struct {
	subscription *pubsub.Subscriber
	mailer       mailer.Sender
	dedupe       redis.IdempotencyStore
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer. Mailer may be nil when
// SMTP is not configured; events are then logged and acked.
func NewConsumer(subscription *pubsub.Subscriber, sender mailer.Sender, dedupe redis.IdempotencyStore, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("order events subscription required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		mailer:       sender,
		dedupe:       dedupe,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.process(ctx, msg)
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return
	}

	if _, err := uuid.Parse(envelope.EventID); err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return
	}
	key := c.dedupe.IdempotencyKey(orderNotificationConsumer, envelope.EventID)
	fresh, err := c.dedupe.SetNX(ctx, key, "1", dedupeTTL)
	if err != nil {
		// Redis down: deliver anyway rather than drop silently.
		c.logg.Error(logCtx, "dedupe check failed", err)
	} else if !fresh {
		c.logg.Info(logCtx, "event already processed")
		return
	}

	message, err := c.buildMessage(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notification", err)
		return
	}
	if message == nil {
		c.logg.Debug(logCtx, "event type carries no partner notification")
		return
	}

	if c.mailer == nil {
		c.logg.Warn(logCtx, "smtp not configured, notification skipped")
		return
	}
	if err := c.mailer.Send(ctx, *message); err != nil {
		c.logg.Error(logCtx, "notification email failed", err)
		return
	}
	c.logg.Info(c.logg.WithField(logCtx, "to", message.To), "partner notified")
}

func (c *Consumer) buildMessage(eventType enums.OutboxEventType, data json.RawMessage) (*mailer.Message, error) {
	switch eventType {
	case enums.EventOrderSubmitted:
		var payload orderSubmittedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.PartnerEmail == "" {
			return nil, fmt.Errorf("partner email missing")
		}
		return &mailer.Message{
			To:      []string{payload.PartnerEmail},
			Subject: fmt.Sprintf("Comanda %s a fost trimisa", shortID(payload.OrderID)),
			Body: fmt.Sprintf(
				"Buna ziua,\n\nComanda dumneavoastra %s a fost inregistrata si urmeaza sa fie procesata.\n\nEchipa OTKA",
				shortID(payload.OrderID)),
		}, nil
	case enums.EventOrderStateChanged:
		var payload orderStateChangedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.PartnerEmail == "" {
			return nil, fmt.Errorf("partner email missing")
		}
		return &mailer.Message{
			To:      []string{payload.PartnerEmail},
			Subject: fmt.Sprintf("Comanda %s: %s", shortID(payload.OrderID), statusLabel(payload.ToStatus)),
			Body: fmt.Sprintf(
				"Buna ziua,\n\nStatusul comenzii %s s-a schimbat: %s.\n\nEchipa OTKA",
				shortID(payload.OrderID), statusLabel(payload.ToStatus)),
		}, nil
	case enums.EventOrderCancelled:
		var payload orderCancelledPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.PartnerEmail == "" {
			return nil, fmt.Errorf("partner email missing")
		}
		return &mailer.Message{
			To:      []string{payload.PartnerEmail},
			Subject: fmt.Sprintf("Comanda %s a fost anulata", shortID(payload.OrderID)),
			Body: fmt.Sprintf(
				"Buna ziua,\n\nComanda %s a fost anulata. Pentru detalii contactati echipa OTKA.\n\nEchipa OTKA",
				shortID(payload.OrderID)),
		}, nil
	default:
		// Drafts and proformas have their own flows.
		return nil, nil
	}
}

var statusLabels = map[enums.PartnerOrderStatus]string{
	enums.PartnerOrderStatusSubmitted:         "trimisa",
	enums.PartnerOrderStatusUnderReview:       "in verificare",
	enums.PartnerOrderStatusApproved:          "aprobata",
	enums.PartnerOrderStatusConfirmedSigned:   "contract semnat",
	enums.PartnerOrderStatusProformaGenerated: "proforma emisa",
	enums.PartnerOrderStatusPaid:              "platita",
	enums.PartnerOrderStatusInProduction:      "in productie",
	enums.PartnerOrderStatusShipped:           "expediata",
	enums.PartnerOrderStatusDelivered:         "livrata",
	enums.PartnerOrderStatusCancelled:         "anulata",
}

func statusLabel(status enums.PartnerOrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}

type orderSubmittedPayload struct {
	OrderID      uuid.UUID `json:"order_id"`
	PartnerEmail string    `json:"partner_email"`
}

type orderStateChangedPayload struct {
	OrderID      uuid.UUID                `json:"order_id"`
	PartnerEmail string                   `json:"partner_email"`
	FromStatus   enums.PartnerOrderStatus `json:"from_status"`
	ToStatus     enums.PartnerOrderStatus `json:"to_status"`
}

type orderCancelledPayload struct {
	OrderID      uuid.UUID                `json:"order_id"`
	PartnerEmail string                   `json:"partner_email"`
	FromStatus   enums.PartnerOrderStatus `json:"from_status"`
}
