package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)

	err := svc.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventOrderSubmitted,
		AggregateType: enums.AggregatePartnerOrder,
	})
	if err == nil {
		t.Fatalf("expected error for nil transaction")
	}
}

func TestEmitRejectsUnmarshalablePayload(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)

	err := svc.Emit(context.Background(), &gorm.DB{}, DomainEvent{
		EventType:     enums.EventOrderSubmitted,
		AggregateType: enums.AggregatePartnerOrder,
		Data:          make(chan int),
	})
	if err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestPayloadEnvelopeJSONShape(t *testing.T) {
	envelope := PayloadEnvelope{
		Version:    1,
		EventID:    "evt-1",
		OccurredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Actor:      &ActorRef{Email: "admin@otka.ro", Role: "admin"},
		Data:       json.RawMessage(`{"orderId":"o-1"}`),
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	for _, key := range []string{"version", "eventId", "occurredAt", "actor", "data"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("envelope missing %q field", key)
		}
	}

	var roundTrip PayloadEnvelope
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if roundTrip.EventID != envelope.EventID {
		t.Fatalf("event id mismatch: %q", roundTrip.EventID)
	}
	if roundTrip.Actor == nil || roundTrip.Actor.Email != "admin@otka.ro" {
		t.Fatalf("actor mismatch: %+v", roundTrip.Actor)
	}
}

func TestPayloadEnvelopeOmitsEmptyActor(t *testing.T) {
	raw, err := json.Marshal(PayloadEnvelope{Version: 1, EventID: "evt-2", Data: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if _, ok := decoded["actor"]; ok {
		t.Fatalf("expected actor omitted when nil")
	}
}
