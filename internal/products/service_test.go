package products

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/logger"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, s.err
}

type failingEmbeddingRepo struct {
	*stubRepo
	embedErr error
}

func (s *failingEmbeddingRepo) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return s.embedErr
}

func TestCreateLogsEmbeddingUpdateFailure(t *testing.T) {
	var logs bytes.Buffer
	repo := &failingEmbeddingRepo{stubRepo: newStubRepo(), embedErr: fmt.Errorf("pgvector unavailable")}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Embedder: &stubEmbedder{vector: []float32{0.1, 0.2}},
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: &logs}),
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	product, err := svc.Create(context.Background(), UpsertInput{
		Name:  "Blat stejar",
		SKU:   "H1180",
		Price: decimal.RequireFromString("120.50"),
	})
	if err != nil {
		t.Fatalf("embedding failure must not block the create: %v", err)
	}
	if product.ID == uuid.Nil {
		t.Fatal("expected the product to be persisted")
	}
	if !strings.Contains(logs.String(), "product embedding update failed") {
		t.Fatalf("expected embedding failure in logs, got: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "pgvector unavailable") {
		t.Fatalf("expected the underlying error in logs, got: %s", logs.String())
	}
}

func TestCreateLogsEmbedFailure(t *testing.T) {
	var logs bytes.Buffer
	svc, err := NewService(ServiceParams{
		Repo:     newStubRepo(),
		Embedder: &stubEmbedder{err: fmt.Errorf("openai timeout")},
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: &logs}),
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if _, err := svc.Create(context.Background(), UpsertInput{
		Name:  "Blat nuc",
		SKU:   "H1181",
		Price: decimal.RequireFromString("99.00"),
	}); err != nil {
		t.Fatalf("embed failure must not block the create: %v", err)
	}
	if !strings.Contains(logs.String(), "product embedding failed") {
		t.Fatalf("expected embed failure in logs, got: %s", logs.String())
	}
}
