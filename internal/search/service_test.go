package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

type stubSearchRepo struct {
	matches  []Match
	finishes map[uuid.UUID][]models.Product
	sizes    map[uuid.UUID][]models.Product
	keyword  []models.Product

	keywordCalled bool
}

func (s *stubSearchRepo) MatchProducts(ctx context.Context, query MatchQuery) ([]Match, error) {
	return s.matches, nil
}

func (s *stubSearchRepo) SimilarFinishes(ctx context.Context, productID uuid.UUID, count int) ([]models.Product, error) {
	return s.finishes[productID], nil
}

func (s *stubSearchRepo) SimilarSizes(ctx context.Context, productID uuid.UUID, tolerance float64, count int) ([]models.Product, error) {
	return s.sizes[productID], nil
}

func (s *stubSearchRepo) KeywordMatch(ctx context.Context, text string, count int) ([]models.Product, error) {
	s.keywordCalled = true
	return s.keyword, nil
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestCompositeScoreWeights(t *testing.T) {
	got := compositeScore(0.8, 5, 2, 1)
	want := 0.8*0.6 + 0.2 + 0.1 + 0.1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}

	outOfStock := compositeScore(0.8, 0, 0, 0)
	if math.Abs(outOfStock-0.48) > 1e-9 {
		t.Fatalf("expected bare similarity weight, got %f", outOfStock)
	}
}

func TestSearchRanksByCompositeScore(t *testing.T) {
	inStock := models.Product{ID: uuid.New(), Name: "Blat stejar", StockQty: 4}
	outOfStock := models.Product{ID: uuid.New(), Name: "Blat nuc", StockQty: 0}
	repo := &stubSearchRepo{
		// Higher raw similarity but out of stock and no neighbours.
		matches: []Match{
			{Product: outOfStock, Similarity: 0.9},
			{Product: inStock, Similarity: 0.8},
		},
		finishes: map[uuid.UUID][]models.Product{inStock.ID: {{ID: uuid.New()}}},
		sizes:    map[uuid.UUID][]models.Product{inStock.ID: {{ID: uuid.New()}}},
	}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Embedder: &stubEmbedder{vector: []float32{0.1, 0.2}},
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	resp, err := svc.Search(context.Background(), Input{Query: "blat bucatarie"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 results, got %d", resp.Count)
	}
	if resp.Results[0].Product.ID != inStock.ID {
		t.Fatalf("stocked product with neighbours should rank first, got %q", resp.Results[0].Product.Name)
	}
	if resp.Results[0].FinalScore <= resp.Results[1].FinalScore {
		t.Fatalf("scores not descending: %f vs %f", resp.Results[0].FinalScore, resp.Results[1].FinalScore)
	}
}

func TestSearchCapsResults(t *testing.T) {
	repo := &stubSearchRepo{}
	for i := 0; i < 20; i++ {
		repo.matches = append(repo.matches, Match{
			Product:    models.Product{ID: uuid.New(), StockQty: 1},
			Similarity: 0.75,
		})
	}
	svc, _ := NewService(ServiceParams{
		Repo:     repo,
		Embedder: &stubEmbedder{vector: []float32{0.1}},
		Logger:   testLogger(),
	})

	resp, err := svc.Search(context.Background(), Input{Query: "dulap"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if resp.Count != defaultLimit {
		t.Fatalf("expected cap at %d, got %d", defaultLimit, resp.Count)
	}
}

func TestSearchFallsBackToKeywordWithoutEmbedder(t *testing.T) {
	repo := &stubSearchRepo{keyword: []models.Product{{ID: uuid.New(), Name: "Blat stejar"}}}
	svc, _ := NewService(ServiceParams{Repo: repo, Logger: testLogger()})

	resp, err := svc.Search(context.Background(), Input{Query: "stejar"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !repo.keywordCalled {
		t.Fatal("expected keyword fallback")
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 result, got %d", resp.Count)
	}
}

func TestSearchFallsBackWhenEmbeddingFails(t *testing.T) {
	repo := &stubSearchRepo{keyword: []models.Product{{ID: uuid.New()}}}
	svc, _ := NewService(ServiceParams{
		Repo:     repo,
		Embedder: &stubEmbedder{err: errors.New("quota exceeded")},
		Logger:   testLogger(),
	})

	resp, err := svc.Search(context.Background(), Input{Query: "stejar"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !repo.keywordCalled {
		t.Fatal("expected keyword fallback after embed failure")
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 result, got %d", resp.Count)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubSearchRepo{}, Logger: testLogger()})
	if _, err := svc.Search(context.Background(), Input{Query: "   "}); err == nil {
		t.Fatal("expected validation error")
	}
}
