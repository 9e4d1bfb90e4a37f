package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/openai"
)

const (
	defaultThreshold  = 0.7
	defaultMatchCount = 20
	defaultLimit      = 12
	sizeTolerance     = 0.1
	similarCount      = 3

	weightSimilarity = 0.6
	weightInStock    = 0.2
	weightFinishes   = 0.1
	weightSizes      = 0.1
)

// Filters narrows a search request. Zero values fall back to defaults.
type Filters struct {
	Threshold   *float64   `json:"threshold,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	PriceRange  []string   `json:"priceRange,omitempty"`
	CategoryID  *uuid.UUID `json:"category,omitempty"`
	InStockOnly *bool      `json:"inStock,omitempty"`
}

// Input is one search request.
type Input struct {
	Query   string  `json:"query" validate:"required"`
	Filters Filters `json:"filters"`
}

// Result is one ranked hit with its enrichment.
type Result struct {
	Product         models.Product   `json:"product"`
	SimilarityScore float64          `json:"similarityScore"`
	FinalScore      float64          `json:"finalScore"`
	SimilarFinishes []models.Product `json:"similarFinishes"`
	SimilarSizes    []models.Product `json:"similarSizes"`
}

// Response wraps the ranked hits.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// ServiceParams groups dependencies for the search service. Embedder may be
// nil; the service then answers with keyword matching only.
type ServiceParams struct {
	Repo     Repository
	Embedder openai.Embedder
	Logger   *logger.Logger
}

// Service answers storefront search queries, semantically when an embeddings
// client is configured.
type Service struct {
	repo     Repository
	embedder openai.Embedder
	logg     *logger.Logger
}

// NewService builds a search service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("search repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		repo:     params.Repo,
		embedder: params.Embedder,
		logg:     params.Logger,
	}, nil
}

// Search embeds the query, matches it against product embeddings, enriches
// each hit with similar finishes and sizes, and ranks by composite score.
// Without an embedder it degrades to keyword matching.
func (s *Service) Search(ctx context.Context, input Input) (*Response, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}
	limit := input.Filters.Limit
	if limit <= 0 || limit > 50 {
		limit = defaultLimit
	}

	if s.embedder == nil {
		return s.keywordSearch(ctx, query, limit)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"query": query, "error": err.Error()})
		s.logg.Warn(lctx, "embedding failed, falling back to keyword search")
		return s.keywordSearch(ctx, query, limit)
	}

	matches, err := s.repo.MatchProducts(ctx, s.buildMatchQuery(embedding, input.Filters))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vector match")
	}

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		finishes, err := s.repo.SimilarFinishes(ctx, match.Product.ID, similarCount)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "similar finishes")
		}
		sizes, err := s.repo.SimilarSizes(ctx, match.Product.ID, sizeTolerance, similarCount)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "similar sizes")
		}
		results = append(results, Result{
			Product:         match.Product,
			SimilarityScore: match.Similarity,
			FinalScore:      compositeScore(match.Similarity, match.Product.StockQty, len(finishes), len(sizes)),
			SimilarFinishes: finishes,
			SimilarSizes:    sizes,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return &Response{Query: query, Results: results, Count: len(results)}, nil
}

func (s *Service) keywordSearch(ctx context.Context, query string, limit int) (*Response, error) {
	rows, err := s.repo.KeywordMatch(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "keyword match")
	}
	results := make([]Result, 0, len(rows))
	for _, product := range rows {
		results = append(results, Result{Product: product})
	}
	return &Response{Query: query, Results: results, Count: len(results)}, nil
}

func (s *Service) buildMatchQuery(embedding []float32, filters Filters) MatchQuery {
	query := MatchQuery{
		Embedding:   embedding,
		Threshold:   defaultThreshold,
		Count:       defaultMatchCount,
		PriceMin:    decimal.Zero,
		PriceMax:    decimal.NewFromInt(999999),
		CategoryID:  filters.CategoryID,
		InStockOnly: true,
	}
	if filters.Threshold != nil {
		query.Threshold = *filters.Threshold
	}
	if filters.InStockOnly != nil {
		query.InStockOnly = *filters.InStockOnly
	}
	if len(filters.PriceRange) == 2 {
		if min, err := decimal.NewFromString(filters.PriceRange[0]); err == nil {
			query.PriceMin = min
		}
		if max, err := decimal.NewFromString(filters.PriceRange[1]); err == nil {
			query.PriceMax = max
		}
	}
	return query
}

func compositeScore(similarity float64, stockQty, finishCount, sizeCount int) float64 {
	score := similarity * weightSimilarity
	if stockQty > 0 {
		score += weightInStock
	}
	if finishCount > 0 {
		score += weightFinishes
	}
	if sizeCount > 0 {
		score += weightSizes
	}
	return score
}
