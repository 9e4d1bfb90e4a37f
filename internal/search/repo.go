package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
)

// Match is one vector-search hit with its raw cosine similarity.
type Match struct {
	Product    models.Product
	Similarity float64
}

// MatchQuery narrows the vector search before ranking.
type MatchQuery struct {
	Embedding   []float32
	Threshold   float64
	Count       int
	PriceMin    decimal.Decimal
	PriceMax    decimal.Decimal
	CategoryID  *uuid.UUID
	InStockOnly bool
}

// Repository runs the raw SQL behind semantic search. The embedding column is
// pgvector and not mapped on the model, so everything here bypasses GORM's
// query builder.
type Repository interface {
	MatchProducts(ctx context.Context, query MatchQuery) ([]Match, error)
	SimilarFinishes(ctx context.Context, productID uuid.UUID, count int) ([]models.Product, error)
	SimilarSizes(ctx context.Context, productID uuid.UUID, tolerance float64, count int) ([]models.Product, error)
	KeywordMatch(ctx context.Context, text string, count int) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a search repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type matchRow struct {
	models.Product
	Similarity float64 `gorm:"column:similarity"`
}

func (r *repository) MatchProducts(ctx context.Context, query MatchQuery) ([]Match, error) {
	q := `
		SELECT p.*, 1 - (p.embedding <=> ?::vector) AS similarity
		FROM products p
		WHERE p.embedding IS NOT NULL
		  AND p.active
		  AND 1 - (p.embedding <=> ?::vector) >= ?
		  AND p.price BETWEEN ? AND ?`
	literal := vectorLiteral(query.Embedding)
	args := []any{literal, literal, query.Threshold, query.PriceMin, query.PriceMax}
	if query.CategoryID != nil {
		q += " AND p.category_id = ?"
		args = append(args, *query.CategoryID)
	}
	if query.InStockOnly {
		q += " AND p.stock_qty > 0"
	}
	q += " ORDER BY p.embedding <=> ?::vector LIMIT ?"
	args = append(args, literal, query.Count)

	var rows []matchRow
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, Match{Product: row.Product, Similarity: row.Similarity})
	}
	return matches, nil
}

func (r *repository) SimilarFinishes(ctx context.Context, productID uuid.UUID, count int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.*
		FROM products p
		JOIN products src ON src.id = ?
		WHERE p.id <> src.id
		  AND p.active
		  AND p.finish_code IS NOT NULL
		  AND p.finish_code = src.finish_code
		LIMIT ?`, productID, count).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SimilarSizes(ctx context.Context, productID uuid.UUID, tolerance float64, count int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.*
		FROM products p
		JOIN products src ON src.id = ?
		WHERE p.id <> src.id
		  AND p.active
		  AND p.width_mm IS NOT NULL AND p.height_mm IS NOT NULL
		  AND src.width_mm IS NOT NULL AND src.height_mm IS NOT NULL
		  AND abs(p.width_mm - src.width_mm) <= src.width_mm * ?
		  AND abs(p.height_mm - src.height_mm) <= src.height_mm * ?
		LIMIT ?`, productID, tolerance, tolerance, count).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) KeywordMatch(ctx context.Context, text string, count int) ([]models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("active").
		Where("lower(name) LIKE ? OR lower(description) LIKE ? OR lower(sku) LIKE ?", like, like, like).
		Order("name ASC").
		Limit(count).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
