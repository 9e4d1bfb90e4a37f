package products

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
)

type stubRepo struct {
	bySKU map[string]*models.Product
}

func newStubRepo() *stubRepo {
	return &stubRepo{bySKU: map[string]*models.Product{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.bySKU[product.SKU] = product
	return nil
}

func (s *stubRepo) Update(ctx context.Context, product *models.Product) error {
	s.bySKU[product.SKU] = product
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for _, p := range s.bySKU {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	p, ok := s.bySKU[sku]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.bySKU {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return nil
}

func TestImportCSVCreatesAndUpdates(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	first := "sku,name,price,stock_qty\nH1180,Blat stejar,120.50,10\n"
	result, err := svc.ImportCSV(context.Background(), strings.NewReader(first))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}
	if result.Created != 1 || result.Updated != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	second := "sku,name,price,stock_qty\nH1180,Blat stejar natur,99.00,5\n"
	result, err = svc.ImportCSV(context.Background(), strings.NewReader(second))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	updated, _ := repo.FindBySKU(context.Background(), "H1180")
	if updated.StockQty != 5 {
		t.Fatalf("expected stock 5, got %d", updated.StockQty)
	}
}

func TestImportCSVCollectsRowErrors(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: newStubRepo()})

	payload := "sku,name,price\nH1180,Blat stejar,abc\nH1181,Blat nuc,50.00\n"
	result, err := svc.ImportCSV(context.Background(), strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("good row should land, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 2 {
		t.Fatalf("expected one error at row 2, got %+v", result.Errors)
	}
}

func TestImportCSVRequiresSKUColumn(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: newStubRepo()})

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("name,price\nFoo,1.00\n"))
	if err == nil {
		t.Fatal("expected error for missing sku column")
	}
}

func TestExportCSVRoundTripsHeader(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(ServiceParams{Repo: repo})

	payload := "sku,name,price,stock_qty\nH1180,Blat stejar,120.50,10\n"
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(payload)); err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}

	out, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[0] != strings.Join(csvHeader, ",") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "H1180,") {
		t.Fatalf("unexpected export body: %q", lines)
	}
}
