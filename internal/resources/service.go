package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

// ResourceInput carries the editable resource fields. The file itself lives
// in object storage; only its URL is recorded.
type ResourceInput struct {
	Title          string             `json:"title" validate:"required"`
	Kind           enums.ResourceKind `json:"kind" validate:"required"`
	URL            string             `json:"url" validate:"required,url"`
	PartnerVisible *bool              `json:"partnerVisible,omitempty"`
}

// AssetInput carries the editable public asset fields.
type AssetInput struct {
	Key     string  `json:"key" validate:"required"`
	URL     string  `json:"url" validate:"required,url"`
	AltText *string `json:"altText,omitempty"`
}

// Repository handles resource and public asset persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateResource(ctx context.Context, resource *models.Resource) error
	UpdateResource(ctx context.Context, resource *models.Resource) error
	DeleteResource(ctx context.Context, id uuid.UUID) error
	FindResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	ListResources(ctx context.Context, partnerVisibleOnly bool) ([]models.Resource, error)
	UpsertAsset(ctx context.Context, asset *models.PublicAsset) error
	DeleteAsset(ctx context.Context, key string) error
	ListAssets(ctx context.Context) ([]models.PublicAsset, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a resource repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateResource(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *repository) UpdateResource(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Save(resource).Error
}

func (r *repository) DeleteResource(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Resource{}, "id = ?", id).Error
}

func (r *repository) FindResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *repository) ListResources(ctx context.Context, partnerVisibleOnly bool) ([]models.Resource, error) {
	q := r.db.WithContext(ctx).Model(&models.Resource{})
	if partnerVisibleOnly {
		q = q.Where("partner_visible")
	}
	var rows []models.Resource
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpsertAsset(ctx context.Context, asset *models.PublicAsset) error {
	var existing models.PublicAsset
	err := r.db.WithContext(ctx).Where("key = ?", asset.Key).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(asset).Error
	}
	if err != nil {
		return err
	}
	existing.URL = asset.URL
	existing.AltText = asset.AltText
	*asset = existing
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *repository) DeleteAsset(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.PublicAsset{}, "key = ?", key).Error
}

func (r *repository) ListAssets(ctx context.Context) ([]models.PublicAsset, error) {
	var rows []models.PublicAsset
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ServiceParams groups dependencies for the resource service.
type ServiceParams struct {
	Repo Repository
}

// Service manages partner resources and storefront assets.
type Service struct {
	repo Repository
}

// NewService builds a resource service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("resources repository required")
	}
	return &Service{repo: params.Repo}, nil
}

// CreateResource stores a resource entry.
func (s *Service) CreateResource(ctx context.Context, input ResourceInput) (*models.Resource, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown resource kind %q", input.Kind))
	}
	resource := &models.Resource{
		Title:          strings.TrimSpace(input.Title),
		Kind:           input.Kind,
		URL:            strings.TrimSpace(input.URL),
		PartnerVisible: true,
	}
	if input.PartnerVisible != nil {
		resource.PartnerVisible = *input.PartnerVisible
	}
	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create resource")
	}
	return resource, nil
}

// UpdateResource overwrites the editable fields.
func (s *Service) UpdateResource(ctx context.Context, id uuid.UUID, input ResourceInput) (*models.Resource, error) {
	resource, err := s.repo.FindResource(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load resource")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown resource kind %q", input.Kind))
	}
	resource.Title = strings.TrimSpace(input.Title)
	resource.Kind = input.Kind
	resource.URL = strings.TrimSpace(input.URL)
	if input.PartnerVisible != nil {
		resource.PartnerVisible = *input.PartnerVisible
	}
	if err := s.repo.UpdateResource(ctx, resource); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update resource")
	}
	return resource, nil
}

// DeleteResource removes a resource entry.
func (s *Service) DeleteResource(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteResource(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete resource")
	}
	return nil
}

// ListResources returns resources; partners only see flagged entries.
func (s *Service) ListResources(ctx context.Context, partnerVisibleOnly bool) ([]models.Resource, error) {
	rows, err := s.repo.ListResources(ctx, partnerVisibleOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list resources")
	}
	return rows, nil
}

// UpsertAsset creates or replaces the asset stored under the key.
func (s *Service) UpsertAsset(ctx context.Context, input AssetInput) (*models.PublicAsset, error) {
	asset := &models.PublicAsset{
		Key:     strings.TrimSpace(input.Key),
		URL:     strings.TrimSpace(input.URL),
		AltText: input.AltText,
	}
	if err := s.repo.UpsertAsset(ctx, asset); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_public_assets_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset key already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert asset")
	}
	return asset, nil
}

// DeleteAsset removes the asset stored under the key.
func (s *Service) DeleteAsset(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset key required")
	}
	if err := s.repo.DeleteAsset(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset")
	}
	return nil
}

// ListAssets returns every storefront asset.
func (s *Service) ListAssets(ctx context.Context) ([]models.PublicAsset, error) {
	rows, err := s.repo.ListAssets(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}
	return rows, nil
}
