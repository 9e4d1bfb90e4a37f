package partners

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

// RegisterInput is the public partnership application form.
type RegisterInput struct {
	CompanyName  string  `json:"company_name"`
	VATID        string  `json:"vat_id"`
	ContactName  string  `json:"contact_name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone,omitempty"`
	BusinessType *string `json:"business_type,omitempty"`
	Address      *string `json:"address,omitempty"`
	AnnualVolume *string `json:"annual_volume,omitempty"`
	Motivation   *string `json:"motivation,omitempty"`
}

// Repository persists partnership applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.PartnerRequest) error
	List(ctx context.Context, status string) ([]models.PartnerRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a partner request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.PartnerRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) List(ctx context.Context, status string) ([]models.PartnerRequest, error) {
	q := r.db.WithContext(ctx).Model(&models.PartnerRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.PartnerRequest
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ServiceParams groups dependencies for the partner registration service.
type ServiceParams struct {
	Repo Repository
}

// Service accepts partnership applications.
type Service struct {
	repo Repository
}

// NewService builds a partner registration service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("partner requests repository required")
	}
	return &Service{repo: params.Repo}, nil
}

// Register validates and stores a pending application.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.PartnerRequest, error) {
	if fieldErrs := ValidateRegistration(input); len(fieldErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cererea contine campuri invalide").
			WithDetails(fieldErrs)
	}

	request := &models.PartnerRequest{
		CompanyName:  strings.TrimSpace(input.CompanyName),
		VATID:        NormalizeVAT(input.VATID),
		ContactName:  strings.TrimSpace(input.ContactName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		BusinessType: input.BusinessType,
		Address:      input.Address,
		AnnualVolume: input.AnnualVolume,
		Motivation:   input.Motivation,
		Status:       "pending",
	}
	if phone := normalizePhone(input.Phone); phone != "" {
		request.Phone = &phone
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store partner request")
	}
	return request, nil
}

// ListRequests returns applications for the back office.
func (s *Service) ListRequests(ctx context.Context, status string) ([]models.PartnerRequest, error) {
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner requests")
	}
	return rows, nil
}
