package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/db/models"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

// UpsertInput carries the billing identity captured on a proforma or an
// admin-created client record.
type UpsertInput struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Company         *string `json:"company,omitempty"`
	CUI             *string `json:"cui,omitempty"`
	RegCom          *string `json:"regCom,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	BillingAddress  string  `json:"billingAddress,omitempty"`
	BillingCity     string  `json:"billingCity,omitempty"`
	BillingCounty   string  `json:"billingCounty,omitempty"`
	ShippingAddress string  `json:"shippingAddress,omitempty"`
	ShippingCity    string  `json:"shippingCity,omitempty"`
	ShippingCounty  string  `json:"shippingCounty,omitempty"`
	PartnerEmail    *string `json:"partnerEmail,omitempty"`
}

// ServiceParams groups dependencies for the client service.
type ServiceParams struct {
	Repo Repository
}

// Service manages billing clients.
type Service struct {
	repo Repository
}

// NewService builds a client service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &Service{repo: params.Repo}, nil
}

// Create inserts a new client; duplicate emails map to CONFLICT.
func (s *Service) Create(ctx context.Context, input UpsertInput) (*models.Client, error) {
	client := buildClient(input)
	if err := s.repo.Create(ctx, client); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_clients_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return client, nil
}

// Update overwrites the stored record for the given id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Client, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := buildClient(input)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_clients_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return updated, nil
}

// Get loads one client.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

// List returns clients matching the optional search term.
func (s *Service) List(ctx context.Context, search string) ([]models.Client, error) {
	rows, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	return rows, nil
}

// UpsertByEmailTx finds the client by email inside the caller's transaction,
// updating the contact fields, or creates it when absent. Proforma creation
// uses this so the invoice and its client commit together.
func (s *Service) UpsertByEmailTx(ctx context.Context, tx *gorm.DB, input UpsertInput) (*models.Client, error) {
	repo := s.repo.WithTx(tx)
	existing, err := repo.FindByEmail(ctx, input.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client by email")
	}

	if existing == nil {
		client := buildClient(input)
		if err := repo.Create(ctx, client); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
		}
		return client, nil
	}

	existing.Name = strings.TrimSpace(input.Name)
	if input.Company != nil {
		existing.Company = input.Company
	}
	if input.CUI != nil {
		existing.CUI = input.CUI
	}
	if input.RegCom != nil {
		existing.RegCom = input.RegCom
	}
	if input.Phone != nil {
		existing.Phone = input.Phone
	}
	if input.PartnerEmail != nil {
		existing.PartnerEmail = input.PartnerEmail
	}
	if err := repo.Update(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return existing, nil
}

func buildClient(input UpsertInput) *models.Client {
	return &models.Client{
		Name:            strings.TrimSpace(input.Name),
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Company:         input.Company,
		CUI:             input.CUI,
		RegCom:          input.RegCom,
		Phone:           input.Phone,
		BillingAddress:  input.BillingAddress,
		BillingCity:     input.BillingCity,
		BillingCounty:   input.BillingCounty,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingCounty:  input.ShippingCounty,
		PartnerEmail:    input.PartnerEmail,
	}
}
