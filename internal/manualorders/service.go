package manualorders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// CreateInput records a commission-bearing sale. The partner attribution is
// resolved from the referenced client; totals are entered as-is and never
// recomputed.
type CreateInput struct {
	ClientID   *uuid.UUID              `json:"clientId,omitempty"`
	TotalNet   decimal.Decimal         `json:"totalNet" validate:"required"`
	TotalVAT   decimal.Decimal         `json:"totalVat"`
	TotalGross decimal.Decimal         `json:"totalGross"`
	Status     enums.ManualOrderStatus `json:"status" validate:"required"`
	Note       string                  `json:"note,omitempty"`
}

type clientFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// ServiceParams groups dependencies for the manual order service.
type ServiceParams struct {
	Repo    Repository
	Clients clientFinder
}

// Service records and lists manual (commission) orders.
type Service struct {
	repo    Repository
	clients clientFinder
}

// NewService builds a manual order service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("manual orders repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client finder required")
	}
	return &Service{repo: params.Repo, clients: params.Clients}, nil
}

// Create inserts a manual order. Records are immutable afterwards.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.ManualOrder, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", input.Status))
	}
	if input.TotalNet.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_net cannot be negative")
	}

	partnerEmail := ""
	if input.ClientID != nil {
		client, err := s.clients.FindByID(ctx, *input.ClientID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
		}
		if client.PartnerEmail != nil {
			partnerEmail = strings.ToLower(strings.TrimSpace(*client.PartnerEmail))
		}
	}

	var note *string
	if input.Note != "" {
		n := input.Note
		note = &n
	}

	order := &models.ManualOrder{
		ClientID:     input.ClientID,
		PartnerEmail: partnerEmail,
		TotalNet:     input.TotalNet,
		TotalVAT:     input.TotalVAT,
		TotalGross:   input.TotalGross,
		Status:       input.Status,
		Note:         note,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create manual order")
	}
	return order, nil
}

// List returns manual orders, newest first.
func (s *Service) List(ctx context.Context, status *enums.ManualOrderStatus, limit int, cursor *pagination.Cursor) ([]models.ManualOrder, *pagination.Cursor, error) {
	rows, next, err := s.repo.List(ctx, ListQuery{Status: status, Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list manual orders")
	}
	return rows, next, nil
}
