package proformas

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/internal/clients"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// LineInput is one billed position.
type LineInput struct {
	Name      string           `json:"name" validate:"required"`
	SKU       string           `json:"sku,omitempty"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal  `json:"unitPrice" validate:"required"`
	TaxRate   *decimal.Decimal `json:"taxRate,omitempty"`
}

// CreateInput creates a proforma atomically with its client.
type CreateInput struct {
	Client clients.UpsertInput `json:"client" validate:"required"`
	Lines  []LineInput         `json:"lines" validate:"required,min=1,dive"`
}

// UpdateInput edits a draft proforma. A non-empty Lines slice replaces the
// whole line set.
type UpdateInput struct {
	ClientName  *string     `json:"clientName,omitempty"`
	ClientEmail *string     `json:"clientEmail,omitempty" validate:"omitempty,email"`
	Lines       []LineInput `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// ListQuery filters proforma listings.
type ListQuery struct {
	Status *enums.ProformaStatus
	Limit  int
	Cursor *pagination.Cursor
}

// Stats summarizes issued proformas.
type Stats struct {
	Total      int             `json:"total"`
	Draft      int             `json:"draft"`
	Sent       int             `json:"sent"`
	Confirmed  int             `json:"confirmed"`
	Cancelled  int             `json:"cancelled"`
	GrossTotal decimal.Decimal `json:"grossTotal"`
}

// ProformaIssuedEvent is emitted when a proforma is created.
type ProformaIssuedEvent struct {
	ProformaID  uuid.UUID       `json:"proforma_id"`
	Number      string          `json:"number"`
	ClientEmail string          `json:"client_email"`
	TotalGross  decimal.Decimal `json:"total_gross"`
}
