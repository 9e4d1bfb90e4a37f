package partnerorders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/pagination"
)

// ItemInput is one requested line on a partner order.
type ItemInput struct {
	RowNumber        int              `json:"rowNumber" validate:"required,min=1"`
	ManufacturerName string           `json:"manufacturerName" validate:"required"`
	ProductCode      string           `json:"productCode" validate:"required"`
	Quantity         int              `json:"quantity" validate:"required,min=1"`
	FinishCode       *string          `json:"finishCode,omitempty"`
	PartnerPrice     *decimal.Decimal `json:"partnerPrice,omitempty"`
}

// CreateOrderInput opens a new draft order for the acting partner.
type CreateOrderInput struct {
	PartnerEmail string
	PartnerNotes *string     `json:"partnerNotes,omitempty"`
	Items        []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// ReplaceItemsInput swaps the full item set of a draft order.
type ReplaceItemsInput struct {
	OrderID      uuid.UUID
	PartnerEmail string
	PartnerNotes *string     `json:"partnerNotes,omitempty"`
	Items        []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// SubmitInput moves a draft into review.
type SubmitInput struct {
	OrderID      uuid.UUID
	PartnerEmail string
}

// AdminUpdateInput captures the mutable admin-side fields. Items are
// deliberately absent: admins annotate and advance orders, they do not edit
// line items.
type AdminUpdateInput struct {
	OrderID      uuid.UUID
	ActorEmail   string
	Status       *enums.PartnerOrderStatus `json:"status,omitempty"`
	AdminNotes   *string                   `json:"adminNotes,omitempty"`
	AgreementURL *string                   `json:"agreementUrl,omitempty"`
	ProformaURL  *string                   `json:"proformaUrl,omitempty"`
}

// ListQuery filters order listings.
type ListQuery struct {
	PartnerEmail string
	Status       *enums.PartnerOrderStatus
	Limit        int
	Cursor       *pagination.Cursor
}

// OrderCreatedEvent is emitted when a draft is opened.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	PartnerEmail string    `json:"partner_email"`
	ItemCount    int       `json:"item_count"`
}

// OrderSubmittedEvent is emitted when a partner submits a draft.
type OrderSubmittedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	PartnerEmail string    `json:"partner_email"`
}

// OrderStateChangedEvent is emitted on every admin-driven transition.
type OrderStateChangedEvent struct {
	OrderID      uuid.UUID                `json:"order_id"`
	PartnerEmail string                   `json:"partner_email"`
	FromStatus   enums.PartnerOrderStatus `json:"from_status"`
	ToStatus     enums.PartnerOrderStatus `json:"to_status"`
}

// OrderCancelledEvent is emitted when an order reaches cancelled.
type OrderCancelledEvent struct {
	OrderID      uuid.UUID                `json:"order_id"`
	PartnerEmail string                   `json:"partner_email"`
	FromStatus   enums.PartnerOrderStatus `json:"from_status"`
}
