package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

// PartnerOrder is a B2B order assembled by a partner from manufacturer
// catalogs. Ownership moves to the back office once the status leaves draft.
type PartnerOrder struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerEmail string                   `gorm:"column:partner_email;not null;index"`
	Status       enums.PartnerOrderStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	PartnerNotes *string                  `gorm:"column:partner_notes"`
	AdminNotes   *string                  `gorm:"column:admin_notes"`
	AgreementURL *string                  `gorm:"column:agreement_url"`
	ProformaURL  *string                  `gorm:"column:proforma_url"`
	SubmittedAt  *time.Time               `gorm:"column:submitted_at"`
	Items        []PartnerOrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// PartnerOrderItem is one catalog line inside a partner order. Lines are
// replaced wholesale on edit, never patched individually.
type PartnerOrderItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	RowNumber        int              `gorm:"column:row_number;not null"`
	ManufacturerName string           `gorm:"column:manufacturer_name;not null"`
	ProductCode      string           `gorm:"column:product_code;not null"`
	Quantity         int              `gorm:"column:quantity;not null;default:1"`
	FinishCode       *string          `gorm:"column:finish_code"`
	PartnerPrice     *decimal.Decimal `gorm:"column:partner_price;type:numeric(12,2)"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
}
