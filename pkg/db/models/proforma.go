package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

// Proforma is a preliminary, non-fiscal invoice issued ahead of payment.
// Numbers are sequential within a series.
type Proforma struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Series      string               `gorm:"column:series;not null;uniqueIndex:ux_proformas_series_number"`
	Number      int64                `gorm:"column:number;not null;uniqueIndex:ux_proformas_series_number"`
	ClientID    uuid.UUID            `gorm:"column:client_id;type:uuid;not null"`
	ClientName  string               `gorm:"column:client_name;not null"`
	ClientEmail string               `gorm:"column:client_email;not null"`
	SubtotalNet decimal.Decimal      `gorm:"column:subtotal_net;type:numeric(12,2);not null"`
	TotalVAT    decimal.Decimal      `gorm:"column:total_vat;type:numeric(12,2);not null"`
	TotalGross  decimal.Decimal      `gorm:"column:total_gross;type:numeric(12,2);not null"`
	Status      enums.ProformaStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	PDFUrl      *string              `gorm:"column:pdf_url"`
	SentAt      *time.Time           `gorm:"column:sent_at"`
	Items       []ProformaItem       `gorm:"foreignKey:ProformaID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// FullNumber renders the zero-padded document number, e.g. PRF000042.
func (p Proforma) FullNumber() string {
	return fmt.Sprintf("%s%06d", p.Series, p.Number)
}

// ProformaItem is one billed line with its own VAT rate snapshot.
type ProformaItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProformaID uuid.UUID       `gorm:"column:proforma_id;type:uuid;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	SKU        string          `gorm:"column:sku;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TaxRate    decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	LineNet    decimal.Decimal `gorm:"column:line_net;type:numeric(12,2);not null"`
	LineVAT    decimal.Decimal `gorm:"column:line_vat;type:numeric(12,2);not null"`
}
