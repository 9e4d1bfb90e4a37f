package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

// ManualOrder is a commission record keyed by partner email. Rows are
// written once and only ever read back in aggregate.
type ManualOrder struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID     *uuid.UUID              `gorm:"column:client_id;type:uuid"`
	PartnerEmail string                  `gorm:"column:partner_email;not null;index"`
	TotalNet     decimal.Decimal         `gorm:"column:total_net;type:numeric(12,2);not null"`
	TotalVAT     decimal.Decimal         `gorm:"column:total_vat;type:numeric(12,2);not null;default:0"`
	TotalGross   decimal.Decimal         `gorm:"column:total_gross;type:numeric(12,2);not null"`
	Status       enums.ManualOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Note         *string                 `gorm:"column:note"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime;index"`
}
