package models

import (
	"time"

	"github.com/google/uuid"
)

// PartnerRequest is a pending partnership application captured by the public
// registration form.
type PartnerRequest struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyName  string    `gorm:"column:company_name;not null"`
	VATID        string    `gorm:"column:vat_id;not null"`
	ContactName  string    `gorm:"column:contact_name;not null"`
	Email        string    `gorm:"column:email;not null;index"`
	Phone        *string   `gorm:"column:phone"`
	BusinessType *string   `gorm:"column:business_type"`
	Address      *string   `gorm:"column:address"`
	AnnualVolume *string   `gorm:"column:annual_volume"`
	Motivation   *string   `gorm:"column:motivation"`
	Status       string    `gorm:"column:status;not null;default:'pending'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
