package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a billing counterparty for proformas, optionally attributed to
// the partner who brought the account in.
type Client struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string    `gorm:"column:name;not null"`
	Email           string    `gorm:"column:email;not null;uniqueIndex:ux_clients_email"`
	Company         *string   `gorm:"column:company"`
	CUI             *string   `gorm:"column:cui"`
	RegCom          *string   `gorm:"column:reg_com"`
	Phone           *string   `gorm:"column:phone"`
	BillingAddress  string    `gorm:"column:billing_address"`
	BillingCity     string    `gorm:"column:billing_city"`
	BillingCounty   string    `gorm:"column:billing_county"`
	ShippingAddress string    `gorm:"column:shipping_address"`
	ShippingCity    string    `gorm:"column:shipping_city"`
	ShippingCounty  string    `gorm:"column:shipping_county"`
	PartnerEmail    *string   `gorm:"column:partner_email;index"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
