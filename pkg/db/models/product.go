package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one storefront catalog entry. The embedding column used by
// semantic search is maintained through raw SQL and deliberately not mapped.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	SKU         string          `gorm:"column:sku;not null;uniqueIndex:ux_products_sku"`
	Description string          `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQty    int             `gorm:"column:stock_qty;not null;default:0"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid;index"`
	BrandID     *uuid.UUID      `gorm:"column:brand_id;type:uuid;index"`
	FinishCode  *string         `gorm:"column:finish_code"`
	WidthMM     *int            `gorm:"column:width_mm"`
	HeightMM    *int            `gorm:"column:height_mm"`
	Active      bool            `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Brand is a manufacturer label shown on the storefront.
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex:ux_brands_slug"`
	LogoURL   *string   `gorm:"column:logo_url"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Category groups products for navigation.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex:ux_categories_slug"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	Active    bool       `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TaxRate is a configurable VAT percentage; exactly one row should carry the
// default flag.
type TaxRate struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Percent   decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	IsDefault bool            `gorm:"column:is_default;not null;default:false"`
	Active    bool            `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
