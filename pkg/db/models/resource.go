package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

// Resource is a downloadable document (catalog, price list) surfaced in the
// partner portal. The file itself lives in object storage; only the URL is
// kept here.
type Resource struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string             `gorm:"column:title;not null"`
	Kind           enums.ResourceKind `gorm:"column:kind;type:text;not null"`
	URL            string             `gorm:"column:url;not null"`
	PartnerVisible bool               `gorm:"column:partner_visible;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// PublicAsset is a keyed storefront asset (hero image, OG banner).
type PublicAsset struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key       string    `gorm:"column:key;not null;uniqueIndex:ux_public_assets_key"`
	URL       string    `gorm:"column:url;not null"`
	AltText   *string   `gorm:"column:alt_text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
