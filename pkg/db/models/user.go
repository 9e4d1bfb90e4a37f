package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

// User mirrors the hosted auth provider's account and carries the role used
// for authorization decisions. Credentials never live here.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'partner'"`
	FullName  *string        `gorm:"column:full_name"`
	Active    bool           `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
