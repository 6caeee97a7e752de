package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Language represents a working language offered by the agency.
// Pricing rules and quotes reference languages by ID; a missing reference
// on a rule means "any language".
type Language struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"` // BCP 47-ish, e.g. "es", "zh-Hans"
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
